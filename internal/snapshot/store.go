package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"roadmap-mcp/internal/timeline"

	"github.com/rs/zerolog/log"
)

// Snapshot is one completed fetch cycle's output, frozen for consumers.
type Snapshot struct {
	Project   string                 `json:"project"`
	RootType  string                 `json:"root_type"`
	FetchedAt time.Time              `json:"fetched_at"`
	Streams   []timeline.ValueStream `json:"streams"`
}

// Store keeps the latest snapshot per (project, root type). Concurrent
// fetch cycles may complete out of order; the store resolves this
// last-writer-wins by fetch time, so a stale in-flight cycle can never
// overwrite a newer result.
type Store struct {
	mu     sync.RWMutex
	latest map[string]Snapshot
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{latest: make(map[string]Snapshot)}
}

// Put records a completed cycle. Snapshots older than the stored one for
// the same source are discarded.
func (s *Store) Put(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sourceKey(snap.Project, snap.RootType)
	if existing, ok := s.latest[key]; ok && existing.FetchedAt.After(snap.FetchedAt) {
		log.Debug().Str("source", key).Msg("Discarding stale fetch cycle")
		return false
	}
	s.latest[key] = snap
	return true
}

// Latest returns the newest snapshot for a source, if any.
func (s *Store) Latest(project, rootType string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.latest[sourceKey(project, rootType)]
	return snap, ok
}

// Save persists a snapshot as pretty-printed JSON under the cache dir.
func Save(cacheDir string, snap Snapshot) error {
	path := filePath(cacheDir, snap.Project, snap.RootType)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("streams", len(snap.Streams)).Msg("Snapshot persisted")
	return nil
}

// Load reads a persisted snapshot back from the cache dir.
func Load(cacheDir, project, rootType string) (Snapshot, error) {
	path := filePath(cacheDir, project, rootType)
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

func filePath(cacheDir, project, rootType string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("roadmap_%s_%s.json", sanitize(project), sanitize(rootType)))
}

func sourceKey(project, rootType string) string {
	return project + ":" + rootType
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
