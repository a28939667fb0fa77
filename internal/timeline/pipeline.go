package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"roadmap-mcp/internal/azdo"

	"github.com/rs/zerolog/log"
)

// classificationDepth is the depth ceiling for the iteration tree fetch,
// sufficient to reach leaf iterations in practice.
const classificationDepth = 10

// Filter scopes which roots a fetch cycle includes. At most one of
// IterationPaths and Range is set; with neither, the rolling quarter
// window decides.
type Filter struct {
	IterationPaths []string
	Range          *DateRange
}

// Pipeline runs one fetch cycle against the backend: iteration index,
// hierarchy query, detail fetch, tree assembly, grouping. It holds no
// cross-cycle mutable state; every call builds its index and tree from
// scratch, so concurrent cycles cannot corrupt each other.
type Pipeline struct {
	client  azdo.Client
	project string
	now     func() time.Time
}

// NewPipeline creates a pipeline bound to one backend client and project.
func NewPipeline(client azdo.Client, project string) *Pipeline {
	return &Pipeline{client: client, project: project, now: time.Now}
}

// WithClock overrides the pipeline's reference clock. Used by tests and
// by callers that pin the rolling window to a specific date.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// FetchWorkItems executes a full fetch cycle and returns the roadmap as
// value streams. Transport failures are fatal for the whole cycle; no
// partial tree is ever returned. Items with missing or unresolvable
// iteration data are excluded silently. An empty result is not an error.
func (p *Pipeline) FetchWorkItems(rootType RootType, filter *Filter) ([]ValueStream, error) {
	if filter == nil {
		filter = &Filter{}
	}

	index, orgScope, err := p.FetchIterationIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to build iteration index: %w", err)
	}

	paths := filter.IterationPaths
	if len(paths) == 0 && filter.Range == nil {
		paths = CurrentIterationContext(index, p.now())
		if len(paths) == 0 {
			// No iteration falls inside the window; fall back to the
			// non-empty-iteration floor rather than failing.
			log.Info().Msg("No iterations in current context, using non-empty iteration floor")
		}
	}

	wiql := BuildTreeQuery(p.project, rootType, paths)
	relations, err := p.client.QueryLinks(p.project, wiql)
	if err != nil {
		return nil, fmt.Errorf("hierarchy query failed: %w", err)
	}
	if len(relations) == 0 {
		log.Info().Str("rootType", string(rootType)).Msg("Hierarchy query returned no relations")
		return []ValueStream{}, nil
	}

	ids := collectIDs(relations)
	details, err := p.client.GetWorkItems(ids, azdo.RoadmapFields)
	if err != nil {
		return nil, fmt.Errorf("work item detail fetch failed: %w", err)
	}

	// The query already scopes by project, but link traversal is known to
	// leak items from other projects.
	details = p.filterProject(details)

	tree := AssembleTree(relations, details)
	roots := FindRoots(tree, rootType, index, orgScope, filter.Range)
	streams := GroupByValueStream(roots, tree, index, orgScope)

	log.Info().
		Str("rootType", string(rootType)).
		Int("items", len(tree)).
		Int("roots", len(roots)).
		Int("streams", len(streams)).
		Msg("Fetch cycle complete")
	return streams, nil
}

// FetchIterationIndex fetches the classification-node tree and builds the
// per-cycle iteration index. The org scope is the tree root's own name,
// falling back to the configured project.
func (p *Pipeline) FetchIterationIndex() (IterationIndex, string, error) {
	root, err := p.client.GetIterationNodes(p.project, classificationDepth)
	if err != nil {
		return nil, "", err
	}
	orgScope := p.project
	if root != nil && root.Name != "" {
		orgScope = root.Name
	}
	return BuildIterationIndex(root, orgScope), orgScope, nil
}

// CurrentContext returns the iterations of the rolling quarter window
// around the pipeline's reference clock, sorted by start date.
func (p *Pipeline) CurrentContext() ([]IterationRecord, QuarterWindow, error) {
	index, _, err := p.FetchIterationIndex()
	if err != nil {
		return nil, QuarterWindow{}, err
	}

	window := NewQuarterWindow(p.now())
	seen := make(map[string]bool)
	var records []IterationRecord
	for _, record := range index {
		if seen[record.Path] {
			continue
		}
		seen[record.Path] = true
		if window.Contains(record) {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Start.Equal(records[j].Start) {
			return records[i].Start.Before(records[j].Start)
		}
		return records[i].Path < records[j].Path
	})
	return records, window, nil
}

func (p *Pipeline) filterProject(details []azdo.WorkItem) []azdo.WorkItem {
	filtered := details[:0]
	dropped := 0
	for _, d := range details {
		if d.Project == "" || strings.EqualFold(d.Project, p.project) {
			filtered = append(filtered, d)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("Removed cross-project work items")
	}
	return filtered
}

// collectIDs gathers every distinct id referenced on either side of the
// relation list, in ascending order.
func collectIDs(relations []azdo.WorkItemLink) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, rel := range relations {
		for _, id := range []int{rel.SourceID, rel.TargetID} {
			if id != 0 && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids
}
