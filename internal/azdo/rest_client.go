package azdo

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const apiVersion = "7.1"

// detailBatchLimit is the maximum number of ids the bulk work-item endpoint
// accepts per call. Larger id sets are fetched in sequential chunks.
const detailBatchLimit = 200

type restClient struct {
	cfg         Config
	httpClient  *http.Client
	lastRequest time.Time

	// Session Cache
	cache      map[string]*cacheEntry
	cacheMutex sync.RWMutex

	// Concurrent fetch cycles issue identical requests; collapse them.
	flight singleflight.Group
}

type cacheEntry struct {
	Value       interface{}
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

func NewRestClient(cfg Config) Client {
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 2 * time.Second
	}
	return &restClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		cache: make(map[string]*cacheEntry),
	}
}

func (c *restClient) getFromCache(key string) (interface{}, bool) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	if time.Now().After(entry.Expiration) {
		delete(c.cache, key)
		return nil, false
	}

	// Sliding window extension
	if entry.AccessCount < 6 {
		entry.Expiration = time.Now().Add(entry.OriginalTTL)
		entry.AccessCount++
		log.Trace().Str("key", key).Int("count", entry.AccessCount).Msg("Extended cache TTL")
	}

	return entry.Value, true
}

func (c *restClient) addToCache(key string, value interface{}, ttl time.Duration) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:       value,
		Expiration:  time.Now().Add(ttl),
		OriginalTTL: ttl,
		AccessCount: 1,
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Added to cache")
}

func (c *restClient) throttle(isMetadata bool) {
	// Metadata requests (classification nodes, projects) are allowed to
	// "burst" sequentially to avoid artificial delay during setup.
	if isMetadata {
		c.lastRequest = time.Now()
		return
	}

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling backend request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func (c *restClient) authenticateRequest(req *http.Request) {
	if c.cfg.Token == "" {
		return
	}
	// PAT auth: basic credentials with an empty user name.
	encoded := base64.StdEncoding.EncodeToString([]byte(":" + c.cfg.Token))
	req.Header.Set("Authorization", "Basic "+encoded)
}

func (c *restClient) checkStatus(resp *http.Response, subject string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("backend authentication failed (401/403). Please check your personal access token.")
	case http.StatusNotFound:
		return fmt.Errorf("%s not found", subject)
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if retryAfter != "" {
			return fmt.Errorf("backend rate limit exceeded (429). Retry after %s seconds.", retryAfter)
		}
		return fmt.Errorf("backend rate limit exceeded (429).")
	default:
		return fmt.Errorf("backend API returned status %d for %s", resp.StatusCode, subject)
	}
}

func (c *restClient) doJSON(method, requestURL string, body []byte, subject string, out interface{}) error {
	var reader *bytes.Reader
	var req *http.Request
	var err error
	if body != nil {
		reader = bytes.NewReader(body)
		req, err = http.NewRequest(method, requestURL, reader)
	} else {
		req, err = http.NewRequest(method, requestURL, nil)
	}
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, subject); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", subject, err)
	}
	return nil
}

func (c *restClient) GetIterationNodes(project string, depth int) (*IterationNode, error) {
	cacheKey := fmt.Sprintf("iterations:%s:%d", project, depth)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.(*IterationNode), nil
	}

	val, err, _ := c.flight.Do(cacheKey, func() (interface{}, error) {
		c.throttle(true)

		params := url.Values{}
		params.Set("$depth", strconv.Itoa(depth))
		params.Set("api-version", apiVersion)

		requestURL := fmt.Sprintf("%s/%s/_apis/wit/classificationnodes/Iterations?%s",
			c.cfg.BaseURL, url.PathEscape(project), params.Encode())
		log.Info().Str("project", project).Msg("Requesting iteration classification nodes")
		log.Debug().Str("url", requestURL).Msg("Classification node details")

		var dto ClassificationNodeDTO
		if err := c.doJSON("GET", requestURL, nil, fmt.Sprintf("iteration nodes for %s", project), &dto); err != nil {
			return nil, err
		}

		node := MapIterationNode(dto)
		c.addToCache(cacheKey, &node, 10*time.Minute)
		return &node, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*IterationNode), nil
}

func (c *restClient) QueryLinks(project string, wiql string) ([]WorkItemLink, error) {
	cacheKey := fmt.Sprintf("wiql:%s:%s", project, wiql)
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]WorkItemLink), nil
	}

	val, err, _ := c.flight.Do(cacheKey, func() (interface{}, error) {
		c.throttle(false)

		params := url.Values{}
		params.Set("api-version", apiVersion)
		requestURL := fmt.Sprintf("%s/%s/_apis/wit/wiql?%s",
			c.cfg.BaseURL, url.PathEscape(project), params.Encode())

		body, err := json.Marshal(map[string]string{"query": wiql})
		if err != nil {
			return nil, err
		}

		log.Info().Str("project", project).Msg("Executing link-traversal query")
		log.Debug().Str("wiql", wiql).Msg("Query details")

		var dto WiqlResponseDTO
		if err := c.doJSON("POST", requestURL, body, "link query", &dto); err != nil {
			return nil, err
		}

		links := MapRelations(dto.WorkItemRelations)
		c.addToCache(cacheKey, links, 5*time.Minute)
		return links, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]WorkItemLink), nil
}

func (c *restClient) GetWorkItems(ids []int, fields []string) ([]WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	// Normalize id order so the cache key is stable across cycles.
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	var items []WorkItem
	for _, chunk := range chunkIDs(sorted, detailBatchLimit) {
		batch, err := c.getWorkItemChunk(chunk, fields)
		if err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

func (c *restClient) getWorkItemChunk(ids []int, fields []string) ([]WorkItem, error) {
	idList := joinIDs(ids)
	cacheKey := fmt.Sprintf("workitems:%s:%s", idList, strings.Join(fields, ","))
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]WorkItem), nil
	}

	val, err, _ := c.flight.Do(cacheKey, func() (interface{}, error) {
		c.throttle(false)

		params := url.Values{}
		params.Set("ids", idList)
		params.Set("fields", strings.Join(fields, ","))
		params.Set("api-version", apiVersion)

		requestURL := fmt.Sprintf("%s/_apis/wit/workitems?%s", c.cfg.BaseURL, params.Encode())
		log.Info().Int("count", len(ids)).Msg("Requesting work item details")

		var dto WorkItemBatchDTO
		if err := c.doJSON("GET", requestURL, nil, "work item batch", &dto); err != nil {
			return nil, err
		}

		items := make([]WorkItem, 0, len(dto.Value))
		for _, item := range dto.Value {
			items = append(items, MapWorkItem(item))
		}
		c.addToCache(cacheKey, items, 5*time.Minute)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]WorkItem), nil
}

func (c *restClient) FindProjects(query string) ([]Project, error) {
	cacheKey := "find_projects:" + query
	if val, ok := c.getFromCache(cacheKey); ok {
		return val.([]Project), nil
	}

	c.throttle(true)

	params := url.Values{}
	params.Set("$top", "100")
	params.Set("api-version", apiVersion)

	requestURL := fmt.Sprintf("%s/_apis/projects?%s", c.cfg.BaseURL, params.Encode())
	var dto ProjectListDTO
	if err := c.doJSON("GET", requestURL, nil, "project search", &dto); err != nil {
		return nil, err
	}

	// The endpoint has no server-side name filter; narrow locally.
	q := strings.ToLower(query)
	var result []Project
	for _, p := range dto.Value {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		result = append(result, Project{ID: p.ID, Name: p.Name, Description: p.Description})
	}

	c.addToCache(cacheKey, result, 5*time.Minute)
	return result, nil
}

func chunkIDs(ids []int, size int) [][]int {
	var chunks [][]int
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
