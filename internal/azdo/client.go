package azdo

import (
	"time"
)

// WorkItem is the subset of work-item data the roadmap pipeline needs.
// Backend fields that core logic never reads are kept in Extra untouched.
type WorkItem struct {
	ID            int
	Title         string
	State         string
	WorkItemType  string
	IterationPath string
	AreaPath      string
	Project       string
	Extra         map[string]any
}

// WorkItemLink is one (source, target) edge from a link-traversal query.
// Either side may be zero when the backend omits it (roots appear as
// target-only matches).
type WorkItemLink struct {
	SourceID int
	TargetID int
}

// IterationNode is one node of the iteration classification tree. Nodes
// carrying both dates define a sprint/cycle; container nodes carry none.
type IterationNode struct {
	Name       string
	StartDate  *time.Time
	FinishDate *time.Time
	Children   []IterationNode
}

// Project is a slim projection of a backend team project.
type Project struct {
	ID          string
	Name        string
	Description string
}

// RoadmapFields is the field list fetched for every work item in a cycle.
var RoadmapFields = []string{
	"System.Id",
	"System.Title",
	"System.State",
	"System.IterationPath",
	"System.AreaPath",
	"System.WorkItemType",
	"System.TeamProject",
}

// Client is the interface for interacting with the work-item tracking backend.
type Client interface {
	GetIterationNodes(project string, depth int) (*IterationNode, error)
	QueryLinks(project string, wiql string) ([]WorkItemLink, error)
	GetWorkItems(ids []int, fields []string) ([]WorkItem, error)
	FindProjects(query string) ([]Project, error)
}

// Config holds the authentication and connection settings for the backend.
type Config struct {
	BaseURL string
	Project string

	// Personal Access Token
	Token string

	// Performance Settings
	RequestDelay time.Duration
}

// NewClient creates a new backend client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewRestClient(cfg)
}
