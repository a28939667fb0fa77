package timeline

import (
	"time"
)

// RootType is the work-item type a roadmap query anchors on.
type RootType string

const (
	RootEpic    RootType = "Epic"
	RootFeature RootType = "Feature"
)

// ParseRootType validates a caller-supplied root type string.
func ParseRootType(s string) (RootType, bool) {
	switch RootType(s) {
	case RootEpic, RootFeature:
		return RootType(s), true
	default:
		return "", false
	}
}

// IterationRecord is one sprint/cycle definition with calendar bounds
// (both inclusive).
type IterationRecord struct {
	Path  string    `json:"path"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IterationIndex maps every accepted spelling of an iteration path to its
// record. Rebuilt from the classification-node tree once per fetch cycle.
type IterationIndex map[string]IterationRecord

// Item is an assembled, not yet date-resolved work item in the arena.
// Children are held as ids rather than pointers so the tree stays acyclic
// by construction.
type Item struct {
	ID            int
	Title         string
	State         string
	WorkItemType  string
	IterationPath string
	AreaPath      string
	ChildIDs      []int
}

// WorkItemNode is a converted work item in the output tree, with resolved
// iteration dates and one-level progress counts. Nodes whose iteration
// could not be resolved never appear here.
type WorkItemNode struct {
	ID             int             `json:"id"`
	Title          string          `json:"title"`
	State          string          `json:"state"`
	WorkItemType   string          `json:"workItemType"`
	IterationStart time.Time       `json:"iterationStart"`
	IterationEnd   time.Time       `json:"iterationEnd"`
	Children       []*WorkItemNode `json:"children"`

	ChildType           string `json:"childType,omitempty"`
	ChildCount          int    `json:"childCount"`
	CompletedChildCount int    `json:"completedChildCount"`
}

// ValueStream is a named grouping of root nodes sharing an area path.
// Streams with zero roots are never emitted.
type ValueStream struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	WorkItems []*WorkItemNode `json:"workItems"`
}

// DateRange is an inclusive calendar interval used for explicit root-level
// filtering.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// completedStates maps a work-item type to the lifecycle states counted as
// completed for that type.
var completedStates = map[string]map[string]bool{
	"Epic":       {"Done": true, "Closed": true},
	"Feature":    {"Done": true, "Closed": true},
	"User Story": {"Done": true, "Closed": true, "Resolved": true},
	"Task":       {"Done": true, "Closed": true},
	"Bug":        {"Done": true, "Closed": true, "Resolved": true},
}

var fallbackCompleted = map[string]bool{"Done": true, "Closed": true}

// IsCompleted reports whether a state counts as completed for the given
// work-item type. Unmapped types use the fallback set.
func IsCompleted(workItemType, state string) bool {
	set, ok := completedStates[workItemType]
	if !ok {
		set = fallbackCompleted
	}
	return set[state]
}

// childTypeOf maps a parent type to the display name of its expected
// direct-child type in the containment hierarchy.
var childTypeOf = map[string]string{
	"Epic":       "Feature",
	"Feature":    "User Story",
	"User Story": "Task",
}

// ChildTypeName returns the display name for a parent type's direct
// children, or "Child" when the hierarchy defines none.
func ChildTypeName(parentType string) string {
	if name, ok := childTypeOf[parentType]; ok {
		return name
	}
	return "Child"
}
