package azdo

import "time"

// ClassificationNodeDTO is one node of the classification-node response.
// The tree is requested with a depth ceiling high enough to reach leaf
// iterations (10 in practice).
type ClassificationNodeDTO struct {
	Name       string                  `json:"name"`
	Attributes *NodeAttributesDTO      `json:"attributes,omitempty"`
	Children   []ClassificationNodeDTO `json:"children,omitempty"`
}

// NodeAttributesDTO carries the calendar bounds of a dated iteration node.
type NodeAttributesDTO struct {
	StartDate  string `json:"startDate"`
	FinishDate string `json:"finishDate"`
}

// WiqlResponseDTO is the top-level container for a link-traversal query result.
type WiqlResponseDTO struct {
	QueryType         string                `json:"queryType"`
	WorkItemRelations []WorkItemRelationDTO `json:"workItemRelations"`
}

// WorkItemRelationDTO is a single edge in the query result. Source is absent
// for the synthetic top-level match the backend emits for each root.
type WorkItemRelationDTO struct {
	Rel    string          `json:"rel"`
	Source *WorkItemRefDTO `json:"source,omitempty"`
	Target *WorkItemRefDTO `json:"target,omitempty"`
}

// WorkItemRefDTO is a bare work-item reference.
type WorkItemRefDTO struct {
	ID int `json:"id"`
}

// WorkItemBatchDTO is the bulk detail-fetch response.
type WorkItemBatchDTO struct {
	Count int           `json:"count"`
	Value []WorkItemDTO `json:"value"`
}

// WorkItemDTO is a single work item with its requested fields as a flat bag.
type WorkItemDTO struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

// ProjectListDTO is the team-project listing response.
type ProjectListDTO struct {
	Count int          `json:"count"`
	Value []ProjectDTO `json:"value"`
}

// ProjectDTO is a single team project.
type ProjectDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
}

// ParseDate parses the date spellings the backend uses for classification
// node attributes (full timestamp or bare calendar date).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
