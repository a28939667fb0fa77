package visuals

import (
	"strings"
	"testing"
	"time"

	"roadmap-mcp/internal/timeline"
)

func TestGenerateRoadmapGantt(t *testing.T) {
	streams := []timeline.ValueStream{
		{
			ID:   "Proj-Team-A",
			Name: "Team A",
			WorkItems: []*timeline.WorkItemNode{
				{
					ID: 1, Title: "Checkout: revamp, phase 1", State: "Active", WorkItemType: "Epic",
					IterationStart:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					IterationEnd:        time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
					ChildCount:          4,
					CompletedChildCount: 4,
				},
			},
		},
	}

	chart := GenerateRoadmapGantt(streams)

	wantFragments := []string{
		"```mermaid",
		"gantt",
		"section Team A",
		"2024-01-01",
		"2024-03-31",
		"(4/4)",
		":done,",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(chart, fragment) {
			t.Errorf("chart missing %q:\n%s", fragment, chart)
		}
	}

	// Colons and commas inside titles would break the gantt parser.
	if strings.Contains(chart, "Checkout:") || strings.Contains(chart, "revamp,") {
		t.Errorf("title not sanitized:\n%s", chart)
	}
}

func TestGenerateRoadmapGantt_Empty(t *testing.T) {
	if chart := GenerateRoadmapGantt(nil); chart != "" {
		t.Errorf("empty roadmap should yield empty chart, got %q", chart)
	}
}
