package timeline

import (
	"testing"

	"roadmap-mcp/internal/azdo"
)

func streamFixture() (map[int]*Item, IterationIndex) {
	index := IterationIndex{
		"Proj\\Sprint 1": {Path: "Proj\\Sprint 1", Start: day(2024, 1, 1), End: day(2024, 1, 14)},
	}
	details := []azdo.WorkItem{
		{ID: 10, Title: "Epic A", WorkItemType: "Epic", State: "Active", IterationPath: "Proj\\Sprint 1", AreaPath: "Proj\\Team A"},
		{ID: 20, Title: "Epic B", WorkItemType: "Epic", State: "Active", IterationPath: "Proj\\Sprint 1", AreaPath: "Proj\\Team B"},
	}
	return AssembleTree(nil, details), index
}

func TestGroupByValueStream(t *testing.T) {
	tree, index := streamFixture()
	roots := FindRoots(tree, RootEpic, index, "Proj", nil)

	streams := GroupByValueStream(roots, tree, index, "Proj")
	if len(streams) != 2 {
		t.Fatalf("got %d streams, want 2", len(streams))
	}

	tests := []struct {
		idx      int
		wantID   string
		wantName string
		wantItem int
	}{
		{0, "Proj-Team-A", "Team A", 10},
		{1, "Proj-Team-B", "Team B", 20},
	}
	for _, tt := range tests {
		s := streams[tt.idx]
		if s.ID != tt.wantID {
			t.Errorf("stream %d id = %q, want %q", tt.idx, s.ID, tt.wantID)
		}
		if s.Name != tt.wantName {
			t.Errorf("stream %d name = %q, want %q", tt.idx, s.Name, tt.wantName)
		}
		if len(s.WorkItems) != 1 || s.WorkItems[0].ID != tt.wantItem {
			t.Errorf("stream %d items wrong: %+v", tt.idx, s.WorkItems)
		}
	}
}

func TestGroupByValueStream_SharedBucket(t *testing.T) {
	index := IterationIndex{
		"Proj\\Sprint 1": {Path: "Proj\\Sprint 1", Start: day(2024, 1, 1), End: day(2024, 1, 14)},
	}
	tree := AssembleTree(nil, []azdo.WorkItem{
		{ID: 1, WorkItemType: "Epic", State: "Active", IterationPath: "Proj\\Sprint 1", AreaPath: "Proj\\Team A"},
		{ID: 2, WorkItemType: "Epic", State: "Active", IterationPath: "Proj\\Sprint 1", AreaPath: "Proj\\Team A"},
	})
	roots := FindRoots(tree, RootEpic, index, "Proj", nil)

	streams := GroupByValueStream(roots, tree, index, "Proj")
	if len(streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(streams))
	}
	if len(streams[0].WorkItems) != 2 {
		t.Errorf("stream holds %d items, want 2", len(streams[0].WorkItems))
	}
}

// A root whose iteration cannot be resolved is dropped, and a bucket left
// empty by such drops is omitted entirely.
func TestGroupByValueStream_DropsEmptyStreams(t *testing.T) {
	index := IterationIndex{
		"Proj\\Sprint 1": {Path: "Proj\\Sprint 1", Start: day(2024, 1, 1), End: day(2024, 1, 14)},
	}
	tree := AssembleTree(nil, []azdo.WorkItem{
		{ID: 1, WorkItemType: "Epic", State: "Active", IterationPath: "Proj\\Sprint 1", AreaPath: "Proj\\Team A"},
		{ID: 2, WorkItemType: "Epic", State: "Active", IterationPath: "Unknown", AreaPath: "Proj\\Team B"},
	})
	roots := FindRoots(tree, RootEpic, index, "Proj", nil)

	streams := GroupByValueStream(roots, tree, index, "Proj")
	if len(streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(streams))
	}
	if streams[0].Name != "Team A" {
		t.Errorf("surviving stream = %q, want Team A", streams[0].Name)
	}
	for _, s := range streams {
		if len(s.WorkItems) == 0 {
			t.Errorf("stream %q emitted with no work items", s.ID)
		}
	}
}

func TestStreamNaming(t *testing.T) {
	tests := []struct {
		areaPath string
		wantID   string
		wantName string
	}{
		{"Proj\\Team A", "Proj-Team-A", "Team A"},
		{"Proj\\Platform\\Data & ML", "Proj-Platform-Data---ML", "Data & ML"},
		{"Proj", "Proj", "Proj"}, // no separator: full path as name
	}

	for _, tt := range tests {
		if got := streamID(tt.areaPath); got != tt.wantID {
			t.Errorf("streamID(%q) = %q, want %q", tt.areaPath, got, tt.wantID)
		}
		if got := streamName(tt.areaPath); got != tt.wantName {
			t.Errorf("streamName(%q) = %q, want %q", tt.areaPath, got, tt.wantName)
		}
	}
}
