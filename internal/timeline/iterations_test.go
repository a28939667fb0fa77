package timeline

import (
	"reflect"
	"testing"
	"time"

	"roadmap-mcp/internal/azdo"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func testIterationTree() *azdo.IterationNode {
	return &azdo.IterationNode{
		Name: "ProjectX",
		Children: []azdo.IterationNode{
			{
				Name:       "Sprint 1",
				StartDate:  datePtr(2024, 1, 1),
				FinishDate: datePtr(2024, 1, 14),
			},
			{
				Name: "2024", // container, no dates
				Children: []azdo.IterationNode{
					{
						Name:       "Sprint 2",
						StartDate:  datePtr(2024, 1, 15),
						FinishDate: datePtr(2024, 1, 28),
					},
				},
			},
		},
	}
}

func TestBuildIterationIndex_Spellings(t *testing.T) {
	index := BuildIterationIndex(testIterationTree(), "ProjectX")

	// Each dated node registers full path, stripped path and bare name.
	wantKeys := []string{
		"ProjectX\\Sprint 1",
		"Sprint 1",
		"ProjectX\\2024\\Sprint 2",
		"2024\\Sprint 2",
		"Sprint 2",
	}
	for _, key := range wantKeys {
		if _, ok := index[key]; !ok {
			t.Errorf("index missing spelling %q", key)
		}
	}

	// Container nodes contribute no record of their own.
	if _, ok := index["ProjectX\\2024"]; ok {
		t.Error("container node 2024 must not be indexed")
	}
	if _, ok := index["ProjectX"]; ok {
		t.Error("undated root must not be indexed")
	}

	record := index["Sprint 2"]
	if record.Path != "ProjectX\\2024\\Sprint 2" {
		t.Errorf("canonical path = %q", record.Path)
	}
	if !record.Start.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Sprint 2 start = %v", record.Start)
	}
}

func TestBuildIterationIndex_NilRoot(t *testing.T) {
	index := BuildIterationIndex(nil, "ProjectX")
	if len(index) != 0 {
		t.Errorf("nil root should yield empty index, got %d entries", len(index))
	}
}

func TestNormalizeIterationPath(t *testing.T) {
	tests := []struct {
		raw   string
		scope string
		want  []string
	}{
		{"Sprint 1", "ProjectX", []string{"Sprint 1", "ProjectX\\Sprint 1"}},
		{"ProjectX\\Sprint 1", "ProjectX", []string{"ProjectX\\Sprint 1", "Sprint 1"}},
		{"ProjectX\\2024\\Sprint 2", "ProjectX", []string{"ProjectX\\2024\\Sprint 2", "2024\\Sprint 2"}},
		{"Sprint 1", "", []string{"Sprint 1"}},
	}

	for _, tt := range tests {
		got := NormalizeIterationPath(tt.raw, tt.scope)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeIterationPath(%q, %q) = %v, want %v", tt.raw, tt.scope, got, tt.want)
		}
	}
}

// A work item carrying a bare sprint name must resolve against an index
// built from fully qualified classification paths.
func TestResolveIterationDates_PrefixMismatch(t *testing.T) {
	index := IterationIndex{
		"ProjectX\\Sprint 1": {
			Path:  "ProjectX\\Sprint 1",
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	record, ok := ResolveIterationDates("Sprint 1", "ProjectX", index)
	if !ok {
		t.Fatal("expected resolution to succeed via the prefixed candidate")
	}
	if !record.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", record.Start)
	}
	if !record.End.Equal(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", record.End)
	}
}

// All three registered spellings of a path must be resolvable.
func TestResolveIterationDates_AllSpellings(t *testing.T) {
	index := BuildIterationIndex(testIterationTree(), "ProjectX")

	paths := []string{
		"ProjectX\\2024\\Sprint 2",
		"2024\\Sprint 2",
		"Sprint 2",
	}
	for _, path := range paths {
		record, ok := ResolveIterationDates(path, "ProjectX", index)
		if !ok {
			t.Errorf("resolution failed for %q", path)
			continue
		}
		if record.Path != "ProjectX\\2024\\Sprint 2" {
			t.Errorf("resolved %q to %q", path, record.Path)
		}
	}
}

func TestResolveIterationDates_NotFound(t *testing.T) {
	index := BuildIterationIndex(testIterationTree(), "ProjectX")

	tests := []string{"", "Sprint 99", "OtherProject\\Sprint 1"}
	for _, path := range tests {
		if _, ok := ResolveIterationDates(path, "ProjectX", index); ok {
			t.Errorf("expected NotFound for %q", path)
		}
	}
}
