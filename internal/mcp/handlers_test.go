package mcp

import (
	"strings"
	"testing"
	"time"

	"roadmap-mcp/internal/azdo"
	"roadmap-mcp/internal/config"
	"roadmap-mcp/internal/timeline"
)

type noopClient struct{}

func (noopClient) GetIterationNodes(project string, depth int) (*azdo.IterationNode, error) {
	return &azdo.IterationNode{Name: project}, nil
}
func (noopClient) QueryLinks(project string, wiql string) ([]azdo.WorkItemLink, error) {
	return nil, nil
}
func (noopClient) GetWorkItems(ids []int, fields []string) ([]azdo.WorkItem, error) {
	return nil, nil
}
func (noopClient) FindProjects(query string) ([]azdo.Project, error) { return nil, nil }

func testServer(t *testing.T, client azdo.Client, project string) *Server {
	t.Helper()
	s := NewServer(&config.AppConfig{
		Backend:  azdo.Config{Project: project},
		CacheDir: t.TempDir(),
	}, client)
	s.now = func() time.Time { return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestFetchRoadmap_InvalidRootType(t *testing.T) {
	s := testServer(t, noopClient{}, "Proj")

	_, err := s.fetchRoadmap(FetchRoadmapInput{RootType: "Initiative"})
	if err == nil || !strings.Contains(err.Error(), "root_type") {
		t.Errorf("expected root_type error, got %v", err)
	}
}

func TestFetchRoadmap_EmptyBackend(t *testing.T) {
	s := testServer(t, noopClient{}, "Proj")

	snap, err := s.fetchRoadmap(FetchRoadmapInput{RootType: "Epic"})
	if err != nil {
		t.Fatalf("empty backend must not error: %v", err)
	}
	if len(snap.Streams) != 0 {
		t.Errorf("streams = %+v, want none", snap.Streams)
	}
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name    string
		in      FetchRoadmapInput
		wantErr string
	}{
		{"no filter", FetchRoadmapInput{}, ""},
		{"paths only", FetchRoadmapInput{IterationPaths: []string{"Proj\\S1"}}, ""},
		{"range only", FetchRoadmapInput{StartDate: "2024-01-01", EndDate: "2024-03-31"}, ""},
		{"both kinds", FetchRoadmapInput{IterationPaths: []string{"x"}, StartDate: "2024-01-01", EndDate: "2024-03-31"}, "mutually exclusive"},
		{"half range", FetchRoadmapInput{StartDate: "2024-01-01"}, "both"},
		{"bad date", FetchRoadmapInput{StartDate: "01/01/2024", EndDate: "2024-03-31"}, "invalid start_date"},
		{"inverted range", FetchRoadmapInput{StartDate: "2024-03-31", EndDate: "2024-01-01"}, "precedes"},
	}

	for _, tt := range tests {
		filter, err := buildFilter(tt.in)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: err = %v, want containing %q", tt.name, err, tt.wantErr)
		}
		if filter != nil {
			t.Errorf("%s: filter returned alongside error", tt.name)
		}
	}
}

func TestBuildFilter_Range(t *testing.T) {
	filter, err := buildFilter(FetchRoadmapInput{StartDate: "2024-01-01", EndDate: "2024-03-31"})
	if err != nil {
		t.Fatal(err)
	}
	if filter.Range == nil {
		t.Fatal("range not set")
	}
	if !filter.Range.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", filter.Range.Start)
	}
	if !filter.Range.End.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", filter.Range.End)
	}
}

func TestIterationContext_BadDate(t *testing.T) {
	s := testServer(t, noopClient{}, "Proj")
	if _, err := s.iterationContext(IterationContextInput{Date: "yesterday"}); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestCanonicalRecords(t *testing.T) {
	shared := timeline.IterationRecord{
		Path:  "Proj\\Sprint 1",
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC),
	}
	index := timeline.IterationIndex{
		"Proj\\Sprint 1": shared,
		"Sprint 1":       shared,
		"Proj\\Sprint 0": {
			Path:  "Proj\\Sprint 0",
			Start: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	records := canonicalRecords(index)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Path != "Proj\\Sprint 0" || records[1].Path != "Proj\\Sprint 1" {
		t.Errorf("records out of order: %+v", records)
	}
}
