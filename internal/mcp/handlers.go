package mcp

import (
	"context"
	"fmt"
	"time"

	"roadmap-mcp/internal/snapshot"
	"roadmap-mcp/internal/timeline"
	"roadmap-mcp/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// FetchRoadmapInput is the fetch_roadmap tool contract.
type FetchRoadmapInput struct {
	RootType       string   `json:"root_type"`
	IterationPaths []string `json:"iteration_paths,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
}

// IterationContextInput is the get_iteration_context tool contract.
type IterationContextInput struct {
	Date string `json:"date,omitempty"`
}

// FindProjectsInput is the find_projects tool contract.
type FindProjectsInput struct {
	Query string `json:"query,omitempty"`
}

// IterationContextResult pairs the rolling window with its iterations.
type IterationContextResult struct {
	Window     timeline.QuarterWindow     `json:"window"`
	Iterations []timeline.IterationRecord `json:"iterations"`
}

func (s *Server) handleFetchRoadmap(ctx context.Context, req *sdk.CallToolRequest, in FetchRoadmapInput) (*sdk.CallToolResult, any, error) {
	snap, err := s.fetchRoadmap(in)
	if err != nil {
		return nil, nil, err
	}

	text, err := formatJSON(snap)
	if err != nil {
		return nil, nil, err
	}
	if s.cfg.EnableMermaidCharts {
		if chart := visuals.GenerateRoadmapGantt(snap.Streams); chart != "" {
			text += "\n\n" + chart
		}
	}
	return textResult(text), nil, nil
}

// fetchRoadmap runs one fetch cycle, records the snapshot and persists it.
func (s *Server) fetchRoadmap(in FetchRoadmapInput) (snapshot.Snapshot, error) {
	rootType, ok := timeline.ParseRootType(in.RootType)
	if !ok {
		return snapshot.Snapshot{}, fmt.Errorf("invalid root_type %q: must be Epic or Feature", in.RootType)
	}

	filter, err := buildFilter(in)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	pipeline := timeline.NewPipeline(s.client, s.cfg.Backend.Project).WithClock(s.now)
	streams, err := pipeline.FetchWorkItems(rootType, filter)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	snap := snapshot.Snapshot{
		Project:   s.cfg.Backend.Project,
		RootType:  string(rootType),
		FetchedAt: s.now(),
		Streams:   streams,
	}
	if s.store.Put(snap) && s.cfg.CacheDir != "" {
		if err := snapshot.Save(s.cfg.CacheDir, snap); err != nil {
			log.Warn().Err(err).Msg("Failed to persist roadmap snapshot")
		}
	}
	return snap, nil
}

func buildFilter(in FetchRoadmapInput) (*timeline.Filter, error) {
	hasRange := in.StartDate != "" || in.EndDate != ""
	if hasRange && len(in.IterationPaths) > 0 {
		return nil, fmt.Errorf("iteration_paths and a date range are mutually exclusive")
	}

	filter := &timeline.Filter{IterationPaths: in.IterationPaths}
	if hasRange {
		if in.StartDate == "" || in.EndDate == "" {
			return nil, fmt.Errorf("start_date and end_date must both be provided")
		}
		start, err := parseDay(in.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
		end, err := parseDay(in.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("end_date precedes start_date")
		}
		filter.Range = &timeline.DateRange{Start: start, End: end}
	}
	return filter, nil
}

func (s *Server) handleGetIterationContext(ctx context.Context, req *sdk.CallToolRequest, in IterationContextInput) (*sdk.CallToolResult, any, error) {
	result, err := s.iterationContext(in)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(result)
}

func (s *Server) iterationContext(in IterationContextInput) (IterationContextResult, error) {
	clock := s.now
	if in.Date != "" {
		reference, err := parseDay(in.Date)
		if err != nil {
			return IterationContextResult{}, fmt.Errorf("invalid date: %w", err)
		}
		clock = func() time.Time { return reference }
	}

	pipeline := timeline.NewPipeline(s.client, s.cfg.Backend.Project).WithClock(clock)
	records, window, err := pipeline.CurrentContext()
	if err != nil {
		return IterationContextResult{}, err
	}
	return IterationContextResult{Window: window, Iterations: records}, nil
}

func (s *Server) handleListIterations(ctx context.Context, req *sdk.CallToolRequest, in struct{}) (*sdk.CallToolResult, any, error) {
	records, err := s.listIterations()
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(records)
}

func (s *Server) listIterations() ([]timeline.IterationRecord, error) {
	pipeline := timeline.NewPipeline(s.client, s.cfg.Backend.Project).WithClock(s.now)
	index, _, err := pipeline.FetchIterationIndex()
	if err != nil {
		return nil, err
	}
	return canonicalRecords(index), nil
}

func (s *Server) handleFindProjects(ctx context.Context, req *sdk.CallToolRequest, in FindProjectsInput) (*sdk.CallToolResult, any, error) {
	projects, err := s.client.FindProjects(in.Query)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(projects)
}
