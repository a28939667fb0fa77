package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools(srv *sdk.Server) {
	sdk.AddTool(srv, &sdk.Tool{
		Name: "fetch_roadmap",
		Description: "Fetch the work-item roadmap for the configured project, grouped into value streams. " +
			"Roots are Epics or Features; every descendant with a resolvable iteration is included with its calendar span. " +
			"Without a filter, the rolling quarter window (previous quarter through next-plus-one) scopes the roots. " +
			"Items without a resolvable iteration are omitted silently; an empty result means no matching data, not an error.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root_type": {
					Type:        "string",
					Enum:        []any{"Epic", "Feature"},
					Description: "Work-item type the hierarchy is anchored on",
				},
				"iteration_paths": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Explicit iteration paths restricting candidate roots (mutually exclusive with the date range)",
				},
				"start_date": {
					Type:        "string",
					Description: "Inclusive range start (YYYY-MM-DD); requires end_date",
				},
				"end_date": {
					Type:        "string",
					Description: "Inclusive range end (YYYY-MM-DD); requires start_date",
				},
			},
			Required: []string{"root_type"},
		},
	}, s.handleFetchRoadmap)

	sdk.AddTool(srv, &sdk.Tool{
		Name: "get_iteration_context",
		Description: "Resolve the current rolling quarter window and list every iteration fully contained in it. " +
			"Useful to inspect which sprints scope a default fetch_roadmap call.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"date": {
					Type:        "string",
					Description: "Optional reference date (YYYY-MM-DD); defaults to today",
				},
			},
		},
	}, s.handleGetIterationContext)

	sdk.AddTool(srv, &sdk.Tool{
		Name:        "list_iterations",
		Description: "List every dated iteration of the configured project with its calendar bounds.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleListIterations)

	sdk.AddTool(srv, &sdk.Tool{
		Name:        "find_projects",
		Description: "Search the backend's team projects by name.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Substring to match against project names; empty lists all",
				},
			},
		},
	}, s.handleFindProjects)
}
