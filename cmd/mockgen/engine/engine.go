package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"roadmap-mcp/internal/azdo"
)

// GeneratorConfig controls the synthetic backend dataset.
type GeneratorConfig struct {
	Scenario string // "mild", "gaps", "leak"
	Project  string
	Epics    int
	Seed     int64
	Now      time.Time
}

// Fixture is one synthetic backend state: the three payload shapes a
// fetch cycle consumes.
type Fixture struct {
	Project    string              `json:"project"`
	Iterations azdo.IterationNode  `json:"iterations"`
	Relations  []azdo.WorkItemLink `json:"relations"`
	Details    []azdo.WorkItem     `json:"details"`
}

var teams = []string{"Team A", "Team B", "Team C"}

var epicStates = []string{"New", "Active", "Active", "Resolved"}
var childStates = []string{"New", "Active", "Done", "Closed", "Resolved"}

// Generate produces a deterministic fixture for the given scenario.
//
//	mild: every item has a resolvable iteration.
//	gaps: some items carry empty or unknown iteration paths, and roots
//	      echo themselves as self-relations.
//	leak: like gaps, plus work items from a foreign project attached via
//	      cross-project links.
func Generate(cfg GeneratorConfig) Fixture {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Project == "" {
		cfg.Project = "RoadmapTest"
	}
	if cfg.Epics == 0 {
		cfg.Epics = 6
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	fx := Fixture{
		Project:    cfg.Project,
		Iterations: buildIterations(cfg.Project, cfg.Now),
	}

	sprintCount := len(fx.Iterations.Children)
	nextID := 100

	for e := 0; e < cfg.Epics; e++ {
		epicID := nextID
		nextID++
		sprint := rng.Intn(sprintCount) + 1

		epic := azdo.WorkItem{
			ID:            epicID,
			Title:         fmt.Sprintf("Epic %d", e+1),
			State:         epicStates[rng.Intn(len(epicStates))],
			WorkItemType:  "Epic",
			IterationPath: fmt.Sprintf("%s\\Sprint %d", cfg.Project, sprint),
			AreaPath:      fmt.Sprintf("%s\\%s", cfg.Project, teams[e%len(teams)]),
			Project:       cfg.Project,
		}

		if cfg.Scenario != "mild" && e%4 == 3 {
			// Dateless root: filtered before query execution in production,
			// but the pipeline must also survive it arriving anyway.
			epic.IterationPath = ""
		}
		if cfg.Scenario != "mild" {
			fx.Relations = append(fx.Relations, azdo.WorkItemLink{SourceID: epicID, TargetID: epicID})
		}
		fx.Relations = append(fx.Relations, azdo.WorkItemLink{TargetID: epicID})
		fx.Details = append(fx.Details, epic)

		features := rng.Intn(2) + 2
		for f := 0; f < features; f++ {
			featureID := nextID
			nextID++
			feature := azdo.WorkItem{
				ID:            featureID,
				Title:         fmt.Sprintf("Feature %d.%d", e+1, f+1),
				State:         childStates[rng.Intn(len(childStates))],
				WorkItemType:  "Feature",
				IterationPath: fmt.Sprintf("Sprint %d", rng.Intn(sprintCount)+1), // bare spelling on purpose
				AreaPath:      epic.AreaPath,
				Project:       cfg.Project,
			}
			if cfg.Scenario != "mild" && f == 0 && e%3 == 0 {
				feature.IterationPath = "Retired\\Sprint 99"
			}
			fx.Relations = append(fx.Relations, azdo.WorkItemLink{SourceID: epicID, TargetID: featureID})
			fx.Details = append(fx.Details, feature)

			stories := rng.Intn(3) + 2
			for st := 0; st < stories; st++ {
				storyID := nextID
				nextID++
				fx.Relations = append(fx.Relations, azdo.WorkItemLink{SourceID: featureID, TargetID: storyID})
				fx.Details = append(fx.Details, azdo.WorkItem{
					ID:            storyID,
					Title:         fmt.Sprintf("Story %d.%d.%d", e+1, f+1, st+1),
					State:         childStates[rng.Intn(len(childStates))],
					WorkItemType:  "User Story",
					IterationPath: fmt.Sprintf("%s\\Sprint %d", cfg.Project, rng.Intn(sprintCount)+1),
					AreaPath:      epic.AreaPath,
					Project:       cfg.Project,
				})
			}
		}

		if cfg.Scenario == "leak" && e%2 == 0 {
			foreignID := nextID
			nextID++
			fx.Relations = append(fx.Relations, azdo.WorkItemLink{SourceID: epicID, TargetID: foreignID})
			fx.Details = append(fx.Details, azdo.WorkItem{
				ID:            foreignID,
				Title:         fmt.Sprintf("Foreign %d", foreignID),
				State:         "Active",
				WorkItemType:  "Feature",
				IterationPath: "Elsewhere\\Sprint 1",
				AreaPath:      "Elsewhere\\Team Z",
				Project:       "Elsewhere",
			})
		}
	}

	return fx
}

// buildIterations lays six two-week sprints around the reference date so
// every sprint falls inside the rolling quarter window.
func buildIterations(project string, now time.Time) azdo.IterationNode {
	root := azdo.IterationNode{Name: project}
	start := now.AddDate(0, 0, -6*7)
	for i := 0; i < 6; i++ {
		sprintStart := start.AddDate(0, 0, i*14)
		sprintEnd := sprintStart.AddDate(0, 0, 13)
		root.Children = append(root.Children, azdo.IterationNode{
			Name:       fmt.Sprintf("Sprint %d", i+1),
			StartDate:  &sprintStart,
			FinishDate: &sprintEnd,
		})
	}
	return root
}

// Save writes the fixture's three payloads as JSON files under dir.
func Save(dir string, fx Fixture) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	files := map[string]any{
		"iterations.json": fx.Iterations,
		"relations.json":  fx.Relations,
		"workitems.json":  fx.Details,
	}
	for name, payload := range files {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// Client wraps the fixture in a backend client for offline runs and
// integration tests. The link query is answered with the full relation
// set; root scoping happens in the pipeline as usual.
func (fx Fixture) Client() azdo.Client {
	return &fixtureClient{fx: fx}
}

type fixtureClient struct {
	fx Fixture
}

func (c *fixtureClient) GetIterationNodes(project string, depth int) (*azdo.IterationNode, error) {
	node := c.fx.Iterations
	return &node, nil
}

func (c *fixtureClient) QueryLinks(project string, wiql string) ([]azdo.WorkItemLink, error) {
	return c.fx.Relations, nil
}

func (c *fixtureClient) GetWorkItems(ids []int, fields []string) ([]azdo.WorkItem, error) {
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var items []azdo.WorkItem
	for _, item := range c.fx.Details {
		if wanted[item.ID] {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *fixtureClient) FindProjects(query string) ([]azdo.Project, error) {
	return []azdo.Project{{ID: "fixture", Name: c.fx.Project}}, nil
}
