package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"roadmap-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, gaps, leak")
	project := flag.String("project", "RoadmapTest", "Synthetic project name")
	epics := flag.Int("epics", 6, "Number of epics to generate")
	seed := flag.Int64("seed", 1, "Random seed")
	outDir := flag.String("out", "./cache/mock", "Output directory for mock payload files")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Project:  *project,
		Epics:    *epics,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Project: %s, Epics: %d) to %s...\n", cfg.Scenario, cfg.Project, cfg.Epics, *outDir)

	fx := engine.Generate(cfg)
	if err := engine.Save(*outDir, fx); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
