package commands

import (
	"context"
	"fmt"
	"time"

	"roadmap-mcp/cmd/mockgen/engine"
	"roadmap-mcp/internal/azdo"
	"roadmap-mcp/internal/config"
	"roadmap-mcp/internal/logging"
	"roadmap-mcp/internal/mcp"
	"roadmap-mcp/internal/preview"
	"roadmap-mcp/internal/snapshot"
	"roadmap-mcp/internal/timeline"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	backendClient azdo.Client
)

var rootCmd = &cobra.Command{
	Use:   "roadmap-mcp",
	Short: "roadmap-mcp is a work-item roadmap MCP server",
	Long: `An MCP Server that builds Epic/Feature roadmaps from a work-item tracking backend:
it resolves the iteration calendar, fetches the full work-item hierarchy in one
link-traversal query and groups the result into value streams.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		// Initialize backend client
		backendClient = azdo.NewClient(cfg.Backend)
		mcp.Version = Version

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("roadmap-mcp starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		server := mcp.NewServer(cfg, backendClient)
		if err := server.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("MCP server terminated")
		}
	},
}

var (
	previewRootType string
	previewMock     string
	previewNoOpen   bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Fetch the roadmap once and open it as a local HTML page",
	RunE: func(cmd *cobra.Command, args []string) error {
		rootType, ok := timeline.ParseRootType(previewRootType)
		if !ok {
			return fmt.Errorf("invalid --root-type %q: must be Epic or Feature", previewRootType)
		}

		client := backendClient
		project := cfg.Backend.Project
		if previewMock != "" {
			fx := engine.Generate(engine.GeneratorConfig{Scenario: previewMock, Now: time.Now()})
			client = fx.Client()
			project = fx.Project
			log.Info().Str("scenario", previewMock).Msg("Previewing a generated mock roadmap")
		}
		if project == "" {
			return fmt.Errorf("no project configured; set AZDO_PROJECT or use --mock")
		}

		pipeline := timeline.NewPipeline(client, project)
		streams, err := pipeline.FetchWorkItems(rootType, nil)
		if err != nil {
			return err
		}

		snap := snapshot.Snapshot{
			Project:   project,
			RootType:  string(rootType),
			FetchedAt: time.Now(),
			Streams:   streams,
		}
		if err := snapshot.Save(cfg.CacheDir, snap); err != nil {
			log.Warn().Err(err).Msg("Failed to persist roadmap snapshot")
		}

		path, err := preview.WritePage(cfg.DataPath, snap)
		if err != nil {
			return err
		}
		fmt.Println(path)

		if previewNoOpen {
			return nil
		}
		return browser.OpenFile(path)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	previewCmd.Flags().StringVar(&previewRootType, "root-type", "Epic", "hierarchy root type (Epic or Feature)")
	previewCmd.Flags().StringVar(&previewMock, "mock", "", "preview a generated scenario (mild, gaps, leak) instead of the live backend")
	previewCmd.Flags().BoolVar(&previewNoOpen, "no-open", false, "write the page without opening a browser")
	rootCmd.AddCommand(previewCmd)
}
