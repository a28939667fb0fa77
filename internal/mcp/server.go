package mcp

import (
	"context"
	"time"

	"roadmap-mcp/internal/azdo"
	"roadmap-mcp/internal/config"
	"roadmap-mcp/internal/snapshot"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Version is stamped at build time via the root command.
var Version = "0.1.0"

// Server holds the state for the MCP server.
type Server struct {
	cfg    *config.AppConfig
	client azdo.Client
	store  *snapshot.Store
	now    func() time.Time
}

// NewServer creates a new MCP server over one backend client.
func NewServer(cfg *config.AppConfig, client azdo.Client) *Server {
	return &Server{
		cfg:    cfg,
		client: client,
		store:  snapshot.NewStore(),
		now:    time.Now,
	}
}

// Run serves the MCP protocol over stdio until the context is cancelled
// or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	impl := &sdk.Implementation{
		Name:    "roadmap-mcp",
		Title:   "Work Item Roadmap",
		Version: Version,
	}
	srv := sdk.NewServer(impl, nil)
	s.registerTools(srv)

	log.Info().Str("version", Version).Msg("MCP Server starting Stdio loop")
	return srv.Run(ctx, &sdk.StdioTransport{})
}
