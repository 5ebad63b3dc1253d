// ABOUTME: MCP server setup for the habito session.
// ABOUTME: Wraps the MCP server around a logged-in session and the workout service.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/habito/internal/session"
	"github.com/harperreed/habito/internal/suggest"
	"github.com/harperreed/habito/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Server wraps the MCP server with session access.
type Server struct {
	mcpServer *mcp.Server
	sess      *session.Session
	workouts  *workouts.Service
	suggester suggest.Suggester
	logger    *zap.Logger
}

// NewServer creates a new MCP server over a session. A nil suggester
// answers with the offline fallback.
func NewServer(sess *session.Session, svc *workouts.Service, suggester suggest.Suggester, logger *zap.Logger) (*Server, error) {
	if sess == nil {
		return nil, fmt.Errorf("mcp server needs a session")
	}
	if svc == nil {
		return nil, fmt.Errorf("mcp server needs a workout service")
	}
	if suggester == nil {
		suggester = suggest.Static{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "habito",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		sess:      sess,
		workouts:  svc,
		suggester: suggester,
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport. Dispatched writes are
// flushed before it returns.
func (s *Server) Serve(ctx context.Context) error {
	defer s.sess.Flush()
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
