// ABOUTME: MCP server setup for the lifetracker stores.
// ABOUTME: Wraps the MCP server with the history store, photo index, and health importer.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/lifetracker/internal/healthimport"
	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/photos"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Deps are the stores the server exposes. Importer may be nil when no
// health export is configured.
type Deps struct {
	History  *history.Store
	Photos   *photos.Index
	Importer *healthimport.Coordinator
	Log      logrus.FieldLogger
}

// Server wraps the MCP server with store access.
type Server struct {
	mcpServer *mcp.Server
	history   *history.Store
	photos    *photos.Index
	importer  *healthimport.Coordinator
	log       logrus.FieldLogger
}

// NewServer creates a new MCP server over the given stores.
func NewServer(d Deps) (*Server, error) {
	if d.History == nil || d.Photos == nil {
		return nil, errors.New("mcp server needs a history store and photo index")
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "lifetracker",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		history:   d.History,
		photos:    d.Photos,
		importer:  d.Importer,
		log:       d.Log,
	}

	s.registerTools()
	s.registerHealthTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.WithField("version", Version).Info("serving MCP over stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
