// ABOUTME: MCP resource implementations for lifetracker data.
// ABOUTME: Provides lifetracker://history/latest and lifetracker://photos/latest.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/lifetracker/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	historyLatestURI = "lifetracker://history/latest"
	photosLatestURI  = "lifetracker://photos/latest"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         historyLatestURI,
		Name:        "Latest Body Stats",
		Description: "Most recent value for each stat type plus entry counts",
		MIMEType:    "application/json",
	}, s.handleHistoryLatestResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         photosLatestURI,
		Name:        "Latest Progress Photos",
		Description: "Most recent progress photo for each category",
		MIMEType:    "application/json",
	}, s.handlePhotosLatestResource)
}

// Resource handlers

func (s *Server) handleHistoryLatestResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	latest := make(map[string]entryOutput)
	counts := make(map[string]int)
	for _, st := range models.AllStatTypes {
		if e, ok := s.history.Latest(st); ok {
			latest[string(st)] = toEntryOutput(e)
			counts[string(st)] = len(s.history.Entries(st, nil))
		}
	}

	return jsonResource(historyLatestURI, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"version":      s.history.Version(),
		"latest":       latest,
		"counts":       counts,
		"total":        s.history.Count(),
	})
}

func (s *Server) handlePhotosLatestResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	latest := make(map[string]photoOutput)
	for c, p := range s.photos.LatestByCategory() {
		latest[string(c)] = toPhotoOutput(p)
	}

	return jsonResource(photosLatestURI, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"version":      s.photos.Version(),
		"latest":       latest,
		"total":        s.photos.Count(),
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
