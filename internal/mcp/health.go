// ABOUTME: MCP tools for the health data import.
// ABOUTME: Reports importer status and runs connect or refresh imports.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/lifetracker/internal/healthimport"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errNoImporter = errors.New("health import is not configured")

func (s *Server) registerHealthTools() {
	// health_status
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "health_status",
		Description: "Show health import state, last sync, and imported entry counts",
	}, s.handleHealthStatus)

	// import_health
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "import_health",
		Description: "Import weight, height, and body fat from health data, authorizing first if needed",
	}, s.handleImportHealth)
}

type healthStatusInput struct{}

type healthStatusOutput struct {
	Available  bool           `json:"available"`
	Authorized bool           `json:"authorized"`
	State      string         `json:"state"`
	Status     string         `json:"status"`
	LastSync   string         `json:"last_sync,omitempty"`
	Imported   map[string]int `json:"imported"`
}

type importHealthInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Clear previously imported entries before importing"`
}

type taskOutput struct {
	Metric  string `json:"metric"`
	Fetched int    `json:"fetched"`
	Added   int    `json:"added"`
	Error   string `json:"error,omitempty"`
}

type importHealthOutput struct {
	State        string       `json:"state"`
	Status       string       `json:"status"`
	SuccessCount int          `json:"success_count"`
	Total        int          `json:"total"`
	Cleared      int          `json:"cleared,omitempty"`
	Tasks        []taskOutput `json:"tasks"`
}

func (s *Server) handleHealthStatus(ctx context.Context, req *mcp.CallToolRequest, input healthStatusInput) (*mcp.CallToolResult, healthStatusOutput, error) {
	if s.importer == nil {
		return nil, healthStatusOutput{}, errNoImporter
	}

	src := s.importer.Source()
	out := healthStatusOutput{
		Available:  s.importer.IsAvailable(),
		Authorized: s.importer.IsAuthorized(),
		State:      string(s.importer.State()),
		Status:     s.importer.Status(),
		Imported:   make(map[string]int),
	}
	if last := s.importer.LastUpdate(); !last.IsZero() {
		out.LastSync = last.Format(time.RFC3339)
	}
	for _, m := range s.importer.Metrics() {
		out.Imported[string(m.Kind)] = len(s.history.Entries(m.Kind, &src))
	}
	return nil, out, nil
}

func (s *Server) handleImportHealth(ctx context.Context, req *mcp.CallToolRequest, input importHealthInput) (*mcp.CallToolResult, importHealthOutput, error) {
	if s.importer == nil {
		return nil, importHealthOutput{}, errNoImporter
	}

	if !s.importer.IsAuthorized() {
		if err := s.importer.RequestAuthorization(ctx); err != nil {
			return nil, importHealthOutput{}, fmt.Errorf("health authorization: %w", err)
		}
	}

	var (
		res     healthimport.Result
		cleared int
		err     error
	)
	if input.Refresh {
		res, cleared, err = s.importer.Refresh(ctx, s.history)
	} else {
		res, err = s.importer.Import(ctx)
	}
	if err != nil {
		return nil, importHealthOutput{}, fmt.Errorf("health import: %w", err)
	}

	out := importHealthOutput{
		State:        string(res.State),
		Status:       res.Status,
		SuccessCount: res.SuccessCount,
		Total:        res.Total,
		Cleared:      cleared,
		Tasks:        make([]taskOutput, 0, len(res.Tasks)),
	}
	for _, t := range res.Tasks {
		to := taskOutput{Metric: string(t.Kind), Fetched: t.Fetched, Added: t.Added}
		if t.Err != nil {
			to.Error = t.Err.Error()
		}
		out.Tasks = append(out.Tasks, to)
	}
	return nil, out, nil
}
