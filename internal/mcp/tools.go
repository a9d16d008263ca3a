// ABOUTME: MCP tool implementations for stat entries and progress photos.
// ABOUTME: Provides add, list, delete, and source-scoped clear plus photo queries.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/harperreed/lifetracker/internal/photos"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultLimit = 20

func (s *Server) registerTools() {
	// add_entry
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_entry",
		Description: "Record a body stat (weight, height, body_fat, bmi, waist, chest, hips, biceps, thigh)",
	}, s.handleAddEntry)

	// list_entries
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_entries",
		Description: "List stat entries newest first, optionally filtered by type and source",
	}, s.handleListEntries)

	// delete_entry
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_entry",
		Description: "Delete a stat entry by ID or ID prefix",
	}, s.handleDeleteEntry)

	// clear_entries
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "clear_entries",
		Description: "Remove every stat entry from one source (manual or apple_health)",
	}, s.handleClearEntries)

	// list_photos
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_photos",
		Description: "List progress photos tagged with a category",
	}, s.handleListPhotos)

	// latest_photos
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "latest_photos",
		Description: "Get the most recent progress photo for each category",
	}, s.handleLatestPhotos)

	// photo_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "photo_history",
		Description: "Group a category's progress photos by calendar day, newest day first",
	}, s.handlePhotoHistory)
}

// Tool input/output types

type addEntryInput struct {
	StatType   string  `json:"stat_type" jsonschema:"Type of stat: weight, height, body_fat, bmi, waist, chest, hips, biceps, thigh"`
	Value      float64 `json:"value" jsonschema:"The value in the stat's unit (kg, cm, or percent)"`
	RecordedAt string  `json:"recorded_at,omitempty" jsonschema:"Timestamp (ISO 8601 or YYYY-MM-DD HH:MM), defaults to now"`
	Source     string  `json:"source,omitempty" jsonschema:"Source tag: manual (default) or apple_health"`
}

type entryOutput struct {
	ID         string  `json:"id"`
	StatType   string  `json:"stat_type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Source     string  `json:"source"`
	RecordedAt string  `json:"recorded_at"`
	Message    string  `json:"message,omitempty"`
}

type listEntriesInput struct {
	StatType string `json:"stat_type,omitempty" jsonschema:"Filter by stat type"`
	Source   string `json:"source,omitempty" jsonschema:"Filter by source"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listEntriesOutput struct {
	Entries []entryOutput `json:"entries"`
	Total   int           `json:"total"`
}

type deleteEntryInput struct {
	ID string `json:"id" jsonschema:"Entry ID or prefix"`
}

type clearEntriesInput struct {
	Source string `json:"source" jsonschema:"Source to clear: manual or apple_health"`
}

type clearEntriesOutput struct {
	Cleared int    `json:"cleared"`
	Message string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type categoryInput struct {
	Category string `json:"category" jsonschema:"Photo category: front, back, side, arms, chest, abs, legs, shoulders"`
}

type photoOutput struct {
	ID         string   `json:"id"`
	TakenAt    string   `json:"taken_at"`
	Categories []string `json:"categories"`
	ImageRef   string   `json:"image_ref"`
}

type photoListOutput struct {
	Category string        `json:"category"`
	Photos   []photoOutput `json:"photos"`
}

type latestPhotosInput struct{}

type latestPhotosOutput struct {
	Latest map[string]photoOutput `json:"latest"`
}

type photoDayOutput struct {
	Day    string        `json:"day"`
	Photos []photoOutput `json:"photos"`
}

type photoHistoryOutput struct {
	Category string           `json:"category"`
	Days     []photoDayOutput `json:"days"`
}

func toEntryOutput(e models.StatEntry) entryOutput {
	return entryOutput{
		ID:         e.ID.String()[:8],
		StatType:   string(e.Type),
		Value:      e.Value,
		Unit:       e.Unit(),
		Source:     string(e.Source),
		RecordedAt: e.Date.Format(time.RFC3339),
	}
}

func toPhotoOutput(p models.ProgressPhoto) photoOutput {
	cats := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, string(c))
	}
	return photoOutput{
		ID:         p.ID.String()[:8],
		TakenAt:    p.Date.Format(time.RFC3339),
		Categories: cats,
		ImageRef:   p.ImageRef,
	}
}

func parseSource(s string) (*models.Source, error) {
	if s == "" {
		return nil, nil
	}
	if !models.IsValidSource(s) {
		return nil, fmt.Errorf("unknown source: %s", s)
	}
	src := models.Source(s)
	return &src, nil
}

// Tool handlers

func (s *Server) handleAddEntry(ctx context.Context, req *mcp.CallToolRequest, input addEntryInput) (*mcp.CallToolResult, entryOutput, error) {
	if !models.IsValidStatType(input.StatType) {
		return nil, entryOutput{}, fmt.Errorf("unknown stat type: %s", input.StatType)
	}

	e := models.NewStatEntry(models.StatType(input.StatType), input.Value)

	if input.RecordedAt != "" {
		t, err := models.ParseTime(input.RecordedAt, time.Local)
		if err != nil {
			return nil, entryOutput{}, err
		}
		e = e.WithDate(t)
	}

	src, err := parseSource(input.Source)
	if err != nil {
		return nil, entryOutput{}, err
	}
	if src != nil {
		e = e.WithSource(*src)
	}

	s.history.AddEntry(e)

	out := toEntryOutput(e)
	out.Message = fmt.Sprintf("Added %s: %s %s (ID: %s)", e.Type, models.FormatValue(e.Value), e.Unit(), out.ID)
	return nil, out, nil
}

func (s *Server) handleListEntries(ctx context.Context, req *mcp.CallToolRequest, input listEntriesInput) (*mcp.CallToolResult, listEntriesOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultLimit
	}

	src, err := parseSource(input.Source)
	if err != nil {
		return nil, listEntriesOutput{}, err
	}

	var entries []models.StatEntry
	if input.StatType != "" {
		if !models.IsValidStatType(input.StatType) {
			return nil, listEntriesOutput{}, fmt.Errorf("unknown stat type: %s", input.StatType)
		}
		entries = s.history.Entries(models.StatType(input.StatType), src)
	} else {
		for _, e := range s.history.AllEntries() {
			if src == nil || e.Source == *src {
				entries = append(entries, e)
			}
		}
	}

	entries = history.SortedByDate(entries, true)
	out := listEntriesOutput{Entries: []entryOutput{}, Total: len(entries)}
	for i, e := range entries {
		if i >= input.Limit {
			break
		}
		out.Entries = append(out.Entries, toEntryOutput(e))
	}
	return nil, out, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, req *mcp.CallToolRequest, input deleteEntryInput) (*mcp.CallToolResult, simpleOutput, error) {
	e, err := s.history.Find(input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete entry: %w", err)
	}
	s.history.DeleteEntry(e.ID)

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s entry: %s", e.Type, e.ID.String()[:8]),
	}, nil
}

func (s *Server) handleClearEntries(ctx context.Context, req *mcp.CallToolRequest, input clearEntriesInput) (*mcp.CallToolResult, clearEntriesOutput, error) {
	if !models.IsValidSource(input.Source) {
		return nil, clearEntriesOutput{}, fmt.Errorf("unknown source: %s", input.Source)
	}

	n := s.history.ClearEntries(models.Source(input.Source))
	return nil, clearEntriesOutput{
		Cleared: n,
		Message: fmt.Sprintf("Cleared %d %s entries", n, input.Source),
	}, nil
}

func (s *Server) handleListPhotos(ctx context.Context, req *mcp.CallToolRequest, input categoryInput) (*mcp.CallToolResult, photoListOutput, error) {
	c, err := models.ParseCategory(input.Category)
	if err != nil {
		return nil, photoListOutput{}, err
	}

	out := photoListOutput{Category: string(c), Photos: []photoOutput{}}
	for _, p := range s.photos.Photos(c) {
		out.Photos = append(out.Photos, toPhotoOutput(p))
	}
	return nil, out, nil
}

func (s *Server) handleLatestPhotos(ctx context.Context, req *mcp.CallToolRequest, input latestPhotosInput) (*mcp.CallToolResult, latestPhotosOutput, error) {
	out := latestPhotosOutput{Latest: make(map[string]photoOutput)}
	for c, p := range s.photos.LatestByCategory() {
		out.Latest[string(c)] = toPhotoOutput(p)
	}
	return nil, out, nil
}

func (s *Server) handlePhotoHistory(ctx context.Context, req *mcp.CallToolRequest, input categoryInput) (*mcp.CallToolResult, photoHistoryOutput, error) {
	c, err := models.ParseCategory(input.Category)
	if err != nil {
		return nil, photoHistoryOutput{}, err
	}

	groups := s.photos.PhotosByDate(c)
	out := photoHistoryOutput{Category: string(c), Days: []photoDayOutput{}}
	for _, day := range photos.SortedDays(groups) {
		d := photoDayOutput{Day: day.String()}
		for _, p := range groups[day] {
			d.Photos = append(d.Photos, toPhotoOutput(p))
		}
		out.Days = append(out.Days, d)
	}
	return nil, out, nil
}
