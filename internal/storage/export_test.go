// ABOUTME: Tests for export functionality.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats.
package storage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/lifetracker/internal/models"
	"gopkg.in/yaml.v3"
)

func exportFixture() *ExportData {
	photo := models.NewProgressPhoto("ref", models.CategoryFront, models.CategoryAbs).
		WithDate(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	return NewExportData(sampleEntries(), []models.ProgressPhoto{photo},
		time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON(exportFixture())
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.Tool != "lifetracker" {
		t.Errorf("Expected tool lifetracker, got %s", export.Tool)
	}
	if len(export.Entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(export.Entries))
	}
	if len(export.Photos) != 1 || len(export.Photos[0].Categories) != 2 {
		t.Errorf("Expected 1 photo with 2 categories, got %+v", export.Photos)
	}
}

func TestExportJSONEmpty(t *testing.T) {
	data, err := ExportJSON(NewExportData(nil, nil, time.Now()))
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"entries": []`) {
		t.Errorf("expected empty entries array, got %s", data)
	}
}

func TestExportYAML(t *testing.T) {
	data, err := ExportYAML(exportFixture())
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}

	if yamlData["version"] != "1.0" {
		t.Errorf("Expected version 1.0, got %v", yamlData["version"])
	}
	entries, ok := yamlData["entries"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected entries map, got %T", yamlData["entries"])
	}
	for _, st := range []string{"weight", "height", "body_fat"} {
		if _, ok := entries[st]; !ok {
			t.Errorf("Expected %s group in YAML", st)
		}
	}
}

func TestExportMarkdown(t *testing.T) {
	md := ExportMarkdown(exportFixture(), nil, nil)

	for _, want := range []string{
		"# Lifetracker Export - 2024-03-10",
		"## Weight",
		"| 2024-03-06 07:05 | 82,5 kg | manual |",
		"## Body Fat",
		"21,5 %",
		"## Progress Photos",
		"Front, Abs",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, md)
		}
	}
}

func TestExportMarkdownFilters(t *testing.T) {
	weight := models.StatWeight
	md := ExportMarkdown(exportFixture(), &weight, nil)
	if !strings.Contains(md, "## Weight") || strings.Contains(md, "## Height") {
		t.Errorf("Expected only weight section\n%s", md)
	}
	if strings.Contains(md, "Progress Photos") {
		t.Error("Expected photos omitted when filtering by type")
	}

	since := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	md = ExportMarkdown(exportFixture(), nil, &since)
	if strings.Contains(md, "## Height") {
		t.Errorf("Expected height (Mar 4) filtered out\n%s", md)
	}
}

func TestParseExportJSON(t *testing.T) {
	want := exportFixture()
	data, err := ExportJSON(want)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	got, err := ParseExportJSON(data)
	if err != nil {
		t.Fatalf("ParseExportJSON failed: %v", err)
	}
	if len(got.Entries) != 3 || got.Entries[0].ID != want.Entries[0].ID {
		t.Errorf("unexpected entries: %+v", got.Entries)
	}

	if _, err := ParseExportJSON([]byte("{broken")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
