// ABOUTME: Export functionality for lifetracker data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/lifetracker/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for lifetracker data.
type ExportData struct {
	Version    string                 `json:"version" yaml:"version"`
	ExportedAt time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool       string                 `json:"tool" yaml:"tool"`
	Entries    []models.StatEntry     `json:"entries" yaml:"entries"`
	Photos     []models.ProgressPhoto `json:"photos" yaml:"photos"`
}

// NewExportData bundles entries and photos for export.
func NewExportData(entries []models.StatEntry, photos []models.ProgressPhoto, exportedAt time.Time) *ExportData {
	if entries == nil {
		entries = []models.StatEntry{}
	}
	if photos == nil {
		photos = []models.ProgressPhoto{}
	}
	return &ExportData{
		Version:    "1.0",
		ExportedAt: exportedAt,
		Tool:       "lifetracker",
		Entries:    entries,
		Photos:     photos,
	}
}

// ExportJSON exports all data as JSON.
func ExportJSON(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML with entries grouped by stat type.
func ExportYAML(data *ExportData) ([]byte, error) {
	yamlData := struct {
		Version    string                 `yaml:"version"`
		ExportedAt string                 `yaml:"exported_at"`
		Tool       string                 `yaml:"tool"`
		Entries    map[string][]yamlEntry `yaml:"entries"`
		Photos     []yamlPhoto            `yaml:"photos"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Entries:    make(map[string][]yamlEntry),
		Photos:     make([]yamlPhoto, 0, len(data.Photos)),
	}

	for _, e := range data.Entries {
		st := string(e.Type)
		yamlData.Entries[st] = append(yamlData.Entries[st], yamlEntry{
			ID:         e.ID.String()[:8],
			Value:      e.Value,
			Unit:       e.Unit(),
			Source:     string(e.Source),
			RecordedAt: e.Date.Format(time.RFC3339),
		})
	}

	for _, p := range data.Photos {
		yp := yamlPhoto{
			ID:       p.ID.String()[:8],
			TakenAt:  p.Date.Format(time.RFC3339),
			ImageRef: p.ImageRef,
		}
		for _, c := range p.Categories {
			yp.Categories = append(yp.Categories, string(c))
		}
		yamlData.Photos = append(yamlData.Photos, yp)
	}

	return yaml.Marshal(yamlData)
}

type yamlEntry struct {
	ID         string  `yaml:"id"`
	Value      float64 `yaml:"value"`
	Unit       string  `yaml:"unit,omitempty"`
	Source     string  `yaml:"source"`
	RecordedAt string  `yaml:"recorded_at"`
}

type yamlPhoto struct {
	ID         string   `yaml:"id"`
	TakenAt    string   `yaml:"taken_at"`
	Categories []string `yaml:"categories"`
	ImageRef   string   `yaml:"image_ref"`
}

// ExportMarkdown renders entries as Markdown tables, one per stat type,
// newest first. statType narrows to one type; since drops older entries.
func ExportMarkdown(data *ExportData, statType *models.StatType, since *time.Time) string {
	grouped := make(map[models.StatType][]models.StatEntry)
	for _, e := range data.Entries {
		if statType != nil && e.Type != *statType {
			continue
		}
		if since != nil && e.Date.Before(*since) {
			continue
		}
		grouped[e.Type] = append(grouped[e.Type], e)
	}

	var types []models.StatType
	for t := range grouped {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return string(types[i]) < string(types[j])
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Lifetracker Export - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	for _, t := range types {
		entries := grouped[t]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Date.After(entries[j].Date)
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", models.StatNames[t]))
		sb.WriteString("| Date | Value | Source |\n")
		sb.WriteString("|------|-------|--------|\n")
		for _, e := range entries {
			value := models.FormatValue(e.Value)
			if unit := e.Unit(); unit != "" {
				value += " " + unit
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				e.Date.Format("2006-01-02 15:04"), value, e.Source))
		}
		sb.WriteString("\n")
	}

	if statType == nil && len(data.Photos) > 0 {
		sb.WriteString("## Progress Photos\n\n")
		sb.WriteString("| Date | Categories |\n")
		sb.WriteString("|------|------------|\n")
		for _, p := range data.Photos {
			if since != nil && p.Date.Before(*since) {
				continue
			}
			names := make([]string, 0, len(p.Categories))
			for _, c := range p.Categories {
				names = append(names, c.DisplayName())
			}
			sb.WriteString(fmt.Sprintf("| %s | %s |\n",
				p.Date.Format("2006-01-02 15:04"), strings.Join(names, ", ")))
		}
	}

	return sb.String()
}

// ParseExportJSON decodes a JSON export produced by ExportJSON.
func ParseExportJSON(data []byte) (*ExportData, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return &exportData, nil
}
