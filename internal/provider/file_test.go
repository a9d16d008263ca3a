// ABOUTME: Tests for the file-backed health provider.
// ABOUTME: Covers JSON and YAML exports, unsupported types, and authorization.
package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/lifetracker/internal/healthimport"
	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
)

const jsonExport = `{
  "unsupported": ["height"],
  "samples": {
    "weight": [
      {"value": 176.4, "unit": "lb", "start_date": "2024-01-01T07:00:00Z"},
      {"value": 80.1, "unit": "kg", "start_date": "2024-01-02T07:00:00Z"}
    ],
    "body_fat": [
      {"value": 0.21, "unit": "fraction", "start_date": "2024-01-01T07:00:00Z"}
    ]
  }
}`

const yamlExport = `samples:
  height:
    - value: 1.8
      unit: m
      start_date: 2024-01-01T07:00:00Z
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func TestIsAvailable(t *testing.T) {
	if NewFileProvider("").IsAvailable() {
		t.Error("empty path should be unavailable")
	}
	if NewFileProvider(filepath.Join(t.TempDir(), "missing.json")).IsAvailable() {
		t.Error("missing file should be unavailable")
	}
	if NewFileProvider(t.TempDir()).IsAvailable() {
		t.Error("directory should be unavailable")
	}
	if !NewFileProvider(writeFile(t, "export.json", jsonExport)).IsAvailable() {
		t.Error("existing file should be available")
	}
}

func TestQueryJSONExport(t *testing.T) {
	p := NewFileProvider(writeFile(t, "export.json", jsonExport))
	ctx := context.Background()

	qt, ok := p.QuantityType(models.StatWeight)
	if !ok {
		t.Fatal("expected weight to resolve")
	}
	got, err := p.QueryAllSamples(ctx, qt)
	if err != nil {
		t.Fatalf("QueryAllSamples failed: %v", err)
	}
	if len(got) != 2 || got[0].Unit != healthimport.UnitPound {
		t.Errorf("unexpected samples: %+v", got)
	}
	if !got[1].StartDate.Equal(time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start date: %v", got[1].StartDate)
	}

	if _, ok := p.QuantityType(models.StatHeight); ok {
		t.Error("expected height to be unsupported")
	}
	if _, ok := p.QuantityType(models.StatChest); ok {
		t.Error("expected chest to have no quantity type")
	}
}

func TestQueryYAMLExport(t *testing.T) {
	p := NewFileProvider(writeFile(t, "export.yaml", yamlExport))
	qt, ok := p.QuantityType(models.StatHeight)
	if !ok {
		t.Fatal("expected height to resolve")
	}
	got, err := p.QueryAllSamples(context.Background(), qt)
	if err != nil {
		t.Fatalf("QueryAllSamples failed: %v", err)
	}
	if len(got) != 1 || got[0].Value != 1.8 || got[0].Unit != healthimport.UnitMeter {
		t.Errorf("unexpected samples: %+v", got)
	}
}

func TestQueryBadFileReportsError(t *testing.T) {
	p := NewFileProvider(writeFile(t, "export.json", "{not json"))
	qt, ok := p.QuantityType(models.StatWeight)
	if !ok {
		t.Fatal("expected resolution to defer errors to the query")
	}
	if _, err := p.QueryAllSamples(context.Background(), qt); err == nil {
		t.Error("expected parse error")
	}
}

func TestRequestAuthorization(t *testing.T) {
	path := writeFile(t, "export.json", jsonExport)

	p := NewFileProvider(path)
	if p.IsAuthorized(models.StatWeight) {
		t.Error("expected not authorized before request")
	}
	granted, err := p.RequestAuthorization(context.Background(), nil, nil)
	if err != nil || !granted {
		t.Fatalf("RequestAuthorization = %v, %v", granted, err)
	}
	if !p.IsAuthorized(models.StatWeight) {
		t.Error("expected grant to be remembered")
	}

	denied := NewFileProvider(path, WithPrompt(func(read, write []models.StatType) (bool, error) {
		return false, nil
	}))
	granted, err = denied.RequestAuthorization(context.Background(), nil, nil)
	if err != nil || granted {
		t.Errorf("expected denial, got %v, %v", granted, err)
	}

	failing := NewFileProvider(path, WithPrompt(func(read, write []models.StatType) (bool, error) {
		return false, errors.New("no tty")
	}))
	if _, err := failing.RequestAuthorization(context.Background(), nil, nil); err == nil {
		t.Error("expected prompt error")
	}

	if !NewFileProvider(path, WithAuthorized(true)).IsAuthorized(models.StatHeight) {
		t.Error("expected prior grant to be reported")
	}
}

func TestNonInteractiveNeverGrants(t *testing.T) {
	p := NewFileProvider(writeFile(t, "export.json", jsonExport), WithPrompt(NonInteractive))

	granted, err := p.RequestAuthorization(context.Background(), nil, nil)
	if granted || !errors.Is(err, ErrPromptUnavailable) {
		t.Errorf("RequestAuthorization = %v, %v; want refusal", granted, err)
	}
	if p.IsAuthorized(models.StatWeight) {
		t.Error("expected no grant to be recorded")
	}

	prior := NewFileProvider(p.Path(), WithAuthorized(true), WithPrompt(NonInteractive))
	if !prior.IsAuthorized(models.StatWeight) {
		t.Error("expected a remembered grant to still apply")
	}
}

func TestCoordinatorImportsFromFile(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := history.New()
	p := NewFileProvider(writeFile(t, "export.json", jsonExport))
	c := healthimport.NewCoordinator(p, store, healthimport.WithLogger(log))

	res, err := c.AuthorizeAndImport(context.Background())
	if err != nil {
		t.Fatalf("AuthorizeAndImport failed: %v", err)
	}
	if res.State != healthimport.StatePartiallyCompleted || res.SuccessCount != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if !errors.Is(res.Err, healthimport.ErrTypeUnavailable) {
		t.Errorf("expected height to fail with type unavailable, got %v", res.Err)
	}

	weights := store.Entries(models.StatWeight, nil)
	if len(weights) != 2 {
		t.Fatalf("expected 2 weights, got %d", len(weights))
	}
	if weights[0].Value < 80.0 || weights[0].Value > 80.02 {
		t.Errorf("expected pounds converted to kg, got %v", weights[0].Value)
	}
	fat := store.Entries(models.StatBodyFat, nil)
	if len(fat) != 1 || fat[0].Value < 20.99 || fat[0].Value > 21.01 {
		t.Errorf("expected fraction converted to percent, got %+v", fat)
	}
}
