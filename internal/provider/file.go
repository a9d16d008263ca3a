// ABOUTME: Health provider backed by an exported samples file (JSON or YAML).
// ABOUTME: Lets the import coordinator run against data copied off a phone.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harperreed/lifetracker/internal/healthimport"
	"github.com/harperreed/lifetracker/internal/models"
	"gopkg.in/yaml.v3"
)

// Export is the on-disk layout of a health export file.
type Export struct {
	// Unsupported lists metric types the exporting device does not track.
	Unsupported []models.StatType                         `json:"unsupported,omitempty" yaml:"unsupported,omitempty"`
	Samples     map[models.StatType][]healthimport.Sample `json:"samples" yaml:"samples"`
}

// quantityTypes maps stat types to the identifiers health platforms use.
var quantityTypes = map[models.StatType]healthimport.QuantityType{
	models.StatWeight:  "HKQuantityTypeIdentifierBodyMass",
	models.StatHeight:  "HKQuantityTypeIdentifierHeight",
	models.StatBodyFat: "HKQuantityTypeIdentifierBodyFatPercentage",
	models.StatBMI:     "HKQuantityTypeIdentifierBodyMassIndex",
	models.StatWaist:   "HKQuantityTypeIdentifierWaistCircumference",
}

// PromptFunc asks the user to grant access to the given types.
type PromptFunc func(read, write []models.StatType) (bool, error)

// ErrPromptUnavailable means access can only be granted from an interactive session.
var ErrPromptUnavailable = errors.New("authorization needs an interactive prompt")

// NonInteractive is the PromptFunc for sessions without a terminal, such as
// one whose stdin carries a protocol stream. It never grants access and
// never reads input.
func NonInteractive(read, write []models.StatType) (bool, error) {
	return false, ErrPromptUnavailable
}

// FileProvider serves samples from an export file.
type FileProvider struct {
	path       string
	prompt     PromptFunc
	authorized bool

	mu     sync.Mutex
	export *Export
}

// Option configures a FileProvider.
type Option func(*FileProvider)

// WithPrompt sets how authorization requests are answered.
func WithPrompt(fn PromptFunc) Option {
	return func(p *FileProvider) {
		p.prompt = fn
	}
}

// WithAuthorized records a grant from an earlier session.
func WithAuthorized(authorized bool) Option {
	return func(p *FileProvider) {
		p.authorized = authorized
	}
}

// NewFileProvider creates a provider reading from path. The file is read
// lazily on first query.
func NewFileProvider(path string, opts ...Option) *FileProvider {
	p := &FileProvider{path: path}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compile-time check that FileProvider implements the provider contract.
var _ healthimport.Provider = (*FileProvider)(nil)
var _ healthimport.AuthorizationReporter = (*FileProvider)(nil)

// Path returns the export file path.
func (p *FileProvider) Path() string {
	return p.path
}

// IsAvailable reports whether the export file exists.
func (p *FileProvider) IsAvailable() bool {
	if p.path == "" {
		return false
	}
	info, err := os.Stat(p.path)
	return err == nil && !info.IsDir()
}

// IsAuthorized reports whether access was granted earlier.
func (p *FileProvider) IsAuthorized(models.StatType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authorized
}

// RequestAuthorization asks the prompt, granting access when none is set.
func (p *FileProvider) RequestAuthorization(ctx context.Context, read, write []models.StatType) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	granted := true
	if p.prompt != nil {
		var err error
		granted, err = p.prompt(read, write)
		if err != nil {
			return false, err
		}
	}
	p.mu.Lock()
	p.authorized = granted
	p.mu.Unlock()
	return granted, nil
}

// QuantityType resolves the identifier for kind unless the export marks it
// unsupported.
func (p *FileProvider) QuantityType(kind models.StatType) (healthimport.QuantityType, bool) {
	qt, ok := quantityTypes[kind]
	if !ok {
		return "", false
	}
	exp, err := p.load()
	if err != nil {
		// Resolution happens before the query; let the query report the error.
		return qt, true
	}
	for _, u := range exp.Unsupported {
		if u == kind {
			return "", false
		}
	}
	return qt, true
}

// QueryAllSamples returns every sample for qt in file order.
func (p *FileProvider) QueryAllSamples(ctx context.Context, qt healthimport.QuantityType) ([]healthimport.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exp, err := p.load()
	if err != nil {
		return nil, err
	}
	for kind, id := range quantityTypes {
		if id == qt {
			return append([]healthimport.Sample(nil), exp.Samples[kind]...), nil
		}
	}
	return nil, fmt.Errorf("unknown quantity type: %s", qt)
}

func (p *FileProvider) load() (*Export, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.export != nil {
		return p.export, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read health export: %w", err)
	}
	exp, err := ParseExport(data, filepath.Ext(p.path))
	if err != nil {
		return nil, err
	}
	p.export = exp
	return exp, nil
}

// ParseExport decodes an export, choosing YAML for .yaml/.yml and JSON otherwise.
func ParseExport(data []byte, ext string) (*Export, error) {
	var exp Export
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &exp); err != nil {
			return nil, fmt.Errorf("parse health export yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &exp); err != nil {
			return nil, fmt.Errorf("parse health export json: %w", err)
		}
	}
	return &exp, nil
}
