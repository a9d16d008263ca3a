// ABOUTME: Coordinator authorizes against a health provider and imports history.
// ABOUTME: Fans out one task per tracked metric and joins them into one Result.
package healthimport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// State is the coordinator's lifecycle position.
type State string

const (
	StateUnauthorized           State = "unauthorized"
	StateAuthorizationRequested State = "authorization_requested"
	StateAuthorized             State = "authorized"
	StateImporting              State = "importing"
	StateCompleted              State = "completed"
	StatePartiallyCompleted     State = "partially_completed"
	StateFailed                 State = "failed"
)

// Metric describes one tracked metric kind and its import policy.
type Metric struct {
	Kind  models.StatType
	Label string
	// Unit is the canonical unit samples are converted into.
	Unit Unit
	// EmptyIsSuccess treats a query with no samples as a successful task.
	EmptyIsSuccess bool
}

// DefaultMetrics are the metrics imported from the provider. Body fat is
// commonly unmeasured, so an empty result for it is not a failure.
var DefaultMetrics = []Metric{
	{Kind: models.StatWeight, Label: "weight", Unit: UnitKilogram},
	{Kind: models.StatHeight, Label: "height", Unit: UnitCentimeter},
	{Kind: models.StatBodyFat, Label: "body fat", Unit: UnitPercent, EmptyIsSuccess: true},
}

// EntrySink receives converted entries. *history.Store satisfies it.
type EntrySink interface {
	AddEntries(entries ...models.StatEntry)
}

// TaskResult is the outcome of importing one metric.
type TaskResult struct {
	Kind    models.StatType
	Fetched int
	Added   int
	Err     error
}

// OK reports whether the task succeeded.
func (t TaskResult) OK() bool {
	return t.Err == nil
}

// Result is the joined outcome of an import.
type Result struct {
	State        State
	Tasks        []TaskResult
	SuccessCount int
	Total        int
	Status       string
	// Err combines every task failure; nil when all tasks succeeded.
	Err        error
	FinishedAt time.Time
}

// Success reports overall success, which only requires one metric to have
// imported. Callers must not assume every metric is present.
func (r Result) Success() bool {
	return r.SuccessCount > 0
}

// Added returns the total number of entries appended.
func (r Result) Added() int {
	n := 0
	for _, t := range r.Tasks {
		n += t.Added
	}
	return n
}

// Coordinator drives authorization and import against a Provider.
// It never clears prior entries; callers clear the source before re-syncing.
type Coordinator struct {
	provider Provider
	sink     EntrySink
	metrics  []Metric
	source   models.Source
	log      logrus.FieldLogger
	now      func() time.Time
	onFinish func(Result)

	mu         sync.Mutex
	state      State
	status     string
	last       *Result
	lastUpdate time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for status transitions.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithMetrics overrides the tracked metrics.
func WithMetrics(metrics ...Metric) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// WithSource sets the source imported entries are tagged with.
func WithSource(src models.Source) Option {
	return func(c *Coordinator) {
		c.source = src
	}
}

// WithLastSync seeds the status line and last update time from an earlier
// session, so they survive a restart until the next import finishes.
func WithLastSync(at time.Time, status string) Option {
	return func(c *Coordinator) {
		c.lastUpdate = at
		c.status = status
	}
}

// WithOnFinish registers fn to be called with every finished import result.
func WithOnFinish(fn func(Result)) Option {
	return func(c *Coordinator) {
		c.onFinish = fn
	}
}

// WithClock sets the time source for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a coordinator in the Unauthorized state, or
// Authorized when the provider reports a prior grant for every metric.
func NewCoordinator(p Provider, sink EntrySink, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider: p,
		sink:     sink,
		metrics:  DefaultMetrics,
		source:   models.SourceAppleHealth,
		log:      logrus.StandardLogger(),
		now:      time.Now,
		state:    StateUnauthorized,
	}
	for _, opt := range opts {
		opt(c)
	}

	if ar, ok := p.(AuthorizationReporter); ok && p.IsAvailable() {
		authorized := true
		for _, m := range c.metrics {
			if !ar.IsAuthorized(m.Kind) {
				authorized = false
				break
			}
		}
		if authorized {
			c.state = StateAuthorized
		}
	}
	return c
}

// IsAvailable reports whether the provider has health data on this device.
func (c *Coordinator) IsAvailable() bool {
	return c.provider.IsAvailable()
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAuthorized reports whether an import may be started.
func (c *Coordinator) IsAuthorized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorizedLocked()
}

// Status returns the latest human-readable status line.
func (c *Coordinator) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastResult returns the most recent finished import, if any.
func (c *Coordinator) LastResult() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Result{}, false
	}
	return *c.last, true
}

// LastUpdate returns when the most recent import finished.
func (c *Coordinator) LastUpdate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdate
}

// Metrics returns the tracked metrics.
func (c *Coordinator) Metrics() []Metric {
	return append([]Metric(nil), c.metrics...)
}

func (c *Coordinator) authorizedLocked() bool {
	switch c.state {
	case StateAuthorized, StateImporting, StateCompleted, StatePartiallyCompleted, StateFailed:
		return true
	}
	return false
}

func (c *Coordinator) setStatus(status string, fields logrus.Fields) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	c.log.WithFields(fields).Info(status)
}

// RequestAuthorization asks the provider for read and write access to the
// tracked metrics and returns once the user has answered.
func (c *Coordinator) RequestAuthorization(ctx context.Context) error {
	if !c.provider.IsAvailable() {
		c.setStatus("Health data not available", nil)
		return ErrProviderUnavailable
	}

	c.mu.Lock()
	if c.state == StateImporting || c.state == StateAuthorizationRequested {
		c.mu.Unlock()
		return ErrImportInProgress
	}
	prev := c.state
	c.state = StateAuthorizationRequested
	c.mu.Unlock()
	c.setStatus("Requesting authorization...", nil)

	kinds := make([]models.StatType, 0, len(c.metrics))
	for _, m := range c.metrics {
		kinds = append(kinds, m.Kind)
	}

	granted, err := c.provider.RequestAuthorization(ctx, kinds, kinds)

	c.mu.Lock()
	switch {
	case err != nil || !granted:
		c.state = StateUnauthorized
	case prev == StateUnauthorized:
		c.state = StateAuthorized
	default:
		// Re-authorizing after an import keeps the last outcome visible.
		c.state = prev
	}
	c.mu.Unlock()

	if err != nil {
		c.setStatus(fmt.Sprintf("Authorization error: %v", err), nil)
		return fmt.Errorf("%w: %w", ErrAuthorizationDenied, err)
	}
	if !granted {
		c.setStatus("Authorization denied", nil)
		return ErrAuthorizationDenied
	}
	c.setStatus("Authorization successful", nil)
	return nil
}

// Import runs one task per tracked metric concurrently and waits for all of
// them. It only returns an error when the import could not start; task
// failures are reported in the Result. The coordinator never cancels tasks.
func (c *Coordinator) Import(ctx context.Context) (Result, error) {
	if err := c.begin(); err != nil {
		return Result{}, err
	}
	return c.run(ctx), nil
}

// begin moves the coordinator into Importing, or reports why it cannot.
// Only the caller that gets a nil error may go on to run.
func (c *Coordinator) begin() error {
	if !c.provider.IsAvailable() {
		c.setStatus("Health data not available", nil)
		return ErrProviderUnavailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateImporting {
		return ErrImportInProgress
	}
	if !c.authorizedLocked() {
		return ErrNotAuthorized
	}
	c.state = StateImporting
	return nil
}

// run fans out the metric tasks. The caller must have won begin.
func (c *Coordinator) run(ctx context.Context) Result {
	c.setStatus("Starting data import...", logrus.Fields{"metrics": len(c.metrics)})

	tasks := make([]TaskResult, len(c.metrics))
	var wg sync.WaitGroup
	for i, m := range c.metrics {
		wg.Add(1)
		go func(i int, m Metric) {
			defer wg.Done()
			tasks[i] = c.runTask(ctx, m)
		}(i, m)
	}
	wg.Wait()

	return c.finish(tasks)
}

// ImportAsync runs Import in a new goroutine and calls done with its outcome.
func (c *Coordinator) ImportAsync(ctx context.Context, done func(Result, error)) {
	go func() {
		res, err := c.Import(ctx)
		if done != nil {
			done(res, err)
		}
	}()
}

// AuthorizeAndImport requests authorization when needed and starts the
// import only after the authorization answer has arrived.
func (c *Coordinator) AuthorizeAndImport(ctx context.Context) (Result, error) {
	if !c.IsAuthorized() {
		if err := c.RequestAuthorization(ctx); err != nil {
			return Result{}, err
		}
	}
	return c.Import(ctx)
}

// AuthorizeAndImportAsync runs AuthorizeAndImport in a new goroutine.
func (c *Coordinator) AuthorizeAndImportAsync(ctx context.Context, done func(Result, error)) {
	go func() {
		res, err := c.AuthorizeAndImport(ctx)
		if done != nil {
			done(res, err)
		}
	}()
}

func (c *Coordinator) runTask(ctx context.Context, m Metric) TaskResult {
	res := TaskResult{Kind: m.Kind}
	fields := logrus.Fields{"metric": m.Kind}

	qt, ok := c.provider.QuantityType(m.Kind)
	if !ok {
		c.setStatus(fmt.Sprintf("%s type not available", m.Label), fields)
		res.Err = ErrTypeUnavailable
		return res
	}

	samples, err := c.provider.QueryAllSamples(ctx, qt)
	if err != nil {
		c.setStatus(fmt.Sprintf("Error fetching %s data: %v", m.Label, err), fields)
		res.Err = fmt.Errorf("%w: %w", ErrProviderQuery, err)
		return res
	}

	if len(samples) == 0 {
		c.setStatus(fmt.Sprintf("No %s samples found", m.Label), fields)
		if !m.EmptyIsSuccess {
			res.Err = ErrNoSamplesFound
		}
		return res
	}

	res.Fetched = len(samples)
	fields["samples"] = len(samples)
	c.setStatus(fmt.Sprintf("Fetched %d %s samples", len(samples), m.Label), fields)

	sorted := append([]Sample(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	// Convert everything first so a bad sample leaves the store untouched.
	entries := make([]models.StatEntry, 0, len(sorted))
	for _, s := range sorted {
		v, err := s.In(m.Unit)
		if err != nil {
			c.setStatus(fmt.Sprintf("Error converting %s data: %v", m.Label, err), fields)
			res.Err = err
			return res
		}
		entries = append(entries, models.StatEntry{
			ID:     uuid.New(),
			Date:   s.StartDate,
			Value:  v,
			Type:   m.Kind,
			Source: c.source,
		})
	}

	c.sink.AddEntries(entries...)
	res.Added = len(entries)
	fields["added"] = len(entries)
	c.setStatus(fmt.Sprintf("Added %d %s entries to history", len(entries), m.Label), fields)
	return res
}

func (c *Coordinator) finish(tasks []TaskResult) Result {
	res := Result{
		Tasks:      tasks,
		Total:      len(tasks),
		FinishedAt: c.now(),
	}
	for _, t := range tasks {
		if t.OK() {
			res.SuccessCount++
			continue
		}
		res.Err = multierr.Append(res.Err, fmt.Errorf("%s: %w", t.Kind, t.Err))
	}

	switch {
	case res.SuccessCount == res.Total:
		res.State = StateCompleted
		res.Status = "All data imported successfully!"
	case res.SuccessCount > 0:
		res.State = StatePartiallyCompleted
		res.Status = fmt.Sprintf("Partial data import: %d/%d successful", res.SuccessCount, res.Total)
	default:
		res.State = StateFailed
		res.Status = fmt.Sprintf("Data import failed: %d/%d successful", res.SuccessCount, res.Total)
	}

	c.mu.Lock()
	c.state = res.State
	c.last = &res
	c.lastUpdate = res.FinishedAt
	c.mu.Unlock()

	c.setStatus(res.Status, logrus.Fields{
		"state":   res.State,
		"success": res.SuccessCount,
		"total":   res.Total,
		"added":   res.Added(),
	})
	if c.onFinish != nil {
		c.onFinish(res)
	}
	return res
}
