package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"stellar-hq/callisto/pkg/config"
	"stellar-hq/callisto/pkg/cpl/ast"
	"stellar-hq/callisto/pkg/policy/store"
	"stellar-hq/callisto/pkg/telemetry/metrics"
)

// Generation identifies one successful load of the policy directory.
type Generation struct {
	// ID is a fresh uuid per load.
	ID string

	// LoadedAt is when the load completed.
	LoadedAt time.Time

	// Templates and Links are the entry counts of the loaded set.
	Templates int
	Links     int
}

// Manager loads policy documents into a policy set and publishes it as an
// immutable snapshot. Mutation goes through the manager: it clones the
// current set, applies the change, and swaps the pointer, so readers holding
// a snapshot are never disturbed.
type Manager struct {
	cfg    config.PolicyConfig
	logger *slog.Logger
	loader *Loader

	current atomic.Pointer[store.PolicySet]
	gen     atomic.Pointer[Generation]

	// mu serializes writers: reloads and links.
	mu sync.Mutex

	metrics *metrics.PolicyStoreMetrics

	runMu   sync.Mutex
	running bool
	watcher *fileWatcher
	cron    *cron.Cron
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger; the default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics wires reload and store-size metrics into the manager.
func WithMetrics(pm *metrics.PolicyStoreMetrics) Option {
	return func(m *Manager) { m.metrics = pm }
}

// New creates a manager for the configured policy directory. The published
// snapshot starts empty; call Load to populate it.
func New(cfg config.PolicyConfig, opts ...Option) *Manager {
	m := &Manager{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "policy.manager")
	m.loader = NewLoader(m.logger)
	m.current.Store(store.New())
	return m
}

// Load builds a fresh policy set from the policy directory and publishes it.
// On failure the previously published snapshot stays in place.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	set, err := m.loader.LoadDir(m.cfg.Dir)
	if m.metrics != nil {
		m.metrics.ObserveReload(err, time.Since(start))
	}
	if err != nil {
		return err
	}

	gen := &Generation{ID: uuid.New().String(), LoadedAt: time.Now()}
	for range set.AllTemplates() {
		gen.Templates++
	}
	for range set.Policies() {
		gen.Links++
	}

	m.current.Store(set)
	m.gen.Store(gen)
	if m.metrics != nil {
		m.metrics.ObserveSet(set)
	}
	m.logger.Info("policy set loaded",
		"generation", gen.ID,
		"templates", gen.Templates,
		"links", gen.Links,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Snapshot returns the currently published policy set. The returned set is
// immutable: later reloads or links publish a new set instead of mutating
// this one.
func (m *Manager) Snapshot() *store.PolicySet {
	return m.current.Load()
}

// Generation returns the generation of the published snapshot. The zero
// Generation means nothing has been loaded yet.
func (m *Manager) Generation() Generation {
	if gen := m.gen.Load(); gen != nil {
		return *gen
	}
	return Generation{}
}

// Link instantiates a stored template against env and publishes the grown
// set. The change is applied to a clone, so a failed link publishes nothing
// and concurrent readers keep their snapshot.
func (m *Manager) Link(templateID, newID ast.PolicyID, env ast.SlotEnv) (ast.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current.Load().Clone()
	p, err := next.Link(templateID, newID, env)
	if err != nil {
		return ast.Policy{}, err
	}

	m.current.Store(next)
	if m.metrics != nil {
		m.metrics.ObserveSet(next)
	}
	m.logger.Info("linked template", "template", templateID, "link", newID)
	return p, nil
}

// Start begins background reloading: a file watcher when watching is
// enabled, and a cron job when a reload schedule is configured. Start
// returns immediately; reloads happen on their own goroutines until Stop is
// called or ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		return fmt.Errorf("manager already started")
	}

	if m.cfg.Watch {
		w, err := newFileWatcher(m.cfg.Dir, m.cfg.DebounceInterval, m.logger, func() {
			m.reload("watch")
		})
		if err != nil {
			return err
		}
		m.watcher = w
		go w.run()
		m.logger.Info("watching policy directory", "dir", m.cfg.Dir)
	}

	if m.cfg.ReloadSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(m.cfg.ReloadSchedule, func() { m.reload("schedule") }); err != nil {
			if m.watcher != nil {
				m.watcher.stop()
				m.watcher = nil
			}
			return fmt.Errorf("invalid reload schedule %q: %w", m.cfg.ReloadSchedule, err)
		}
		c.Start()
		m.cron = c
		m.logger.Info("scheduled policy reloads", "schedule", m.cfg.ReloadSchedule)
	}

	m.running = true
	go func() {
		<-ctx.Done()
		m.Stop()
	}()
	return nil
}

// Stop halts background reloading. It is safe to call more than once.
func (m *Manager) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.running {
		return
	}
	if m.watcher != nil {
		m.watcher.stop()
		m.watcher = nil
	}
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
	m.running = false
	m.logger.Info("policy manager stopped")
}

func (m *Manager) reload(trigger string) {
	if err := m.Load(); err != nil {
		m.logger.Error("policy reload failed, keeping previous snapshot",
			"trigger", trigger, "error", err)
	}
}
