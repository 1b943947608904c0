package alarm

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/repository/alarms"
	"github.com/oshokin/local-notification/internal/service/presenter"
)

// Manager owns pending alerts and fires them through a presenter.
type Manager struct {
	// cron triggers alerts; one entry per tag.
	cron *cron.Cron
	// repo persists alerts, nil keeps them in memory only.
	repo alarms.Repository
	// presenter shows fired alerts.
	presenter presenter.Presenter
	// minRepeat coalesces shorter repeat intervals.
	minRepeat time.Duration

	// runCtx is handed to fired jobs and canceled by Close.
	runCtx    context.Context //nolint:containedctx // Jobs are started by cron without a context.
	runCancel context.CancelFunc

	// mu protects entries and generation.
	mu         sync.Mutex
	entries    map[int]registration
	generation uint64
}

// registration links a tag to its cron entry.
type registration struct {
	id         cron.EntryID
	generation uint64
	alert      *domain.Alert
}

// Option configures the manager.
type Option func(*Manager)

// WithMinRepeatInterval coalesces repeat intervals shorter than d up to d.
func WithMinRepeatInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.minRepeat = d
		}
	}
}

// NewManager creates a manager. It does not fire anything until Start.
func NewManager(ctx context.Context, repo alarms.Repository, p presenter.Presenter, opts ...Option) *Manager {
	ctx = logger.WithName(ctx, "alarm")
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	cronLog := cronLogger{ctx: ctx}

	m := &Manager{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		repo:      repo,
		presenter: p,
		runCtx:    runCtx,
		runCancel: cancel,
		entries:   make(map[int]registration),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start restores persisted alerts and starts firing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.repo != nil {
		stored, err := m.repo.List(ctx)
		if err != nil {
			return fmt.Errorf("restore alerts: %w", err)
		}

		for _, alert := range stored {
			m.registerLocked(alert)
		}

		logger.InfoKV(ctx, "Alerts restored", "count", len(stored))
	}

	m.cron.Start()

	return nil
}

// Close stops firing and waits for running jobs or ctx, whichever ends first.
// Persisted alerts are kept for the next Start.
func (m *Manager) Close(ctx context.Context) error {
	m.runCancel()

	select {
	case <-m.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Set registers the alert, replacing any pending alert with the same tag.
func (m *Manager) Set(ctx context.Context, alert *domain.Alert) error {
	alert = alert.Clone()

	if alert.Repeating() && alert.RepeatInterval < m.minRepeat {
		logger.DebugKV(ctx, "Repeat interval coalesced",
			"tag", alert.Tag, "requested", alert.RepeatInterval, "applied", m.minRepeat)

		alert.RepeatInterval = m.minRepeat
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.repo != nil {
		if err := m.repo.Save(ctx, alert); err != nil {
			return fmt.Errorf("persist alert: %w", err)
		}
	}

	m.registerLocked(alert)

	logger.InfoKV(ctx, "Alert registered",
		"tag", alert.Tag, "fire_at", alert.FireAt, "repeat", alert.RepeatInterval)

	return nil
}

// Cancel unregisters the alert for tag. Unknown tags are ignored.
func (m *Manager) Cancel(ctx context.Context, tag int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.entries[tag]
	if !ok {
		return nil
	}

	m.cron.Remove(reg.id)
	delete(m.entries, tag)

	if m.repo != nil {
		if err := m.repo.Delete(ctx, tag); err != nil {
			return fmt.Errorf("forget alert: %w", err)
		}
	}

	logger.InfoKV(ctx, "Alert cancelled", "tag", tag)

	return nil
}

// Pending returns copies of the registered alerts ordered by tag.
func (m *Manager) Pending() []*domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Alert, 0, len(m.entries))
	for _, reg := range m.entries {
		result = append(result, reg.alert.Clone())
	}

	slices.SortFunc(result, func(a, b *domain.Alert) int {
		return a.Tag - b.Tag
	})

	return result
}

// registerLocked swaps the cron entry for alert.Tag. Caller holds m.mu.
func (m *Manager) registerLocked(alert *domain.Alert) {
	if prev, ok := m.entries[alert.Tag]; ok {
		m.cron.Remove(prev.id)
	}

	m.generation++
	generation := m.generation

	id := m.cron.Schedule(newSchedule(alert), cron.FuncJob(func() {
		m.fire(alert, generation)
	}))

	m.entries[alert.Tag] = registration{
		id:         id,
		generation: generation,
		alert:      alert,
	}
}

// fire presents the alert and retires it if it was a one-shot.
func (m *Manager) fire(alert *domain.Alert, generation uint64) {
	ctx := logger.WithKV(m.runCtx, "tag", alert.Tag)

	if !alert.Repeating() {
		m.retire(ctx, alert.Tag, generation)
	}

	if err := m.presenter.Present(ctx, domain.NotificationOf(alert)); err != nil {
		logger.ErrorKV(ctx, "Present notification failed", "error", err)
	}
}

// retire drops a fired one-shot unless it was replaced in the meantime.
func (m *Manager) retire(ctx context.Context, tag int, generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.entries[tag]
	if !ok || reg.generation != generation {
		return
	}

	m.cron.Remove(reg.id)
	delete(m.entries, tag)

	if m.repo == nil {
		return
	}

	if err := m.repo.Delete(ctx, tag); err != nil {
		logger.ErrorKV(ctx, "Forget fired alert failed", "error", err)
	}
}
