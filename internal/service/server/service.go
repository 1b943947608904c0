package server

import (
	"context"
	"fmt"
	"os"

	"github.com/oshokin/local-notification/internal/config"
	"github.com/oshokin/local-notification/internal/eventbus"
	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/repository/alarms"
	"github.com/oshokin/local-notification/internal/repository/consent"
	"github.com/oshokin/local-notification/internal/service/alarm"
	"github.com/oshokin/local-notification/internal/service/common"
	"github.com/oshokin/local-notification/internal/service/launch"
	"github.com/oshokin/local-notification/internal/service/notification"
	"github.com/oshokin/local-notification/internal/service/permission"
	"github.com/oshokin/local-notification/internal/service/presenter"
)

// daemon is the assembled object graph of notifyd.
type daemon struct {
	repo   *alarms.SQLiteRepository
	alarms *alarm.Manager
	gate   permission.Gate
	facade *notification.Facade
}

// newDaemon opens storage, restores alerts and wires the facade.
func newDaemon(ctx context.Context, cfg *config.Config, opts *Options) (*daemon, error) {
	source, err := launchSource(cfg, opts)
	if err != nil {
		return nil, err
	}

	gate, err := newGate(cfg)
	if err != nil {
		return nil, err
	}

	p, err := newPresenter(cfg)
	if err != nil {
		return nil, err
	}

	repo, err := alarms.Open(ctx, cfg.AlarmDB)
	if err != nil {
		return nil, fmt.Errorf("open alarm store: %w", err)
	}

	manager := alarm.NewManager(ctx, repo, p, alarm.WithMinRepeatInterval(cfg.MinRepeatInterval))
	if err = manager.Start(ctx); err != nil {
		_ = repo.Close()

		return nil, fmt.Errorf("start alarms: %w", err)
	}

	facade := notification.New(notification.Options{
		Alarms: manager,
		Gate:   gate,
		Launch: source,
		Bus:    eventbus.New(),
	})

	return &daemon{
		repo:   repo,
		alarms: manager,
		gate:   gate,
		facade: facade,
	}, nil
}

// close stops firing, waits for open prompts and releases the store.
func (d *daemon) close(ctx context.Context) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := d.alarms.Close(stopCtx); err != nil {
		logger.WarnKV(ctx, "Alarm manager did not stop in time", "error", err)
	}

	if g, ok := d.gate.(*permission.ConsentGate); ok {
		waitPrompts(stopCtx, g)
	}

	if err := d.repo.Close(); err != nil {
		logger.WarnKV(ctx, "Failed to close alarm store", "error", err)
	}
}

// waitPrompts waits for open permission prompts until ctx is done.
// A terminal prompt nobody answers would otherwise block shutdown.
func waitPrompts(ctx context.Context, g *permission.ConsentGate) {
	done := make(chan struct{})

	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn(ctx, "Permission prompt left unanswered")
	}
}

// newPresenter builds the configured presenter behind the rate limiter.
//
//nolint:ireturn // Presenter kind is chosen at runtime.
func newPresenter(cfg *config.Config) (presenter.Presenter, error) {
	var p presenter.Presenter

	switch cfg.Presenter {
	case config.PresenterDesktop:
		p = presenter.NewDesktop("")
	case config.PresenterLog:
		p = presenter.Log{}
	default:
		return nil, fmt.Errorf("unsupported presenter %q", cfg.Presenter)
	}

	return presenter.NewThrottled(p, cfg.PresenterRate), nil
}

// newGate builds the configured permission model.
//
//nolint:ireturn // Gate kind is chosen at runtime.
func newGate(cfg *config.Config) (permission.Gate, error) {
	var prompter permission.Prompter

	switch cfg.Permission {
	case config.PermissionNone:
		return permission.Open{}, nil
	case config.PermissionStatic:
		prompter = permission.Static{Grant: cfg.PermissionGrant}
	case config.PermissionPrompt:
		prompter = permission.NewTerminal(os.Stdin, os.Stderr)
	default:
		return nil, fmt.Errorf("unsupported permission model %q", cfg.Permission)
	}

	repo := consent.NewFileRepository(cfg.ConsentFile)

	return permission.NewConsentGate(repo, prompter, common.DetectActor), nil
}

// launchSource uses command-line launch flags when given, otherwise the intent file.
//
//nolint:ireturn // Source kind is chosen at runtime.
func launchSource(cfg *config.Config, opts *Options) (launch.Source, error) {
	if len(opts.Extras) == 0 && opts.Action == "" && opts.URI == "" {
		return launch.NewFileSource(cfg.IntentFile), nil
	}

	extras, err := launch.ParseExtras(opts.Extras)
	if err != nil {
		return nil, fmt.Errorf("parse launch extras: %w", err)
	}

	return launch.NewStaticSource(&launch.Intent{
		Extras: extras,
		Action: opts.Action,
		URI:    opts.URI,
	}), nil
}
