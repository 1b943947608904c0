package permission

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/repository/consent"
)

// ResultFunc receives the answer to a permission request.
type ResultFunc func(requestID int, granted bool)

// Gate decides whether notifications may be shown.
type Gate interface {
	// RequiresConsent reports whether Request has to be called at all.
	RequiresConsent() bool
	// Enabled reports whether the user currently allows notifications.
	Enabled(ctx context.Context) bool
	// Request asks for permission and returns immediately.
	// onResult is called once, later, from another goroutine.
	Request(ctx context.Context, requestID int, onResult ResultFunc)
}

// Open is the gate of platforms without a permission prompt.
type Open struct{}

// RequiresConsent returns false.
func (Open) RequiresConsent() bool { return false }

// Enabled returns true.
func (Open) Enabled(context.Context) bool { return true }

// Request does nothing; there is nothing to ask.
func (Open) Request(context.Context, int, ResultFunc) {}

// ActorFunc reports who is answering the prompt.
type ActorFunc func() (*domain.Actor, error)

// ConsentGate asks a Prompter and remembers the answer.
type ConsentGate struct {
	repo     consent.Repository
	prompter Prompter
	actor    ActorFunc

	// inflight tracks prompts that have not reported yet.
	inflight sync.WaitGroup
}

// NewConsentGate returns a gate persisting answers in repo. actor may be nil.
func NewConsentGate(repo consent.Repository, prompter Prompter, actor ActorFunc) *ConsentGate {
	return &ConsentGate{
		repo:     repo,
		prompter: prompter,
		actor:    actor,
	}
}

// RequiresConsent returns true.
func (*ConsentGate) RequiresConsent() bool { return true }

// Enabled returns the last recorded answer, false if there is none.
func (g *ConsentGate) Enabled(ctx context.Context) bool {
	c, err := g.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, consent.ErrNotFound) {
			logger.ErrorKV(ctx, "Load consent failed", "error", err)
		}

		return false
	}

	return c.Granted
}

// Request prompts in the background and reports the answer through onResult.
// The prompt outlives ctx cancellation; it keeps ctx values only.
func (g *ConsentGate) Request(ctx context.Context, requestID int, onResult ResultFunc) {
	ctx = context.WithoutCancel(ctx)

	g.inflight.Add(1)

	go func() {
		defer g.inflight.Done()

		onResult(requestID, g.ask(ctx))
	}()
}

// Wait blocks until every pending prompt has reported.
func (g *ConsentGate) Wait() {
	g.inflight.Wait()
}

// ask runs the prompter and stores the answer. Any failure counts as denied.
func (g *ConsentGate) ask(ctx context.Context) bool {
	granted, err := g.prompter.Ask(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Permission prompt failed", "error", err)

		granted = false
	}

	record := &domain.Consent{
		Timestamp: time.Now(),
		Granted:   granted,
	}

	if g.actor != nil {
		actor, err := g.actor()
		if err != nil {
			logger.WarnKV(ctx, "Detect actor failed", "error", err)
		} else {
			record.Actor = actor
		}
	}

	if err = g.repo.Save(ctx, record); err != nil {
		logger.ErrorKV(ctx, "Persist consent failed", "error", err)
	}

	logger.InfoKV(ctx, "Permission answered", "granted", granted)

	return granted
}
