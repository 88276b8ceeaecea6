// Package dispatch orchestrates one send attempt per sender identity and
// fans a job-vacancy event out across all active identities. Every
// per-identity failure is contained here: nothing escapes into the
// subscriber loop.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/jobseek-id/auto-emailer/internal/eligibility"
	"github.com/jobseek-id/auto-emailer/internal/mailer"
	"github.com/jobseek-id/auto-emailer/internal/model"
	"github.com/jobseek-id/auto-emailer/internal/stats"
	"github.com/jobseek-id/auto-emailer/internal/template"
)

// IdentityStore is the read side of the identity tables used by the
// dispatcher.
type IdentityStore interface {
	ActiveIdentities(ctx context.Context) ([]model.SenderIdentity, error)
	Complete(ctx context.Context, accountID int64) (*model.CompleteIdentity, error)
}

// SentRecorder appends sent records after a successful delivery.
type SentRecorder interface {
	RecordBatch(ctx context.Context, pairs []model.SentPair) (int, error)
}

// Evaluator decides whether one identity may send for one event.
type Evaluator interface {
	Evaluate(ctx context.Context, identity *model.CompleteIdentity, targets []string,
		position, requiredGender string) (eligibility.Decision, error)
}

// Dispatcher performs one send attempt for one identity:
// evaluate, render, build, deliver, record.
type Dispatcher struct {
	store     IdentityStore
	evaluator Evaluator
	renderer  *template.Renderer
	transport mailer.Transport
	sent      SentRecorder
	stats     *stats.Stats
	logger    *slog.Logger

	cvDir       string
	templateDir string
}

// DispatcherConfig collects the collaborators of a Dispatcher.
type DispatcherConfig struct {
	Store       IdentityStore
	Evaluator   Evaluator
	Renderer    *template.Renderer
	Transport   mailer.Transport
	Sent        SentRecorder
	Stats       *stats.Stats
	Logger      *slog.Logger
	CVDir       string
	TemplateDir string
}

// NewDispatcher returns a Dispatcher wired with cfg.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		store:       cfg.Store,
		evaluator:   cfg.Evaluator,
		renderer:    cfg.Renderer,
		transport:   cfg.Transport,
		sent:        cfg.Sent,
		stats:       cfg.Stats,
		logger:      cfg.Logger,
		cvDir:       cfg.CVDir,
		templateDir: cfg.TemplateDir,
	}
}

// DispatchFor attempts one send for one identity. It reports success as a
// bool; every failure mode is logged and converted, never propagated. The
// target list is all-or-none per identity: either every target is emailed in
// one message or none is.
func (d *Dispatcher) DispatchFor(ctx context.Context, accountID int64, event *model.JobEvent) bool {
	identity, err := d.store.Complete(ctx, accountID)
	if err != nil {
		d.logger.Error("identity lookup failed",
			slog.Int64("account_id", accountID),
			slog.String("error", err.Error()))
		return false
	}
	sender := identity.Account.Email

	targets, position, err := validateEvent(event)
	if err != nil {
		d.logger.Warn("event validation failed",
			slog.String("sender", sender),
			slog.String("error", err.Error()))
		return false
	}

	decision, err := d.evaluator.Evaluate(ctx, identity, targets, position, event.GenderRequired)
	if err != nil {
		// Fail closed: if the duplicate check cannot run, do not risk a
		// resend.
		d.logger.Error("eligibility check failed, not sending",
			slog.String("sender", sender),
			slog.String("error", err.Error()))
		return false
	}
	if !decision.Allowed {
		d.recordSkip(decision.Reason, sender, position)
		return false
	}

	username := identity.Profile.Username
	bodyHTML, err := d.renderer.Render(template.BodyPath(d.templateDir, username), map[string]string{
		"position": position,
		"name":     identity.Profile.Name,
		"phone":    identity.Profile.Phone,
	})
	if err != nil {
		d.stats.IncFailed()
		d.logger.Error("template render failed",
			slog.String("sender", sender),
			slog.String("username", username),
			slog.String("error", err.Error()))
		return false
	}

	subject := template.BuildSubject(event.SubjectEmail, position, identity.Profile.Name)

	msg, err := mailer.BuildMessage(identity, targets, subject, bodyHTML, template.CVPath(d.cvDir, username))
	if err != nil {
		d.stats.IncFailed()
		d.logger.Error("message build failed",
			slog.String("sender", sender),
			slog.String("error", err.Error()))
		return false
	}

	if err := d.transport.Send(ctx, &identity.Account, msg); err != nil {
		d.stats.IncFailed()
		d.logger.Error("smtp send failed",
			slog.String("sender", sender),
			slog.Int("targets", len(targets)),
			slog.String("error", err.Error()))
		return false
	}

	// Best-effort: the mail is already out, a record failure must not flip
	// the outcome.
	pairs := make([]model.SentPair, 0, len(targets))
	for _, target := range targets {
		pairs = append(pairs, model.SentPair{Target: target, Sender: sender})
	}
	if inserted, err := d.sent.RecordBatch(ctx, pairs); err != nil {
		d.logger.Error("recording sent log failed",
			slog.String("sender", sender),
			slog.String("error", err.Error()))
	} else if inserted < len(pairs) {
		d.logger.Info("some sent records already existed",
			slog.String("sender", sender),
			slog.Int("inserted", inserted),
			slog.Int("total", len(pairs)))
	}

	d.stats.AddSent(len(targets))
	d.logger.Info("email sent",
		slog.String("sender", sender),
		slog.Int("recipients", len(targets)),
		slog.String("position", position))
	return true
}

// recordSkip logs an eligibility denial and bumps its counter. Denials are
// normal negative outcomes, never error-level.
func (d *Dispatcher) recordSkip(reason eligibility.Reason, sender, position string) {
	switch reason {
	case eligibility.ReasonGenderMismatch:
		d.stats.IncSkippedGender()
	case eligibility.ReasonBlockedPosition:
		d.stats.IncSkippedBlocked()
	case eligibility.ReasonDuplicate:
		d.stats.IncSkippedDuplicate()
	}
	d.logger.Info("dispatch skipped",
		slog.String("sender", sender),
		slog.String("position", position),
		slog.String("reason", string(reason)))
}
