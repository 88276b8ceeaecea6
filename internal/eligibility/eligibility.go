// Package eligibility decides, per sender identity, whether a job-vacancy
// event should result in an email. The evaluation is deterministic given
// identical inputs and sent-log state; the only I/O is the duplicate check.
package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// Reason explains a deny decision.
type Reason string

// Deny reasons, in rule order. The first matching rule wins.
const (
	ReasonGenderMismatch  Reason = "gender_mismatch"
	ReasonBlockedPosition Reason = "blocked_position"
	ReasonDuplicate       Reason = "duplicate"
)

// Decision is the outcome of evaluating one identity against one event.
type Decision struct {
	Allowed bool
	Reason  Reason // set only when Allowed is false
}

var allow = Decision{Allowed: true}

func deny(r Reason) Decision {
	return Decision{Allowed: false, Reason: r}
}

// Gender keyword vocabularies. Matching is case-insensitive set membership,
// not substring search.
var (
	femaleKeywords = map[string]struct{}{
		"female": {}, "perempuan": {}, "wanita": {},
	}
	maleKeywords = map[string]struct{}{
		"male": {}, "men": {}, "laki-laki": {}, "pria": {},
	}
)

// SentChecker is the read side of the sent log used by the duplicate gate.
type SentChecker interface {
	AlreadySent(ctx context.Context, target, sender string) (bool, error)
}

// Evaluator applies the gender, blocked-position and duplicate gates.
type Evaluator struct {
	sent   SentChecker
	logger *slog.Logger
}

// New returns an Evaluator using sent for duplicate checks.
func New(sent SentChecker, logger *slog.Logger) *Evaluator {
	return &Evaluator{sent: sent, logger: logger}
}

// Evaluate runs the gates in order; the first deny wins. requiredGender may
// be empty. A store failure on the duplicate check is returned as an error:
// when the check cannot be performed the send must not happen.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	identity *model.CompleteIdentity,
	targets []string,
	position string,
	requiredGender string,
) (Decision, error) {
	if d := genderGate(identity.Profile.Gender, requiredGender); !d.Allowed {
		return d, nil
	}

	if e.positionBlocked(identity.Filter.BlockedPositions, position) {
		return deny(ReasonBlockedPosition), nil
	}

	// All-or-none per identity: one prior record for any target denies the
	// whole send.
	sender := identity.Account.Email
	for _, target := range targets {
		sent, err := e.sent.AlreadySent(ctx, target, sender)
		if err != nil {
			return Decision{}, fmt.Errorf("duplicate check (%s <- %s): %w", target, sender, err)
		}
		if sent {
			return deny(ReasonDuplicate), nil
		}
	}

	return allow, nil
}

// genderGate denies when the event requires a gender that conflicts with the
// identity's declared gender. Absence of a requirement never denies.
func genderGate(identityGender, requiredGender string) Decision {
	if requiredGender == "" {
		return allow
	}

	required := strings.ToLower(strings.TrimSpace(requiredGender))
	gender := strings.ToLower(identityGender)

	if _, ok := femaleKeywords[required]; ok && gender == "male" {
		return deny(ReasonGenderMismatch)
	}
	if _, ok := maleKeywords[required]; ok && gender == "female" {
		return deny(ReasonGenderMismatch)
	}
	return allow
}

// positionBlocked checks the identity's block-list against the normalized
// position. Keywords match as case-insensitive substrings, patterns as
// regular expressions. An invalid pattern is logged and skipped: a broken
// regex never blocks a legitimate send.
func (e *Evaluator) positionBlocked(blocked model.BlockedPositions, position string) bool {
	normalized := NormalizePosition(position)

	for _, keyword := range blocked.Keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(keyword)) {
			return true
		}
	}

	for _, pattern := range blocked.RegexPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			e.logger.Warn("invalid blocked-position regex, skipping",
				slog.String("pattern", pattern),
				slog.String("error", err.Error()))
			continue
		}
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// NormalizePosition lower-cases the position and collapses internal
// whitespace to single spaces.
func NormalizePosition(position string) string {
	return strings.Join(strings.Fields(strings.ToLower(position)), " ")
}
