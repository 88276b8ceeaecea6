package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// ErrValidation marks a malformed event: no usable target addresses or an
// empty position. It fails the dispatch for one identity without affecting
// the rest of the batch.
var ErrValidation = errors.New("event validation failed")

// validateEvent normalizes the event's targets and position.
// Targets are trimmed, lower-cased, de-duplicated and sorted; the sort keeps
// dispatch order deterministic across identities.
func validateEvent(event *model.JobEvent) (targets []string, position string, err error) {
	seen := make(map[string]struct{}, len(event.Email))
	for _, addr := range event.Email {
		cleaned := strings.ToLower(strings.TrimSpace(addr))
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		targets = append(targets, cleaned)
	}
	if len(targets) == 0 {
		return nil, "", fmt.Errorf("%w: no valid target addresses", ErrValidation)
	}
	sort.Strings(targets)

	position = strings.TrimSpace(event.Position)
	if position == "" {
		return nil, "", fmt.Errorf("%w: position is required", ErrValidation)
	}

	return targets, position, nil
}
