// Package model defines the domain types shared across the auto-emailer:
// sender identities loaded from Postgres and the job-vacancy events consumed
// from the Redis channel.
package model

// SenderIdentity is one registered sender account. It is loaded fresh for
// every event and never cached across events.
type SenderIdentity struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	AppPassword string `json:"-"`
	IsActive    bool   `json:"is_active"`
}

// IdentityProfile is the display information attached to a sender identity.
// Username resolves the identity's CV and template files on disk.
type IdentityProfile struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Gender    string `json:"gender"` // "male" or "female"
	Phone     string `json:"phone"`
}

// BlockedPositions is the per-identity block-list applied against the job
// position string. Keywords are matched as case-insensitive substrings,
// patterns as regular expressions.
type BlockedPositions struct {
	Keywords      []string `json:"keywords"`
	RegexPatterns []string `json:"regex_patterns"`
}

// IdentityFilterConfig is the filtering configuration for one identity.
type IdentityFilterConfig struct {
	AccountID        int64            `json:"account_id"`
	BlockedPositions BlockedPositions `json:"blocked_job_position"`
}

// CompleteIdentity composes account, profile and filter config for one
// sender. Constructed per lookup; a read-only snapshot for one dispatch.
type CompleteIdentity struct {
	Account SenderIdentity
	Profile IdentityProfile
	Filter  IdentityFilterConfig
}

// JobEvent is the extracted payload of one job-vacancy notification.
type JobEvent struct {
	IsJobVacancy   bool     `json:"is_job_vacancy"`
	Email          []string `json:"email"`
	Position       string   `json:"position"`
	SubjectEmail   string   `json:"subject_email"`
	GenderRequired string   `json:"gender_required"`
}

// EventEnvelope is the wire shape of one message on the job-vacancy channel.
type EventEnvelope struct {
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	Timestamp     string    `json:"timestamp"`
	ExtractedData *JobEvent `json:"extracted_data"`
}

// SentPair identifies one delivered email for deduplication purposes.
// The (Target, Sender) pair is unique in the sent log.
type SentPair struct {
	Target string
	Sender string
}
