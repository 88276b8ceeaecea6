// Package stats tracks process-wide dispatch counters. Counters are updated
// from the receive loop and the per-identity dispatches and read by the
// periodic reporter and the /metrics endpoint, so every access is atomic.
package stats

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats holds the dispatch counters. It implements prometheus.Collector so
// the same numbers back both the periodic summary log and /metrics.
type Stats struct {
	processed        atomic.Int64
	sent             atomic.Int64
	failed           atomic.Int64
	skippedGender    atomic.Int64
	skippedBlocked   atomic.Int64
	skippedDuplicate atomic.Int64

	started atomic.Int64 // unix seconds of last reset

	processedDesc *prometheus.Desc
	sentDesc      *prometheus.Desc
	failedDesc    *prometheus.Desc
	skippedDesc   *prometheus.Desc
}

// New returns a zeroed Stats with the uptime clock started.
func New() *Stats {
	s := &Stats{
		processedDesc: prometheus.NewDesc(
			"auto_emailer_events_processed_total",
			"Job vacancy events processed.", nil, nil),
		sentDesc: prometheus.NewDesc(
			"auto_emailer_emails_sent_total",
			"Emails accepted by the SMTP transport, counted per recipient.", nil, nil),
		failedDesc: prometheus.NewDesc(
			"auto_emailer_dispatches_failed_total",
			"Dispatches that failed on transport, resource or store errors.", nil, nil),
		skippedDesc: prometheus.NewDesc(
			"auto_emailer_dispatches_skipped_total",
			"Dispatches denied by an eligibility gate.", []string{"reason"}, nil),
	}
	s.started.Store(time.Now().Unix())
	return s
}

// IncProcessed counts one consumed job-vacancy event.
func (s *Stats) IncProcessed() { s.processed.Add(1) }

// AddSent counts n delivered recipient emails.
func (s *Stats) AddSent(n int) { s.sent.Add(int64(n)) }

// IncFailed counts one failed dispatch.
func (s *Stats) IncFailed() { s.failed.Add(1) }

// IncSkippedGender counts one gender-gate denial.
func (s *Stats) IncSkippedGender() { s.skippedGender.Add(1) }

// IncSkippedBlocked counts one blocked-position denial.
func (s *Stats) IncSkippedBlocked() { s.skippedBlocked.Add(1) }

// IncSkippedDuplicate counts one duplicate denial.
func (s *Stats) IncSkippedDuplicate() { s.skippedDuplicate.Add(1) }

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Processed        int64
	Sent             int64
	Failed           int64
	SkippedGender    int64
	SkippedBlocked   int64
	SkippedDuplicate int64
	Uptime           time.Duration
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Processed:        s.processed.Load(),
		Sent:             s.sent.Load(),
		Failed:           s.failed.Load(),
		SkippedGender:    s.skippedGender.Load(),
		SkippedBlocked:   s.skippedBlocked.Load(),
		SkippedDuplicate: s.skippedDuplicate.Load(),
		Uptime:           time.Since(time.Unix(s.started.Load(), 0)),
	}
}

// Reset zeroes every counter and restarts the uptime clock.
func (s *Stats) Reset() {
	s.processed.Store(0)
	s.sent.Store(0)
	s.failed.Store(0)
	s.skippedGender.Store(0)
	s.skippedBlocked.Store(0)
	s.skippedDuplicate.Store(0)
	s.started.Store(time.Now().Unix())
}

// Summary renders the boxed human-readable table logged by the periodic
// reporter.
func (s *Stats) Summary() string {
	snap := s.Snapshot()
	hours := int(snap.Uptime.Hours())
	minutes := int(snap.Uptime.Minutes()) % 60

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("+------------------------------------------------+\n")
	fmt.Fprintf(&b, "| EMAIL STATS - last %dh %dm\n", hours, minutes)
	b.WriteString("+------------------------------------------------+\n")
	fmt.Fprintf(&b, "| Jobs processed      : %5d\n", snap.Processed)
	fmt.Fprintf(&b, "| Emails sent         : %5d\n", snap.Sent)
	fmt.Fprintf(&b, "| Failed              : %5d\n", snap.Failed)
	b.WriteString("+------------------------------------------------+\n")
	fmt.Fprintf(&b, "| Skipped (gender)    : %5d\n", snap.SkippedGender)
	fmt.Fprintf(&b, "| Skipped (blocked)   : %5d\n", snap.SkippedBlocked)
	fmt.Fprintf(&b, "| Skipped (duplicate) : %5d\n", snap.SkippedDuplicate)
	b.WriteString("+------------------------------------------------+")
	return b.String()
}

// Describe implements prometheus.Collector.
func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.processedDesc
	ch <- s.sentDesc
	ch <- s.failedDesc
	ch <- s.skippedDesc
}

// Collect implements prometheus.Collector.
func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	snap := s.Snapshot()
	ch <- prometheus.MustNewConstMetric(s.processedDesc, prometheus.CounterValue, float64(snap.Processed))
	ch <- prometheus.MustNewConstMetric(s.sentDesc, prometheus.CounterValue, float64(snap.Sent))
	ch <- prometheus.MustNewConstMetric(s.failedDesc, prometheus.CounterValue, float64(snap.Failed))
	ch <- prometheus.MustNewConstMetric(s.skippedDesc, prometheus.CounterValue, float64(snap.SkippedGender), "gender_mismatch")
	ch <- prometheus.MustNewConstMetric(s.skippedDesc, prometheus.CounterValue, float64(snap.SkippedBlocked), "blocked_position")
	ch <- prometheus.MustNewConstMetric(s.skippedDesc, prometheus.CounterValue, float64(snap.SkippedDuplicate), "duplicate")
}
