// Package metrics provides standardised metric emission helpers for the
// enrollment pipeline and the background services.
package metrics

import (
	"time"

	"github.com/ekefan/afitlms/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// EnrollmentMetric captures details about one enrollment lifecycle event.
type EnrollmentMetric struct {
	Stage    string
	Result   string
	Reason   string
	Duration time.Duration
}

// EmitEnrollment emits the counter and optional timing for an enrollment
// lifecycle event. A nil sink is a no-op.
func EmitEnrollment(sink statsd.Sink, in EnrollmentMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"stage":  in.Stage,
		"result": in.Result,
	}
	if in.Reason != "" {
		tags["reason"] = in.Reason
	}

	sink.Count("enrollment.stage", 1, tags)
	if in.Duration > 0 {
		sink.Timing("enrollment.duration", in.Duration, CloneTags(tags))
	}
}

// EmitSweep records one janitor sweep outcome.
func EmitSweep(sink statsd.Sink, removed int, result string) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": result}
	sink.Count("janitor.sweep", 1, tags)
	if removed > 0 {
		sink.Count("janitor.jobs_removed", int64(removed), CloneTags(tags))
	}
}

// EmitRosterSync records one per-course roster sync outcome.
func EmitRosterSync(sink statsd.Sink, course, result string, duration time.Duration) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"course": course,
		"result": result,
	}
	sink.Count("roster.sync", 1, tags)
	if duration > 0 {
		sink.Timing("roster.sync_duration", duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k != "" {
			out[k] = v
		}
	}
	return out
}
