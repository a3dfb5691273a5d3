// Package metrics defines standardised job lifecycle metric emission.
package metrics

import (
	"time"

	"github.com/cardano-insights/agent-service/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Job lifecycle transition names used in metric tags.
const (
	TransitionCreate       = "create"
	TransitionProvideInput = "provide_input"
	TransitionComplete     = "complete"
	TransitionFail         = "fail"
	TransitionSweep        = "sweep"
)

// JobMetric captures details about a job lifecycle event for metric emission.
type JobMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
}

// EmitJobLifecycle emits standardised job lifecycle metrics.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}

	sink.Count("job.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, tags)
	}
}
