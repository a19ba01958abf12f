package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/tweetarchive/internal/observability"
)

// Hooks captures unit-of-work observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncDuplicate(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncDuplicate(string)                            {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates hooks backed by observability metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.ObserveWriteOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncDuplicate(name string) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.IncDuplicate(strings.TrimSpace(name))
}
