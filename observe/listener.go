package observe

import (
	"context"
	"time"
)

// CallListener translates executor lifecycle events into metrics and logs.
// It satisfies the resilience package's Listener interface and is the
// standard way to instrument an executor:
//
//	lst, _ := observe.NewCallListener(obs, "github")
//	e := resilience.NewExecutor(resilience.WithListener(lst), ...)
//
// All methods are best-effort and never panic.
type CallListener struct {
	connector string
	metrics   Metrics
	logger    Logger
}

// NewCallListener creates a listener that records calls for one connector.
func NewCallListener(obs Observer, connector string) (*CallListener, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	if connector == "" {
		return nil, ErrMissingConnector
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return &CallListener{
		connector: connector,
		metrics:   metrics,
		logger:    obs.Logger(),
	}, nil
}

func (l *CallListener) meta(route string) CallMeta {
	return CallMeta{Connector: l.connector, Route: route}
}

// OnRequest logs the start of a logical call at debug level.
func (l *CallListener) OnRequest(ctx context.Context, route string) {
	l.logger.WithCall(l.meta(route)).Debug(ctx, "call started")
}

// OnResponse records the call as successful.
func (l *CallListener) OnResponse(ctx context.Context, route string, duration time.Duration) {
	meta := l.meta(route)
	l.metrics.RecordCall(ctx, meta, duration, nil)
	l.logger.WithCall(meta).Info(ctx, "call completed",
		Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	)
}

// OnError records the call as failed. Admission denials arrive here too,
// so the error counter covers both rejected and failed calls.
func (l *CallListener) OnError(ctx context.Context, route string, err error) {
	meta := l.meta(route)
	l.metrics.RecordCall(ctx, meta, 0, err)
	l.logger.WithCall(meta).Error(ctx, "call failed",
		Field{Key: "error", Value: err.Error()},
	)
}

// OnRetry records one retry attempt.
func (l *CallListener) OnRetry(ctx context.Context, route string, attempt int, err error, delay time.Duration) {
	meta := l.meta(route)
	l.metrics.RecordRetry(ctx, meta, attempt, delay)
	l.logger.WithCall(meta).Warn(ctx, "call retrying",
		Field{Key: "attempt", Value: attempt},
		Field{Key: "delay_ms", Value: float64(delay.Milliseconds())},
		Field{Key: "error", Value: err.Error()},
	)
}
