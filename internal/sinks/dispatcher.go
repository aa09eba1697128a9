package sinks

import (
	"context"
	"sync"
	"time"

	"meraki_leads_backend/internal/leads/domain"
	"meraki_leads_backend/platform/config"
	"meraki_leads_backend/platform/logger"
)

// Outcome is the result of a single sink delivery attempt. The commit path
// ignores outcomes on purpose; they exist so the ignoring stays visible and
// so tests can observe that dispatch was attempted.
type Outcome struct {
	Sink string
	Err  error
}

// OK reports whether the sink accepted the record.
func (o Outcome) OK() bool { return o.Err == nil }

// Dispatcher fans a lead record out to every configured sink. Each sink is
// attempted independently: one failing never stops the others, and no
// failure propagates to the caller.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	log     *logger.Logger

	mu       sync.Mutex
	attempts []Outcome
}

// NewDispatcher builds a dispatcher with the sinks enabled by configuration.
func NewDispatcher(cfg config.SinkConfig, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		timeout: cfg.GetSinkTimeout(),
		log:     log,
	}
	if crm := NewCRMSink(cfg.GetCRMSinkURL(), cfg.GetSinkTimeout()); crm != nil {
		d.sinks = append(d.sinks, crm)
	}
	if tracker := NewSalesTrackerSink(cfg.GetSalesTrackerURL(), cfg.GetSinkTimeout()); tracker != nil {
		d.sinks = append(d.sinks, tracker)
	}
	return d
}

// NewDispatcherWithSinks builds a dispatcher over explicit sinks (tests).
func NewDispatcherWithSinks(log *logger.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, timeout: timeout, log: log}
}

// Send delivers the record to one sink and returns the outcome. Failures are
// logged here; the caller decides whether the outcome matters.
func (d *Dispatcher) Send(ctx context.Context, sink Sink, record domain.LeadRecord) Outcome {
	sendCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	outcome := Outcome{Sink: sink.Name(), Err: sink.Send(sendCtx, record)}
	if outcome.Err != nil {
		d.log.SinkDispatchFailure(sink.Name(), outcome.Err)
	}

	d.mu.Lock()
	d.attempts = append(d.attempts, outcome)
	d.mu.Unlock()

	return outcome
}

// DispatchAll sends the record to every sink without waiting for results.
// The detached context outlives the originating HTTP request.
func (d *Dispatcher) DispatchAll(ctx context.Context, record domain.LeadRecord) {
	detached := context.WithoutCancel(ctx)
	for _, sink := range d.sinks {
		go func(sink Sink) {
			_ = d.Send(detached, sink, record)
		}(sink)
	}
}

// DispatchAllSync sends the record to every sink and waits for completion.
// Outcomes are still ignored; this exists for callers that must not outlive
// their dispatches (the scheduler worker, tests).
func (d *Dispatcher) DispatchAllSync(ctx context.Context, record domain.LeadRecord) {
	var wg sync.WaitGroup
	for _, sink := range d.sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			_ = d.Send(ctx, sink, record)
		}(sink)
	}
	wg.Wait()
}

// SinkCount reports how many sinks are enabled.
func (d *Dispatcher) SinkCount() int {
	return len(d.sinks)
}

// Attempts returns a copy of all delivery attempts so far (tests).
func (d *Dispatcher) Attempts() []Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Outcome, len(d.attempts))
	copy(out, d.attempts)
	return out
}
