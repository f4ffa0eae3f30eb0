package plan

import (
	"context"

	"github.com/google/uuid"

	"paratest/clock"
	"paratest/config"
	"paratest/event"
	"paratest/scheduler"
	"paratest/trait"
)

// PlanRunner is spec.md §4.6's main loop: it walks a Plan, drives every
// Step through prepare/scope/execute, and reduces the resulting event
// stream into a RunSummary. Adapted from the teacher's Engine (tests/
// framework/runner/engine.go), which owned the same three
// responsibilities — a configured concurrency pool, a single dispatch
// point fanning events out to whoever's listening, and a top-level
// Run entry point — for HTTP handler benchmarking rather than test
// scheduling.
type PlanRunner struct {
	clk       clock.Clock
	cfg       *config.Configuration
	handler   event.Handler
	observers []Observer
	pool      *scheduler.Serializer
}

// NewPlanRunner builds a PlanRunner. cfg defaults to config.Default() and
// clk to clock.System{} if nil. handler is spec.md §6's top-level
// EventHandler; observers are passive taps (store.Recorder,
// reportserver.Server) that see every event handler has already
// processed.
func NewPlanRunner(clk clock.Clock, cfg *config.Configuration, handler event.Handler, observers ...Observer) *PlanRunner {
	if cfg == nil {
		cfg = config.Default()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &PlanRunner{
		clk:       clk,
		cfg:       cfg,
		handler:   handler,
		observers: observers,
		pool:      scheduler.NewSerializer(cfg.Parallelization.Width),
	}
}

// dispatch is the root Bus handler: every event posted anywhere in a run
// eventually forwards here (unless a trait's IssueHandlingTrait
// suppressed it first), and from here it reaches the configured handler
// and every Observer, in that order.
func (r *PlanRunner) dispatch(ev event.Event) {
	if r.handler != nil {
		r.handler(ev)
	}
	for _, o := range r.observers {
		o(ev)
	}
}

// Run executes plan to completion and returns its RunSummary, per
// spec.md §6's run(plan, configuration, handler) -> RunSummary contract.
func (r *PlanRunner) Run(ctx context.Context, p *Plan) RunSummary {
	summary := RunSummary{ID: uuid.New(), StartedAt: r.clk.Now()}

	ctx = event.Push(ctx, event.NewBus(r.dispatch))
	ctx = config.Push(ctx, r.cfg)

	r.post(ctx, event.Event{Kind: event.KindRunStarted})

	acc := &outcomeAccumulator{}
	r.runDescriptor(ctx, p.Root, nil, trait.SerializationNone, acc)

	summary.EndedAt = r.clk.Now()
	summary.Passed, summary.Failed, summary.Skipped = acc.counts()
	summary.Cancelled = ctx.Err() != nil

	r.post(ctx, event.Event{Kind: event.KindRunEnded, Payload: summary})
	return summary
}

// effectiveSerializationMode combines inherited (the mode threaded down
// from ancestor suites already marked .serialized(.globally) recursively,
// per spec.md §4.4 step 2) with every effective trait's own contribution,
// preferring Global over Local over None.
func effectiveSerializationMode(effective []trait.Trait, inherited trait.SerializationMode) trait.SerializationMode {
	mode := inherited
	for _, t := range effective {
		switch t.SerializationMode() {
		case trait.SerializationGlobal:
			return trait.SerializationGlobal
		case trait.SerializationLocal:
			if mode == trait.SerializationNone {
				mode = trait.SerializationLocal
			}
		}
	}
	return mode
}

func (r *PlanRunner) post(ctx context.Context, ev event.Event) {
	ev.Instant = r.clk.Now()
	event.Current(ctx).Post(ev)
}
