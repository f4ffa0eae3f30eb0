package event

import "context"

// Handler receives a single Event. Handlers are synchronous: Post does
// not return until the handler (and anything it forwards to) has run.
type Handler func(Event)

// Bus is an immutable linked-list stack of handlers. The zero value is
// not usable; construct one with NewBus. Pushing a handler onto a Bus
// never mutates the receiver — it returns a new Bus sharing the old one's
// tail, so a trait scope can install a handler for its own duration and
// let it fall out of scope naturally when the goroutine returns up the
// call stack, without any locking.
type Bus struct {
	top Handler
}

// NewBus creates a Bus whose only handler is h. h is typically the
// top-level EventHandler supplied via Configuration (spec.md §6).
func NewBus(h Handler) Bus {
	if h == nil {
		h = func(Event) {}
	}
	return Bus{top: h}
}

// Push returns a new Bus whose only handler is h. The receiver's handlers
// are not reachable from the result and the receiver is left unchanged.
// A handler that needs to forward to the current top handler (as
// handling.Install does to suppress or rewrite an issue before it reaches
// anything outside it) is installed with WithFrame instead.
func (b Bus) Push(h Handler) Bus {
	return Bus{top: h}
}

// WithFrame returns a new Bus whose top handler is produced by frame,
// given the current top handler as its "outer" argument. This is the
// usual way scopes install themselves: frame closes over outer and
// decides, per event, whether/how to call it.
func (b Bus) WithFrame(frame func(outer Handler) Handler) Bus {
	return Bus{top: frame(b.top)}
}

// Post delivers ev to the top handler of the stack. The top handler owns
// deciding whether and how to forward to handlers beneath it.
func (b Bus) Post(ev Event) {
	b.top(ev)
}

// Top returns the current top-of-stack handler, useful for collaborators
// (plan.Observer) that want to read what the Bus would call without
// installing a new frame.
func (b Bus) Top() Handler {
	return b.top
}

type ctxKey struct{}

// Push returns a context carrying bus as the current Event Bus, the
// per-scope stack spec.md §5 describes as "accessed only by the running
// task and its synchronous fan-out callers". A scope provider that
// installs a handling.Chain frame calls Push on the context it passes to
// body, so nested scopes and the eventual test body see the narrowed
// Bus without any shared mutable state.
func Push(ctx context.Context, bus Bus) context.Context {
	return context.WithValue(ctx, ctxKey{}, bus)
}

// Current returns the Bus pushed onto ctx's chain, or a Bus with a no-op
// handler if none was ever pushed.
func Current(ctx context.Context) Bus {
	if bus, ok := ctx.Value(ctxKey{}).(Bus); ok {
		return bus
	}
	return NewBus(nil)
}
