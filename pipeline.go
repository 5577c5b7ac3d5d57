package reqargs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// State is the position of one pipeline invocation.
type State uint8

const (
	StateIdle State = iota
	StateResolving
	StateValidating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateValidating:
		return "validating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Failure classifies why an invocation ended in StateFailed.
type Failure uint8

const (
	FailureNone Failure = iota
	FailureTransport
	FailureValidation
	FailureConfig // No loader for a declared location
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTransport:
		return "transport"
	case FailureValidation:
		return "validation"
	case FailureConfig:
		return "config"
	default:
		return fmt.Sprintf("failure(%d)", uint8(f))
	}
}

// Event describes a finished invocation.
type Event struct {
	Operation   string
	State       State // StateDone or StateFailed
	Failure     Failure
	FieldErrors []FieldError
	Duration    time.Duration
	Err         error
}

// Observer receives one Event per invocation. Implementations must be safe for concurrent use.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc is a function adapter for Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Pipeline runs resolution and validation for operations.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	resolver  *Resolver
	logger    zerolog.Logger
	observers []Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithObserver adds an observer notified when each invocation finishes.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// NewPipeline creates a Pipeline over resolver.
func NewPipeline(resolver *Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolver returns the pipeline resolver.
func (p *Pipeline) Resolver() *Resolver { return p.resolver }

// Check verifies that every location of op has a loader. Call it at startup to surface
// configuration errors before serving requests.
func (p *Pipeline) Check(op *Operation) error {
	if err := p.resolver.Supports(op.locations); err != nil {
		return fmt.Errorf("operation %s: %w", op.name, err)
	}
	return nil
}

// Run resolves and validates the arguments of op from req.
// It returns *TransportError when a location is malformed and *ValidationError when fields
// fail; neither is retried. The caller keeps ownership of req and must Close it.
func (p *Pipeline) Run(ctx context.Context, req *Request, op *Operation) (*Arguments, error) {
	inv := invocation{
		pipeline: p,
		op:       op,
		start:    time.Now(),
		logger:   p.logger.With().Str("operation", op.name).Logger(),
	}

	inv.transition(StateResolving)
	res, err := p.resolver.Resolve(req, op.locations)
	if err != nil {
		failure := FailureTransport
		if errors.Is(err, ErrNoLoader) {
			failure = FailureConfig
		}
		inv.fail(ctx, failure, err)
		return nil, err
	}

	inv.transition(StateValidating)
	args, err := ValidateResolved(res, op.schema)
	if err != nil {
		inv.fail(ctx, FailureValidation, err)
		return nil, err
	}
	args.operation = op.name

	inv.finish(ctx)
	return args, nil
}

// Serve runs the pipeline, invokes h with the validated arguments and closes req on every
// exit path, including a panic in h.
func (p *Pipeline) Serve(ctx context.Context, req *Request, op *Operation, h Handler) (result any, err error) {
	defer func() {
		if cerr := req.Close(); cerr != nil {
			p.logger.Warn().Err(cerr).Str("operation", op.name).Msg("request cleanup failed")
		}
	}()

	args, err := p.Run(ctx, req, op)
	if err != nil {
		return nil, err
	}
	return h.Handle(ctx, op.name, args)
}

// invocation tracks the state machine of a single Run.
type invocation struct {
	pipeline *Pipeline
	op       *Operation
	state    State
	start    time.Time
	logger   zerolog.Logger
}

func (inv *invocation) transition(next State) {
	inv.logger.Debug().
		Str("from", inv.state.String()).
		Str("to", next.String()).
		Msg("pipeline state change")
	inv.state = next
}

func (inv *invocation) fail(ctx context.Context, failure Failure, err error) {
	inv.transition(StateFailed)

	ev := Event{
		Operation: inv.op.name,
		State:     StateFailed,
		Failure:   failure,
		Duration:  time.Since(inv.start),
		Err:       err,
	}
	if ve, ok := AsValidationError(err); ok {
		ev.FieldErrors = append([]FieldError(nil), ve.FieldErrors...)
	}

	switch failure {
	case FailureValidation:
		inv.logger.Debug().Int("field_errors", len(ev.FieldErrors)).Msg("argument validation failed")
	default:
		inv.logger.Warn().Err(err).Str("failure", failure.String()).Msg("argument resolution failed")
	}
	inv.notify(ctx, ev)
}

func (inv *invocation) finish(ctx context.Context) {
	inv.transition(StateDone)
	inv.notify(ctx, Event{
		Operation: inv.op.name,
		State:     StateDone,
		Duration:  time.Since(inv.start),
	})
}

func (inv *invocation) notify(ctx context.Context, ev Event) {
	for _, o := range inv.pipeline.observers {
		o.Observe(ctx, ev)
	}
}
