package reqargs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Observe(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) last(t *testing.T) Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		t.Fatal("no events recorded")
	}
	return r.events[len(r.events)-1]
}

func testPipeline(rec *eventRecorder, loaders ...Loader) *Pipeline {
	return NewPipeline(NewResolver(loaders...), WithObserver(rec))
}

func TestPipeline_Run(t *testing.T) {
	rec := &eventRecorder{}
	query := &stubLoader{loc: InQuery, data: RawMapping{"limit": "5"}}
	p := testPipeline(rec, query)
	op := MustOperation("list", MustSchema([]*Field{Int("limit")}), InQuery)

	args, err := p.Run(context.Background(), newTestRequest(), op)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if args.Int("limit") != 5 {
		t.Errorf("limit = %d, want 5", args.Int("limit"))
	}
	if args.Operation() != "list" {
		t.Errorf("Operation() = %q, want list", args.Operation())
	}

	ev := rec.last(t)
	if ev.State != StateDone || ev.Failure != FailureNone || ev.Operation != "list" {
		t.Errorf("event = %+v", ev)
	}
}

func TestPipeline_Failures(t *testing.T) {
	schema := MustSchema([]*Field{Int("limit").Required()})

	tests := []struct {
		name        string
		loaders     []Loader
		wantFailure Failure
		check       func(t *testing.T, err error)
	}{
		{
			name:        "validation",
			loaders:     []Loader{&stubLoader{loc: InQuery, data: RawMapping{}}},
			wantFailure: FailureValidation,
			check: func(t *testing.T, err error) {
				ve, ok := AsValidationError(err)
				if !ok || !ve.Has("limit", ErrCodeMissingField) {
					t.Errorf("expected missing_field for limit, got %v", err)
				}
			},
		},
		{
			name:        "transport",
			loaders:     []Loader{&stubLoader{loc: InQuery, err: ErrMalformedQuery}},
			wantFailure: FailureTransport,
			check: func(t *testing.T, err error) {
				if _, ok := AsTransportError(err); !ok || !errors.Is(err, ErrMalformedQuery) {
					t.Errorf("expected transport error, got %v", err)
				}
			},
		},
		{
			name:        "config",
			loaders:     nil,
			wantFailure: FailureConfig,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNoLoader) {
					t.Errorf("expected ErrNoLoader, got %v", err)
				}
				if _, ok := AsTransportError(err); ok {
					t.Error("configuration error reported as transport error")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &eventRecorder{}
			p := testPipeline(rec, tt.loaders...)
			op := MustOperation("list", schema, InQuery)

			args, err := p.Run(context.Background(), newTestRequest(), op)
			if err == nil {
				t.Fatalf("expected error, got arguments %v", args.Map())
			}
			tt.check(t, err)

			ev := rec.last(t)
			if ev.State != StateFailed || ev.Failure != tt.wantFailure {
				t.Errorf("event state=%s failure=%s, want failed/%s", ev.State, ev.Failure, tt.wantFailure)
			}
			if ev.Err != err {
				t.Errorf("event error = %v, want %v", ev.Err, err)
			}
		})
	}
}

func TestPipeline_EventCarriesFieldErrors(t *testing.T) {
	rec := &eventRecorder{}
	p := testPipeline(rec, &stubLoader{loc: InBody, data: RawMapping{"a": "x", "b": "y"}})
	op := MustOperation("op", MustSchema([]*Field{Int("a"), Int("b")}), InBody)

	if _, err := p.Run(context.Background(), newTestRequest(), op); err == nil {
		t.Fatal("expected validation error")
	}
	ev := rec.last(t)
	if len(ev.FieldErrors) != 2 {
		t.Errorf("event has %d field errors, want 2", len(ev.FieldErrors))
	}
}

func TestPipeline_Check(t *testing.T) {
	p := NewPipeline(NewResolver(&stubLoader{loc: InQuery}))

	if err := p.Check(MustOperation("ok", MustSchema(nil), InQuery)); err != nil {
		t.Errorf("Check returned error: %v", err)
	}
	err := p.Check(MustOperation("bad", MustSchema(nil), InQuery, InFile))
	if !errors.Is(err, ErrNoLoader) {
		t.Fatalf("Check error = %v, want ErrNoLoader", err)
	}
	if !strings.Contains(err.Error(), "operation bad") || !strings.Contains(err.Error(), "file") {
		t.Errorf("error %q does not name operation and location", err.Error())
	}
}

func TestPipeline_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	p := NewPipeline(NewResolver(&stubLoader{loc: InQuery, err: ErrMalformedQuery}), WithLogger(logger))
	op := MustOperation("broken", MustSchema(nil), InQuery)

	if _, err := p.Run(context.Background(), newTestRequest(), op); err == nil {
		t.Fatal("expected error")
	}

	out := buf.String()
	for _, want := range []string{
		`"operation":"broken"`,
		`"message":"pipeline state change"`,
		`"to":"resolving"`,
		`"to":"failed"`,
		`"failure":"transport"`,
		`"message":"argument resolution failed"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestPipeline_ServeClosesRequest(t *testing.T) {
	p := NewPipeline(NewResolver(&stubLoader{loc: InQuery, data: RawMapping{"a": "1"}}))
	op := MustOperation("op", MustSchema([]*Field{Int("a")}), InQuery)

	t.Run("success", func(t *testing.T) {
		req := newTestRequest()
		closed := 0
		req.OnClose(func() error { closed++; return nil })

		result, err := p.Serve(context.Background(), req, op, HandlerFunc(
			func(_ context.Context, operation string, args *Arguments) (any, error) {
				return operation + ":" + args.String("missing"), nil
			}))
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
		if result != "op:" {
			t.Errorf("result = %v", result)
		}
		if closed != 1 {
			t.Errorf("cleanup ran %d times, want 1", closed)
		}
	})

	t.Run("collaborator error is returned unchanged", func(t *testing.T) {
		req := newTestRequest()
		closed := 0
		req.OnClose(func() error { closed++; return nil })
		want := errors.New("exchange unavailable")

		_, err := p.Serve(context.Background(), req, op, HandlerFunc(
			func(context.Context, string, *Arguments) (any, error) {
				return nil, want
			}))
		if err != want {
			t.Errorf("err = %v, want %v", err, want)
		}
		if closed != 1 {
			t.Errorf("cleanup ran %d times, want 1", closed)
		}
	})

	t.Run("validation failure skips handler", func(t *testing.T) {
		bad := NewPipeline(NewResolver(&stubLoader{loc: InQuery, data: RawMapping{"a": "x"}}))
		req := newTestRequest()
		closed := 0
		req.OnClose(func() error { closed++; return nil })

		called := false
		_, err := bad.Serve(context.Background(), req, op, HandlerFunc(
			func(context.Context, string, *Arguments) (any, error) {
				called = true
				return nil, nil
			}))
		if _, ok := AsValidationError(err); !ok {
			t.Errorf("err = %v, want validation error", err)
		}
		if called {
			t.Error("handler was invoked after a validation failure")
		}
		if closed != 1 {
			t.Errorf("cleanup ran %d times, want 1", closed)
		}
	})

	t.Run("panic", func(t *testing.T) {
		req := newTestRequest()
		closed := 0
		req.OnClose(func() error { closed++; return nil })

		func() {
			defer func() {
				if r := recover(); r != "boom" {
					t.Errorf("recovered %v, want boom", r)
				}
			}()
			_, _ = p.Serve(context.Background(), req, op, HandlerFunc(
				func(context.Context, string, *Arguments) (any, error) {
					panic("boom")
				}))
		}()
		if closed != 1 {
			t.Errorf("cleanup ran %d times, want 1", closed)
		}
	})
}

func TestStateAndFailureStrings(t *testing.T) {
	states := map[State]string{
		StateIdle:       "idle",
		StateResolving:  "resolving",
		StateValidating: "validating",
		StateDone:       "done",
		StateFailed:     "failed",
		State(42):       "state(42)",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", uint8(s), s.String(), want)
		}
	}
	if FailureConfig.String() != "config" || Failure(9).String() != "failure(9)" {
		t.Error("unexpected Failure strings")
	}
}
