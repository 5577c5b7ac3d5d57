package httpargs

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Azhovan/reqargs"
	"github.com/Azhovan/reqargs/sourcebody"
	"github.com/Azhovan/reqargs/sourcefile"
	"github.com/Azhovan/reqargs/sourceform"
	"github.com/Azhovan/reqargs/sourcepath"
	"github.com/Azhovan/reqargs/sourcequery"
)

// RequestIDHeader is set on every response. An ID from chi's RequestID middleware is reused.
const RequestIDHeader = "X-Request-Id"

// ErrorMapper maps a pipeline or collaborator error to a status code and response body.
type ErrorMapper interface {
	MapError(err error) (status int, body any)
}

// ErrorMapperFunc is a function adapter for ErrorMapper interface.
type ErrorMapperFunc func(err error) (int, any)

func (f ErrorMapperFunc) MapError(err error) (int, any) {
	return f(err)
}

// Options configures the adapter.
type Options struct {
	// Logger receives one entry per request. The zero value discards everything.
	Logger zerolog.Logger

	// MaxBodyBytes and MaxMemory are passed to every reqargs.Request. Zero keeps the defaults.
	MaxBodyBytes int64
	MaxMemory    int64

	// ErrorMapper overrides DefaultErrorMapper.
	ErrorMapper ErrorMapper
}

// Adapter turns operations into http.Handlers sharing one pipeline.
type Adapter struct {
	pipeline *reqargs.Pipeline
	opts     Options
}

// New creates an adapter over pipeline.
func New(pipeline *reqargs.Pipeline, opts Options) *Adapter {
	if opts.ErrorMapper == nil {
		opts.ErrorMapper = ErrorMapperFunc(DefaultErrorMapper)
	}
	return &Adapter{pipeline: pipeline, opts: opts}
}

// DefaultLoaders returns a loader for every location with default options.
func DefaultLoaders() []reqargs.Loader {
	return []reqargs.Loader{
		sourcebody.New(sourcebody.Options{}),
		sourcequery.New(),
		sourcepath.New(sourcepath.Options{}),
		sourceform.New(),
		sourcefile.New(sourcefile.Options{}),
	}
}

// Result is the success payload.
type Result struct {
	Result any `json:"result"`
}

// ErrorBody is the failure payload. Issues is set for validation failures only.
type ErrorBody struct {
	Error  string               `json:"error"`
	Issues []reqargs.FieldError `json:"issues,omitempty"`
}

// Check reports the configuration error of op, if any, so routes can be verified at startup.
func (a *Adapter) Check(op *reqargs.Operation) error {
	return a.pipeline.Check(op)
}

// Handle returns a handler that runs op and passes the validated arguments to h.
// Uploaded files are removed once h returns.
func (a *Adapter) Handle(op *reqargs.Operation, h reqargs.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := middleware.GetReqID(r.Context())
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		req := reqargs.NewRequest(r,
			reqargs.WithMaxBodyBytes(a.opts.MaxBodyBytes),
			reqargs.WithMaxMemory(a.opts.MaxMemory),
		)

		result, err := a.pipeline.Serve(r.Context(), req, op, h)

		status := http.StatusOK
		var body any = Result{Result: result}
		if err != nil {
			status, body = a.opts.ErrorMapper.MapError(err)
		}

		status, werr := writeJSON(w, status, body)
		if werr != nil {
			a.opts.Logger.Error().Err(werr).Str("operation", op.Name()).Msg("failed to write response body")
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = a.opts.Logger.Error().Err(err)
		case status >= 400:
			event = a.opts.Logger.Warn().Err(err)
		default:
			event = a.opts.Logger.Info()
		}
		event.
			Str("operation", op.Name()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("request_id", requestID).
			Msg("operation served")
	})
}

// DefaultErrorMapper maps validation failures to 400 with issues, transport failures to
// 400, 413 or 415, and other errors to their HTTPStatus or 500.
func DefaultErrorMapper(err error) (int, any) {
	if ve, ok := reqargs.AsValidationError(err); ok {
		return http.StatusBadRequest, ErrorBody{Error: "validation failed", Issues: ve.FieldErrors}
	}
	if _, ok := reqargs.AsTransportError(err); ok {
		return StatusOf(err), ErrorBody{Error: err.Error()}
	}
	if errors.Is(err, reqargs.ErrNoLoader) {
		return http.StatusInternalServerError, ErrorBody{Error: "operation is misconfigured"}
	}
	return StatusOf(err), ErrorBody{Error: err.Error()}
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if _, ok := reqargs.AsValidationError(err); ok {
		return http.StatusBadRequest
	}
	if _, ok := reqargs.AsTransportError(err); ok {
		switch {
		case errors.Is(err, reqargs.ErrBodyTooLarge):
			return http.StatusRequestEntityTooLarge
		case errors.Is(err, reqargs.ErrUnsupportedMediaType):
			return http.StatusUnsupportedMediaType
		default:
			return http.StatusBadRequest
		}
	}

	var coded interface{ HTTPStatus() int }
	if errors.As(err, &coded) {
		if status := coded.HTTPStatus(); status >= 400 && status <= 599 {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeJSON writes data with status, or a 500 when data cannot be encoded. It returns the
// status actually written.
func writeJSON(w http.ResponseWriter, status int, data any) (int, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		payload, _ = json.Marshal(ErrorBody{Error: "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, werr := w.Write(payload); werr != nil {
		return status, werr
	}
	return status, err
}
