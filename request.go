package reqargs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
)

// DefaultMaxBodyBytes bounds how much of a request body is buffered (32MB).
const DefaultMaxBodyBytes int64 = 32 << 20

// DefaultMaxMemory is the multipart memory threshold before file parts spill to disk (8MB).
const DefaultMaxMemory int64 = 8 << 20

// Request wraps an *http.Request for one pipeline invocation.
// The body is buffered once so that several loaders can read it, the multipart form is parsed
// at most once, and temporary resources registered by loaders are released by Close.
// A Request is owned by a single invocation and is not safe for concurrent use.
type Request struct {
	HTTP *http.Request

	maxBodyBytes int64
	maxMemory    int64

	body     []byte
	bodyErr  error
	bodyRead bool

	form     *multipart.Form
	formErr  error
	formRead bool

	tempDir    string
	pathParams map[string]string
	cleanups   []func() error
	closed     bool
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithMaxBodyBytes sets the body buffering limit. Values <= 0 keep DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) RequestOption {
	return func(r *Request) {
		if n > 0 {
			r.maxBodyBytes = n
		}
	}
}

// WithMaxMemory sets the multipart memory threshold. Values <= 0 keep DefaultMaxMemory.
func WithMaxMemory(n int64) RequestOption {
	return func(r *Request) {
		if n > 0 {
			r.maxMemory = n
		}
	}
}

// WithPathParams attaches path segment values resolved by the router.
func WithPathParams(params map[string]string) RequestOption {
	return func(r *Request) {
		r.pathParams = params
	}
}

// NewRequest wraps r. Callers must Close the returned Request once the arguments are no longer used.
func NewRequest(r *http.Request, opts ...RequestOption) *Request {
	req := &Request{
		HTTP:         r,
		maxBodyBytes: DefaultMaxBodyBytes,
		maxMemory:    DefaultMaxMemory,
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// PathParams returns the path parameters attached with WithPathParams, or nil.
func (r *Request) PathParams() map[string]string {
	return r.pathParams
}

// MediaType returns the parsed Content-Type. An absent header yields an empty media type.
func (r *Request) MediaType() (string, map[string]string, error) {
	ct := r.HTTP.Header.Get("Content-Type")
	if ct == "" {
		return "", nil, nil
	}
	return mime.ParseMediaType(ct)
}

// Body returns the buffered request body, reading it on first use.
// A body larger than the configured limit yields an error wrapping ErrBodyTooLarge.
func (r *Request) Body() ([]byte, error) {
	if r.bodyRead {
		return r.body, r.bodyErr
	}
	r.bodyRead = true

	if r.HTTP.Body == nil || r.HTTP.Body == http.NoBody {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.HTTP.Body, r.maxBodyBytes+1))
	if err != nil {
		r.bodyErr = fmt.Errorf("read body: %w", err)
		return nil, r.bodyErr
	}
	if int64(len(data)) > r.maxBodyBytes {
		r.bodyErr = fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, r.maxBodyBytes)
		return nil, r.bodyErr
	}

	r.body = data
	return r.body, nil
}

// MultipartForm parses a multipart/form-data body once and returns the cached form.
// It returns nil without error when the request is not multipart. Spilled file parts are
// removed on Close.
func (r *Request) MultipartForm() (*multipart.Form, error) {
	if r.formRead {
		return r.form, r.formErr
	}
	r.formRead = true

	mediaType, params, err := r.MediaType()
	if err != nil {
		r.formErr = fmt.Errorf("%w: %v", ErrMalformedForm, err)
		return nil, r.formErr
	}
	if mediaType != "multipart/form-data" {
		return nil, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		r.formErr = fmt.Errorf("%w: missing multipart boundary", ErrMalformedForm)
		return nil, r.formErr
	}

	body, err := r.Body()
	if err != nil {
		r.formErr = err
		return nil, r.formErr
	}

	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(r.maxMemory)
	if err != nil {
		r.formErr = fmt.Errorf("%w: %v", ErrMalformedForm, err)
		return nil, r.formErr
	}

	r.OnClose(form.RemoveAll)
	r.form = form
	return r.form, nil
}

// TempDir returns a temporary directory scoped to this request, creating it under base (or the
// OS default when base is empty) on first use. The directory is removed on Close.
func (r *Request) TempDir(base string) (string, error) {
	if r.closed {
		return "", ErrRequestClosed
	}
	if r.tempDir != "" {
		return r.tempDir, nil
	}

	dir, err := os.MkdirTemp(base, "reqargs-*")
	if err != nil {
		return "", fmt.Errorf("create request temp dir: %w", err)
	}

	r.tempDir = dir
	r.OnClose(func() error { return os.RemoveAll(dir) })
	return dir, nil
}

// OnClose registers fn to run when the request is closed. Functions run in reverse order.
func (r *Request) OnClose(fn func() error) {
	r.cleanups = append(r.cleanups, fn)
}

// Close releases every resource registered with OnClose. It is safe to call more than once.
func (r *Request) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		if err := r.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.cleanups = nil
	return errors.Join(errs...)
}
