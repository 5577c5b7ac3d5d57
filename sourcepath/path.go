package sourcepath

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Azhovan/reqargs"
)

// Options configures path parameter loading.
type Options struct {
	// Params overrides parameter lookup, for routers other than chi.
	Params func(r *http.Request) map[string]string
}

type pathLoader struct {
	opts Options
}

// New creates a path parameter loader.
func New(opts Options) reqargs.Loader {
	return &pathLoader{opts: opts}
}

func (p *pathLoader) Location() reqargs.Location {
	return reqargs.InPath
}

// Extract returns the matched path parameters. Wildcard captures ("*") are skipped.
func (p *pathLoader) Extract(req *reqargs.Request) (reqargs.RawMapping, error) {
	if p.opts.Params != nil {
		return fromMap(p.opts.Params(req.HTTP)), nil
	}
	if params := req.PathParams(); params != nil {
		return fromMap(params), nil
	}

	rctx := chi.RouteContext(req.HTTP.Context())
	if rctx == nil {
		return reqargs.RawMapping{}, nil
	}

	data := make(reqargs.RawMapping, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "" || key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		data[key] = rctx.URLParams.Values[i]
	}
	return data, nil
}

func fromMap(params map[string]string) reqargs.RawMapping {
	data := make(reqargs.RawMapping, len(params))
	for key, value := range params {
		if key == "" || key == "*" {
			continue
		}
		data[key] = value
	}
	return data
}
