package sourcequery

import (
	"fmt"
	"net/url"

	"github.com/Azhovan/reqargs"
	"github.com/Azhovan/reqargs/internal/normalize"
)

type queryLoader struct{}

// New creates a query string loader.
func New() reqargs.Loader {
	return queryLoader{}
}

func (queryLoader) Location() reqargs.Location {
	return reqargs.InQuery
}

// Extract parses the raw query. Invalid escapes or separators fail with reqargs.ErrMalformedQuery.
func (queryLoader) Extract(req *reqargs.Request) (reqargs.RawMapping, error) {
	if req.HTTP.URL == nil || req.HTTP.URL.RawQuery == "" {
		return reqargs.RawMapping{}, nil
	}

	values, err := url.ParseQuery(req.HTTP.URL.RawQuery)
	if err != nil {
		return nil, reqargs.NewTransportError(reqargs.InQuery,
			fmt.Errorf("%w: %v", reqargs.ErrMalformedQuery, err))
	}
	return reqargs.RawMapping(normalize.Values(values)), nil
}
