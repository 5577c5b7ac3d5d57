package sourceform

import (
	"fmt"
	"net/url"

	"github.com/Azhovan/reqargs"
	"github.com/Azhovan/reqargs/internal/normalize"
)

type formLoader struct{}

// New creates a form loader.
func New() reqargs.Loader {
	return formLoader{}
}

func (formLoader) Location() reqargs.Location {
	return reqargs.InForm
}

// Extract reads form values with the same single/repeated rule as query strings.
func (formLoader) Extract(req *reqargs.Request) (reqargs.RawMapping, error) {
	mediaType, _, err := req.MediaType()
	if err != nil {
		return nil, malformed(err)
	}

	switch normalize.MediaKind(mediaType) {
	case normalize.MediaForm:
		body, err := req.Body()
		if err != nil {
			return nil, reqargs.NewTransportError(reqargs.InForm, err)
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, malformed(err)
		}
		return reqargs.RawMapping(normalize.Values(values)), nil

	case normalize.MediaMultipart:
		form, err := req.MultipartForm()
		if err != nil {
			return nil, reqargs.NewTransportError(reqargs.InForm, err)
		}
		if form == nil {
			return reqargs.RawMapping{}, nil
		}
		return reqargs.RawMapping(normalize.Values(form.Value)), nil

	default:
		return reqargs.RawMapping{}, nil
	}
}

func malformed(err error) error {
	return reqargs.NewTransportError(reqargs.InForm, fmt.Errorf("%w: %v", reqargs.ErrMalformedForm, err))
}
