package sourcebody

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Azhovan/reqargs"
	"github.com/Azhovan/reqargs/internal/normalize"
)

// Options configures body loading.
type Options struct {
	// MaxBytes rejects bodies above this size with reqargs.ErrBodyTooLarge.
	// Zero keeps the Request limit.
	MaxBytes int64
}

type bodyLoader struct {
	opts Options
}

// New creates a body loader.
func New(opts Options) reqargs.Loader {
	return &bodyLoader{opts: opts}
}

func (b *bodyLoader) Location() reqargs.Location {
	return reqargs.InBody
}

// Extract decodes the body into a raw mapping. The top-level value must be an object.
func (b *bodyLoader) Extract(req *reqargs.Request) (reqargs.RawMapping, error) {
	mediaType, _, err := req.MediaType()
	if err != nil {
		return nil, fail(reqargs.ErrUnsupportedMediaType, err)
	}

	kind := normalize.MediaKind(mediaType)
	if kind == normalize.MediaForm || kind == normalize.MediaMultipart {
		return reqargs.RawMapping{}, nil
	}

	data, err := req.Body()
	if err != nil {
		return nil, reqargs.NewTransportError(reqargs.InBody, err)
	}
	if b.opts.MaxBytes > 0 && int64(len(data)) > b.opts.MaxBytes {
		return nil, reqargs.NewTransportError(reqargs.InBody,
			fmt.Errorf("%w: limit is %d bytes", reqargs.ErrBodyTooLarge, b.opts.MaxBytes))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return reqargs.RawMapping{}, nil
	}

	var raw any
	switch kind {
	case normalize.MediaNone, normalize.MediaJSON:
		raw, err = decodeJSON(data)
	case normalize.MediaYAML:
		err = yaml.Unmarshal(data, &raw)
	case normalize.MediaTOML:
		var doc map[string]any
		err = toml.Unmarshal(data, &doc)
		raw = doc
	default:
		return nil, fail(reqargs.ErrUnsupportedMediaType, errors.New(mediaType))
	}
	if err != nil {
		return nil, fail(reqargs.ErrMalformedBody, err)
	}

	switch v := raw.(type) {
	case nil:
		return reqargs.RawMapping{}, nil
	case map[string]any:
		return reqargs.RawMapping(v), nil
	default:
		return nil, fail(reqargs.ErrMalformedBody, fmt.Errorf("top-level value must be an object, got %T", raw))
	}
}

// decodeJSON decodes exactly one JSON value, keeping numbers as encoding/json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return numbers(v), nil
}

// numbers rewrites go-json numbers as encoding/json.Number, which the coercers understand.
func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		return stdjson.Number(string(x))
	case map[string]any:
		for k, item := range x {
			x[k] = numbers(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = numbers(item)
		}
		return x
	default:
		return v
	}
}

func fail(sentinel, err error) error {
	return reqargs.NewTransportError(reqargs.InBody, fmt.Errorf("%w: %v", sentinel, err))
}
