package reqargs

import (
	"errors"
	"net/http/httptest"
	"reflect"
	"testing"
)

// stubLoader returns a fixed mapping for one location and counts extractions.
type stubLoader struct {
	loc   Location
	data  RawMapping
	err   error
	calls int
}

func (s *stubLoader) Location() Location { return s.loc }

func (s *stubLoader) Extract(*Request) (RawMapping, error) {
	s.calls++
	return s.data, s.err
}

func newTestRequest() *Request {
	return NewRequest(httptest.NewRequest("GET", "/", nil))
}

func TestResolver_LaterLocationOverrides(t *testing.T) {
	query := &stubLoader{loc: InQuery, data: RawMapping{"timestamp": "100", "async_query": "false"}}
	body := &stubLoader{loc: InBody, data: RawMapping{"async_query": true}}
	r := NewResolver(query, body)

	res, err := r.Resolve(newTestRequest(), []Location{InQuery, InBody})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := RawMapping{"timestamp": "100", "async_query": true}
	if !reflect.DeepEqual(res.Values, want) {
		t.Errorf("got %v, want %v", res.Values, want)
	}
	if res.Origins["timestamp"] != InQuery || res.Origins["async_query"] != InBody {
		t.Errorf("unexpected origins %v", res.Origins)
	}
}

func TestResolver_OrderMatters(t *testing.T) {
	query := &stubLoader{loc: InQuery, data: RawMapping{"limit": "1"}}
	body := &stubLoader{loc: InBody, data: RawMapping{"limit": "2"}}
	r := NewResolver(query, body)

	res, err := r.Resolve(newTestRequest(), []Location{InBody, InQuery})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Values["limit"] != "1" || res.Origins["limit"] != InQuery {
		t.Errorf("last declared location should win, got %v from %v", res.Values["limit"], res.Origins["limit"])
	}
}

func TestResolver_AbsenceDoesNotOverwrite(t *testing.T) {
	query := &stubLoader{loc: InQuery, data: RawMapping{"asset": "ETH"}}
	body := &stubLoader{loc: InBody, data: RawMapping{}}
	path := &stubLoader{loc: InPath, data: nil}
	r := NewResolver(query, body, path)

	res, err := r.Resolve(newTestRequest(), []Location{InQuery, InBody, InPath})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Values["asset"] != "ETH" {
		t.Errorf("value should survive locations that do not supply it, got %v", res.Values)
	}
}

func TestResolver_NullOverridesAndKeepsShape(t *testing.T) {
	query := &stubLoader{loc: InQuery, data: RawMapping{"ids": []string{"1"}}}
	body := &stubLoader{loc: InBody, data: RawMapping{"ids": nil}}
	r := NewResolver(query, body)

	res, err := r.Resolve(newTestRequest(), []Location{InQuery, InBody})
	if err != nil {
		t.Fatalf("null should not conflict with any shape: %v", err)
	}
	if v, ok := res.Values["ids"]; !ok || v != nil {
		t.Errorf("explicit null from a later location should override, got %v", v)
	}
}

func TestResolver_SingleLocationPassThrough(t *testing.T) {
	data := RawMapping{"timestamp": "1"}
	query := &stubLoader{loc: InQuery, data: data}
	body := &stubLoader{loc: InBody, data: RawMapping{"other": 1}}
	r := NewResolver(query, body)

	res, err := r.Resolve(newTestRequest(), []Location{InQuery})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if reflect.ValueOf(res.Values).Pointer() != reflect.ValueOf(data).Pointer() {
		t.Errorf("single location output should be returned unchanged")
	}
	if body.calls != 0 {
		t.Errorf("undeclared locations must not be extracted")
	}
}

func TestResolver_NoLocations(t *testing.T) {
	res, err := NewResolver().Resolve(newTestRequest(), nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Values == nil || len(res.Values) != 0 {
		t.Errorf("expected empty mapping, got %v", res.Values)
	}
}

func TestResolver_MissingLoader(t *testing.T) {
	r := NewResolver(&stubLoader{loc: InQuery})

	_, err := r.Resolve(newTestRequest(), []Location{InQuery, InForm})
	if !errors.Is(err, ErrNoLoader) {
		t.Errorf("expected ErrNoLoader, got %v", err)
	}
	if r.Has(InForm) || !r.Has(InQuery) {
		t.Errorf("Has reports wrong locations")
	}
}

func TestResolver_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		first any
		later any
	}{
		{name: "scalar then list", first: "1", later: []any{"1", "2"}},
		{name: "list then object", first: []string{"a"}, later: map[string]any{"a": 1}},
		{name: "object then scalar", first: map[string]any{}, later: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(
				&stubLoader{loc: InQuery, data: RawMapping{"ids": tt.first}},
				&stubLoader{loc: InBody, data: RawMapping{"ids": tt.later}},
			)

			_, err := r.Resolve(newTestRequest(), []Location{InQuery, InBody})
			te, ok := AsTransportError(err)
			if !ok {
				t.Fatalf("expected *TransportError, got %v", err)
			}
			if te.Field != "ids" || te.Location != InBody {
				t.Errorf("unexpected transport error %+v", te)
			}
			if !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("expected ErrShapeMismatch, got %v", err)
			}
		})
	}
}

func TestResolver_LoaderErrors(t *testing.T) {
	t.Run("transport error passes through", func(t *testing.T) {
		want := NewTransportError(InBody, ErrMalformedBody)
		r := NewResolver(&stubLoader{loc: InBody, err: want})

		_, err := r.Resolve(newTestRequest(), []Location{InBody})
		if te, ok := AsTransportError(err); !ok || te != want {
			t.Errorf("expected the loader's transport error, got %v", err)
		}
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		cause := errors.New("disk full")
		r := NewResolver(&stubLoader{loc: InFile, err: cause})

		_, err := r.Resolve(newTestRequest(), []Location{InFile})
		te, ok := AsTransportError(err)
		if !ok || te.Location != InFile {
			t.Fatalf("expected *TransportError at file, got %v", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("cause should be preserved")
		}
	})

	t.Run("first failing location stops resolution", func(t *testing.T) {
		body := &stubLoader{loc: InBody, data: RawMapping{"a": 1}}
		r := NewResolver(&stubLoader{loc: InQuery, err: NewTransportError(InQuery, ErrMalformedQuery)}, body)

		_, err := r.Resolve(newTestRequest(), []Location{InQuery, InBody})
		if !errors.Is(err, ErrMalformedQuery) {
			t.Errorf("expected ErrMalformedQuery, got %v", err)
		}
		if body.calls != 0 {
			t.Errorf("later locations should not be extracted after a transport error")
		}
	})
}

func TestNewResolver_LaterLoaderReplaces(t *testing.T) {
	first := &stubLoader{loc: InQuery, data: RawMapping{"v": "first"}}
	second := &stubLoader{loc: InQuery, data: RawMapping{"v": "second"}}
	r := NewResolver(first, nil, second)

	res, err := r.Resolve(newTestRequest(), []Location{InQuery})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if res.Values["v"] != "second" {
		t.Errorf("expected the later loader to be used, got %v", res.Values["v"])
	}
}
