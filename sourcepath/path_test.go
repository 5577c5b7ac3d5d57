package sourcepath

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/reqargs"
)

func TestPathLoader_Location(t *testing.T) {
	assert.Equal(t, reqargs.InPath, New(Options{}).Location())
}

func TestPathLoader_ChiRouter(t *testing.T) {
	var data reqargs.RawMapping
	var extractErr error

	router := chi.NewRouter()
	router.Get("/assets/{asset}/history/{timestamp}", func(w http.ResponseWriter, r *http.Request) {
		req := reqargs.NewRequest(r)
		defer req.Close()
		data, extractErr = New(Options{}).Extract(req)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/assets/ETH/history/100", nil))

	require.NoError(t, extractErr)
	assert.Equal(t, reqargs.RawMapping{"asset": "ETH", "timestamp": "100"}, data)
}

func TestPathLoader_RouteContext(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("location", "kraken")
	rctx.URLParams.Add("*", "rest/of/path")

	r := httptest.NewRequest("GET", "/exchanges/kraken/rest/of/path", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	req := reqargs.NewRequest(r)
	defer req.Close()

	data, err := New(Options{}).Extract(req)
	require.NoError(t, err)
	assert.Equal(t, reqargs.RawMapping{"location": "kraken"}, data)
}

func TestPathLoader_NoRouteContext(t *testing.T) {
	req := reqargs.NewRequest(httptest.NewRequest("GET", "/", nil))
	defer req.Close()

	data, err := New(Options{}).Extract(req)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestPathLoader_RequestParamsWin(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("asset", "ETH")

	r := httptest.NewRequest("GET", "/assets/ETH", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	req := reqargs.NewRequest(r, reqargs.WithPathParams(map[string]string{"asset": "BTC"}))
	defer req.Close()

	data, err := New(Options{}).Extract(req)
	require.NoError(t, err)
	assert.Equal(t, "BTC", data["asset"])
}

func TestPathLoader_CustomParams(t *testing.T) {
	loader := New(Options{
		Params: func(r *http.Request) map[string]string {
			return map[string]string{"id": r.URL.Query().Get("id"), "": "ignored"}
		},
	})
	req := reqargs.NewRequest(httptest.NewRequest("GET", "/?id=42", nil))
	defer req.Close()

	data, err := loader.Extract(req)
	require.NoError(t, err)
	assert.Equal(t, reqargs.RawMapping{"id": "42"}, data)
}
