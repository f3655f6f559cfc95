package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/catalog"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// --- Mocks ---

type mockCatalog struct {
	tables catalog.Tables
	err    error
}

func (m *mockCatalog) Load(_ context.Context) ([]catalog.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return catalog.Join(m.tables), nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func mugCatalog(shopLat float64) *mockCatalog {
	return &mockCatalog{tables: catalog.Tables{
		Products: []catalog.Product{{ID: "1", ShopID: "1", Title: "Mug", Popularity: 10, Quantity: 5}},
		Shops:    []catalog.Shop{{ID: "1", Name: "ShopA", Lng: 0, Lat: shopLat}},
		Tags:     []catalog.Tag{{ID: "1", Label: "kitchen"}},
		Taggings: []catalog.Tagging{{ShopID: "1", TagID: "1"}},
	}}
}

func newTestRouter(cat searchuc.CatalogSource, health *healthuc.Service) http.Handler {
	if health == nil {
		health = healthuc.New(&mockPinger{}, nil)
	}
	srv := NewServer(searchuc.New(cat), health, zap.NewNop())
	r := chi.NewRouter()
	r.Use(CORSMiddleware("*"))
	srv.Routes(r)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// --- Tests ---

func TestSearch_SingleMatch(t *testing.T) {
	h := newTestRouter(mugCatalog(0), nil)

	rr := get(t, h, "/search?tags=kitchen&longitude=0&latitude=0&radius=1000&count=10")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t,
		`[{"title":"Mug","popularity":10,"quantity":5,"tag":"kitchen","shop":{"name":"ShopA","lng":0,"lat":0}}]`,
		rr.Body.String())
}

func TestSearch_OutOfRadiusIsEmptyArray(t *testing.T) {
	// ~2 km north of the query point.
	h := newTestRouter(mugCatalog(0.018), nil)

	rr := get(t, h, "/search?tags=kitchen&longitude=0&latitude=0&radius=1000&count=10")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestSearch_TagsOptional(t *testing.T) {
	h := newTestRouter(mugCatalog(0), nil)

	for _, target := range []string{
		"/search?longitude=0&latitude=0&radius=1000&count=10",
		"/search?tags=&longitude=0&latitude=0&radius=1000&count=10",
		"/search?tags=%20,%20&longitude=0&latitude=0&radius=1000&count=10",
	} {
		rr := get(t, h, target)
		require.Equal(t, http.StatusOK, rr.Code, target)

		var items []searchItemResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&items))
		assert.Len(t, items, 1, target)
	}
}

func TestSearch_UnknownTagIsEmpty(t *testing.T) {
	h := newTestRouter(mugCatalog(0), nil)

	rr := get(t, h, "/search?tags=garden,books&longitude=0&latitude=0&radius=1000&count=10")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestSearch_CountZero(t *testing.T) {
	h := newTestRouter(mugCatalog(0), nil)

	rr := get(t, h, "/search?longitude=0&latitude=0&radius=1000&count=0")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestSearch_BadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing count", "longitude=0&latitude=0&radius=1000"},
		{"missing longitude", "latitude=0&radius=1000&count=1"},
		{"missing latitude", "longitude=0&radius=1000&count=1"},
		{"missing radius", "longitude=0&latitude=0&count=1"},
		{"non-numeric latitude", "longitude=0&latitude=abc&radius=1000&count=1"},
		{"empty radius", "longitude=0&latitude=0&radius=&count=1"},
		{"fractional count", "longitude=0&latitude=0&radius=1000&count=1.5"},
		{"longitude out of range", "longitude=181&latitude=0&radius=1000&count=1"},
		{"latitude out of range", "longitude=0&latitude=-90.5&radius=1000&count=1"},
		{"negative radius", "longitude=0&latitude=0&radius=-1&count=1"},
		{"negative count", "longitude=0&latitude=0&radius=1000&count=-1"},
		{"nan radius", "longitude=0&latitude=0&radius=NaN&count=1"},
	}
	h := newTestRouter(mugCatalog(0), nil)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := get(t, h, "/search?"+tc.query)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
			resp := decodeError(t, rr)
			assert.Equal(t, codeValidationFailed, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestSearch_MissingCountNamesParameter(t *testing.T) {
	h := newTestRouter(mugCatalog(0), nil)

	rr := get(t, h, "/search?longitude=0&latitude=0&radius=1000")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation failed: count: is required", decodeError(t, rr).Message)
}

func TestSearch_CatalogUnavailable(t *testing.T) {
	cat := &mockCatalog{err: domain.NewLoadError("shops", os.ErrNotExist)}
	h := newTestRouter(cat, nil)

	rr := get(t, h, "/search?longitude=0&latitude=0&radius=1000&count=1")

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, codeCatalogUnavailable, resp.Code)
	assert.Equal(t, "catalog unavailable", resp.Message)
	assert.NotContains(t, rr.Body.String(), "shops")
}

func TestSearch_UnknownErrorIsInternal(t *testing.T) {
	h := newTestRouter(&mockCatalog{err: context.DeadlineExceeded}, nil)

	rr := get(t, h, "/search?longitude=0&latitude=0&radius=1000&count=1")

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, codeInternalError, decodeError(t, rr).Code)
}

func TestSearch_GroupsAcrossShops(t *testing.T) {
	cat := &mockCatalog{tables: catalog.Tables{
		Products: []catalog.Product{
			{ID: "1", ShopID: "1", Title: "Mug", Popularity: 10, Quantity: 5},
			{ID: "2", ShopID: "2", Title: "Mug", Popularity: 10, Quantity: 5},
		},
		Shops: []catalog.Shop{
			{ID: "1", Name: "ShopA"},
			{ID: "2", Name: "ShopB"},
		},
		Tags: []catalog.Tag{{ID: "1", Label: "kitchen"}},
		Taggings: []catalog.Tagging{
			{ShopID: "1", TagID: "1"},
			{ShopID: "2", TagID: "1"},
		},
	}}
	h := newTestRouter(cat, nil)

	rr := get(t, h, "/search?longitude=0&latitude=0&radius=1000&count=10")

	require.Equal(t, http.StatusOK, rr.Code)
	var items []searchItemResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "ShopA", items[0].Shop.Name)
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    errorCode
		message string
		handled bool
	}{
		{"validation", domain.NewValidationError("count", "is required"),
			http.StatusBadRequest, codeValidationFailed, "validation failed: count: is required", true},
		{"catalog", fmt.Errorf("load catalog: %w", domain.NewLoadError("tags", os.ErrPermission)),
			http.StatusInternalServerError, codeCatalogUnavailable, "catalog unavailable", true},
		{"rate limited", domain.ErrRateLimited,
			http.StatusTooManyRequests, codeRateLimited, "rate limited", true},
		{"unknown", errors.New("disk on fire"),
			http.StatusInternalServerError, codeInternalError, "internal error", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			handled := writeDomainError(rr, tc.err)

			assert.Equal(t, tc.handled, handled)
			require.Equal(t, tc.status, rr.Code)
			resp := decodeError(t, rr)
			assert.Equal(t, tc.code, resp.Code)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := newTestRouter(mugCatalog(0), healthuc.New(&mockPinger{}, nil))
		rr := get(t, h, "/health")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"catalog":"ok"}}`, rr.Body.String())
	})

	t.Run("degraded", func(t *testing.T) {
		h := newTestRouter(mugCatalog(0), healthuc.New(&mockPinger{}, &mockPinger{err: context.Canceled}))
		rr := get(t, h, "/health")

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"catalog":"ok","cache":"error"}}`, rr.Body.String())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(mugCatalog(0), nil)

	rr := get(t, h, "/metrics")

	assert.Equal(t, http.StatusOK, rr.Code)
}
