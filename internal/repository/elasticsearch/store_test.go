package elasticsearch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/pagination"
)

// fakeCluster records requests and replies with canned responses keyed by
// "METHOD path".
type fakeCluster struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	calls    []string
	handlers map[string]func(w http.ResponseWriter, body []byte)
}

func newFakeCluster(t *testing.T) (*fakeCluster, *ProductStore) {
	t.Helper()
	fc := &fakeCluster{
		bodies:   map[string][]byte{},
		handlers: map[string]func(w http.ResponseWriter, body []byte){},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path

		fc.mu.Lock()
		fc.calls = append(fc.calls, key)
		fc.bodies[key] = body
		h, ok := fc.handlers[key]
		fc.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception","reason":"no such index"},"status":404}`))
			return
		}
		h(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return fc, NewWithClient(client, "", slog.New(slog.DiscardHandler))
}

func (fc *fakeCluster) handle(key string, status int, body string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.handlers[key] = func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (fc *fakeCluster) requests() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]string(nil), fc.calls...)
}

func (fc *fakeCluster) body(key string) []byte {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.bodies[key]
}

func sampleProduct(id string) domain.Product {
	return domain.Product{
		ID:              id,
		Title:           "Hex Dumbbell Pair",
		Brand:           "Kore",
		Category:        "Strength",
		Price:           1899,
		MRP:             3499,
		Rating:          4.2,
		DiscountPercent: 46,
		Tags:            []string{domain.SponsoredTag},
		ImageURL:        "https://cdn.fitzdo.test/dumbbell.jpg",
		InStock:         true,
		CreatedAt:       time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
	}
}

func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// ============================================================================
// Query building
// ============================================================================

func TestBuildSearchQuery_Defaults(t *testing.T) {
	body := decode(t, buildSearchQuery(domain.NewProductQuery()))

	assert.Equal(t, 0.0, body["from"])
	assert.Equal(t, 12.0, body["size"])
	assert.Equal(t, true, body["track_total_hits"])
	assert.NotContains(t, body["query"].(map[string]any)["bool"], "filter")
	assert.Equal(t, []any{
		map[string]any{"createdAt": "desc"},
		map[string]any{"seq": "asc"},
	}, body["sort"])
}

func TestBuildFilters_AllPredicates(t *testing.T) {
	q := domain.ProductQuery{
		Q: "ab*c?", Category: "cardio", MinPrice: 1000, MaxPrice: 5000,
		MinRating: 4, Sponsored: true, Sort: domain.SortRatingDesc, Page: 2, Limit: 5,
	}.Normalize()

	body := decode(t, buildSearchQuery(q))
	filters := body["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	require.Len(t, filters, 5)

	text := filters[0].(map[string]any)["bool"].(map[string]any)
	should := text["should"].([]any)
	require.Len(t, should, 3)
	assert.Equal(t, map[string]any{
		"wildcard": map[string]any{
			"title.keyword": map[string]any{"value": `*ab\*c\?*`, "case_insensitive": true},
		},
	}, should[0])

	assert.Equal(t, map[string]any{
		"term": map[string]any{"category.keyword": map[string]any{"value": "cardio", "case_insensitive": true}},
	}, filters[1])
	assert.Equal(t, map[string]any{"range": map[string]any{"price": map[string]any{"gte": 1000.0, "lte": 5000.0}}}, filters[2])
	assert.Equal(t, map[string]any{"range": map[string]any{"rating": map[string]any{"gte": 4.0}}}, filters[3])
	assert.Equal(t, map[string]any{"term": map[string]any{"tags": domain.SponsoredTag}}, filters[4])

	assert.Equal(t, 5.0, body["from"])
	assert.Equal(t, []any{map[string]any{"rating": "desc"}, map[string]any{"seq": "asc"}}, body["sort"])
}

func TestBuildFilters_SentinelNeverBound(t *testing.T) {
	filters := buildFilters(domain.ProductQuery{MinPrice: 500, MaxPrice: domain.MaxPriceUnbounded}.Normalize())
	require.Len(t, filters, 1)
	assert.Equal(t, map[string]any{"range": map[string]any{"price": map[string]any{"gte": 500.0}}}, filters[0])

	assert.Empty(t, buildFilters(domain.ProductQuery{MaxPrice: 1e7}.Normalize()))
}

func TestBuildIndexMapping_KeywordsKeepLongValues(t *testing.T) {
	var mapping struct {
		Mappings struct {
			Properties map[string]struct {
				Fields map[string]map[string]any `json:"fields"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal([]byte(buildIndexMapping()), &mapping))

	for _, field := range []string{"title", "brand", "category"} {
		kw := mapping.Mappings.Properties[field].Fields["keyword"]
		assert.Equal(t, map[string]any{"type": "keyword"}, kw, field)
	}
}

func TestResultWindow(t *testing.T) {
	tests := []struct {
		name     string
		p        pagination.Params
		wantFrom int
		wantSize int
	}{
		{"first page", pagination.New(1, 12), 0, 12},
		{"inside window", pagination.New(833, 12), 9984, 12},
		{"straddles window", pagination.New(834, 12), 9996, 4},
		{"past window", pagination.New(1000, 12), 0, 0},
		{"limit larger than window", pagination.New(1, 50000), 0, 10000},
		{"huge page", pagination.New(pagination.MaxValue, pagination.MaxValue), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, size := resultWindow(tt.p)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

// ============================================================================
// Store operations
// ============================================================================

func TestProductStore_List(t *testing.T) {
	fc, store := newFakeCluster(t)
	p := sampleProduct("665f1a2b3c4d5e6f70810006")
	hit := toDocument(&p, 6)
	resp, _ := json.Marshal(map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": 3, "relation": "eq"},
			"hits":  []any{map[string]any{"_id": p.ID, "_source": hit}},
		},
	})
	fc.handle("POST /fitzdo_products/_search", http.StatusOK, string(resp))

	items, total, err := store.List(context.Background(), domain.ProductQuery{Category: "Strength", Page: 3, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, p, items[0])

	var sent map[string]any
	require.NoError(t, json.Unmarshal(fc.body("POST /fitzdo_products/_search"), &sent))
	assert.Equal(t, 2.0, sent["from"])
	assert.Equal(t, 1.0, sent["size"])
}

func TestProductStore_List_PastResultWindow(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.handle("POST /fitzdo_products/_search", http.StatusOK,
		`{"hits":{"total":{"value":15,"relation":"eq"},"hits":[]}}`)

	items, total, err := store.List(context.Background(), domain.ProductQuery{Page: 1000, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(fc.body("POST /fitzdo_products/_search"), &sent))
	assert.Equal(t, 0.0, sent["from"])
	assert.Equal(t, 0.0, sent["size"])
	assert.Equal(t, true, sent["track_total_hits"])
}

func TestProductStore_List_ClusterError(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.handle("POST /fitzdo_products/_search", http.StatusBadRequest,
		`{"error":{"type":"search_phase_execution_exception","reason":"all shards failed"},"status":400}`)

	_, _, err := store.List(context.Background(), domain.NewProductQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_phase_execution_exception")
}

func TestProductStore_GetByID(t *testing.T) {
	fc, store := newFakeCluster(t)
	p := sampleProduct("665f1a2b3c4d5e6f70810006")
	resp, _ := json.Marshal(map[string]any{"_id": p.ID, "found": true, "_source": toDocument(&p, 6)})
	fc.handle("GET /fitzdo_products/_doc/"+p.ID, http.StatusOK, string(resp))

	got, err := store.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, &p, got)
}

func TestProductStore_GetByID_NotFound(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.handle("GET /fitzdo_products/_doc/missing", http.StatusNotFound, `{"_id":"missing","found":false}`)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = store.GetByID(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductStore_ReplaceAll(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.handle("PUT /fitzdo_products", http.StatusOK, `{"acknowledged":true}`)
	fc.handle("POST /fitzdo_products/_bulk", http.StatusOK, `{"errors":false,"items":[]}`)

	products := []domain.Product{sampleProduct("a"), sampleProduct("b")}
	require.NoError(t, store.ReplaceAll(context.Background(), products))

	assert.Equal(t, []string{"DELETE /fitzdo_products", "PUT /fitzdo_products", "POST /fitzdo_products/_bulk"}, fc.requests())

	var mapping map[string]any
	require.NoError(t, json.Unmarshal(fc.body("PUT /fitzdo_products"), &mapping))
	assert.Contains(t, mapping["mappings"].(map[string]any)["properties"], "seq")

	var lines []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(fc.body("POST /fitzdo_products/_bulk")))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 4)
	assert.Equal(t, "a", lines[0]["index"].(map[string]any)["_id"])
	assert.Equal(t, 1.0, lines[1]["seq"])
	assert.Equal(t, "b", lines[2]["index"].(map[string]any)["_id"])
	assert.Equal(t, 2.0, lines[3]["seq"])
}

func TestProductStore_ReplaceAll_PartialBulkErrors(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.handle("PUT /fitzdo_products", http.StatusOK, `{"acknowledged":true}`)
	fc.handle("POST /fitzdo_products/_bulk", http.StatusOK,
		`{"errors":true,"items":[{"index":{"_id":"a","status":400,"error":{"type":"mapper_parsing_exception","reason":"bad price"}}}]}`)

	err := store.ReplaceAll(context.Background(), []domain.Product{sampleProduct("a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id=a: mapper_parsing_exception")
}

func TestProductStore_EnsureIndexCreatesMissing(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.handle("PUT /fitzdo_products", http.StatusOK, `{"acknowledged":true}`)

	require.NoError(t, store.ensureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /fitzdo_products", "PUT /fitzdo_products"}, fc.requests())
}

func TestProductStore_EnsureIndexKeepsExisting(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.handle("HEAD /fitzdo_products", http.StatusOK, ``)

	require.NoError(t, store.ensureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /fitzdo_products"}, fc.requests())
}

func TestProductStore_Ping(t *testing.T) {
	fc, store := newFakeCluster(t)
	assert.Error(t, store.Ping(context.Background()))

	fc.handle("HEAD /", http.StatusOK, ``)
	assert.NoError(t, store.Ping(context.Background()))
}
