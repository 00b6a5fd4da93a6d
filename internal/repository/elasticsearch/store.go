package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/database"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

// Config holds the Elasticsearch connection settings.
type Config struct {
	URL      string
	Index    string
	Username string
	Password string
}

// ProductStore is an Elasticsearch-backed implementation of
// repository.ProductStore.
type ProductStore struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// esGetResponse is the structure used to decode document lookups.
type esGetResponse struct {
	Found  bool     `json:"found"`
	Source document `json:"_source"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates a store connected to cfg.URL and ensures the index exists.
// If cfg.Index is empty, DefaultIndexName is used.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*ProductStore, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	s := NewWithClient(client, cfg.Index, logger)
	if err := s.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}
	return s, nil
}

// NewWithClient wraps an existing client without touching the cluster.
func NewWithClient(client *elasticsearch.Client, indexName string, logger *slog.Logger) *ProductStore {
	if indexName == "" {
		indexName = DefaultIndexName
	}
	return &ProductStore{client: client, indexName: indexName, logger: logger}
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (s *ProductStore) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// ensureIndex checks whether the products index exists and creates it if not.
func (s *ProductStore) ensureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.indexName}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	closeBody(res)

	if res.StatusCode == http.StatusOK {
		s.logger.Info("elasticsearch index already exists", slog.String("index", s.indexName))
		return nil
	}
	return s.createIndex(ctx)
}

func (s *ProductStore) createIndex(ctx context.Context) error {
	res, err := s.client.Indices.Create(
		s.indexName,
		s.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("create index", res)
	}

	s.logger.Info("elasticsearch index created", slog.String("index", s.indexName))
	return nil
}

// List executes a filtered, sorted, paginated search.
func (s *ProductStore) List(ctx context.Context, q domain.ProductQuery) (_ []domain.Product, _ int, err error) {
	data, err := json.Marshal(buildSearchQuery(q.Normalize()))
	if err != nil {
		return nil, 0, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemElasticsearch, "ListProducts", string(data))
	defer func() { end(err) }()

	res, err := s.client.Search(
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(bytes.NewReader(data)),
		s.client.Search.WithContext(ctx),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, 0, responseError("elasticsearch search", res)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, 0, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	products := make([]domain.Product, 0, len(esResp.Hits.Hits))
	for i := range esResp.Hits.Hits {
		products = append(products, esResp.Hits.Hits[i].Source.product())
	}
	return products, esResp.Hits.Total.Value, nil
}

// GetByID fetches a single document. A missing document or index yields
// apperrors.ErrNotFound.
func (s *ProductStore) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrNotFound
	}

	ctx, end := database.TraceQuery(ctx, database.SystemElasticsearch, "GetProduct", id)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	res, err := s.client.Get(s.indexName, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch get: %w", err)
	}
	defer closeBody(res)

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrNotFound
	}
	if res.IsError() {
		return nil, responseError("elasticsearch get", res)
	}

	var doc esGetResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("elasticsearch get: decode response: %w", err)
	}
	if !doc.Found {
		return nil, apperrors.ErrNotFound
	}
	p := doc.Source.product()
	return &p, nil
}

// ReplaceAll recreates the index and bulk-indexes products, recording each
// product's position as seq.
func (s *ProductStore) ReplaceAll(ctx context.Context, products []domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemElasticsearch, "ReplaceProducts", s.indexName)
	defer func() { end(err) }()

	if err := s.deleteIndex(ctx); err != nil {
		return err
	}
	if err := s.createIndex(ctx); err != nil {
		return fmt.Errorf("elasticsearch: %w", err)
	}
	return s.bulkIndex(ctx, products)
}

// deleteIndex removes the entire index. A 404 response is treated as
// success (index already absent).
func (s *ProductStore) deleteIndex(ctx context.Context) error {
	res, err := s.client.Indices.Delete(
		[]string{s.indexName},
		s.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete index", res)
	}
	return nil
}

// bulkIndex writes products using the bulk NDJSON API.
func (s *ProductStore) bulkIndex(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for i := range products {
		action := map[string]any{
			"index": map[string]any{
				"_index": s.indexName,
				"_id":    products[i].ID,
			},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := enc.Encode(toDocument(&products[i], int64(i+1))); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithIndex(s.indexName),
		s.client.Bulk.WithRefresh("true"),
		s.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("elasticsearch bulk index", res)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}

	if bulkResp.Errors {
		var errMsgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				errMsgs = append(errMsgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(errMsgs, "; "))
	}

	s.logger.Info("bulk indexed products", slog.Int("count", len(products)), slog.String("index", s.indexName))
	return nil
}

func responseError(op string, res *esapi.Response) error {
	var errResp esErrorResponse
	if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
