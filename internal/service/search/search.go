package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/mc-consultoria/proteccion-civil/internal/models"
)

var ErrDisabled = errors.New("search disabled")

type Searcher interface {
	Search(ctx context.Context, query, categoria string, from, size int) (int64, []models.Product, error)
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Disabled is used when no Elasticsearch URL is configured; callers fall
// back to SQL search on ErrDisabled.
type Disabled struct{}

func (Disabled) Search(context.Context, string, string, int, int) (int64, []models.Product, error) {
	return 0, nil, ErrDisabled
}
func (Disabled) Index(context.Context, *models.Product) error { return nil }
func (Disabled) Delete(context.Context, uuid.UUID) error { return nil }

type ES struct {
	Client    *elasticsearch.Client
	IndexName string
}

func NewES(client *elasticsearch.Client, index string) *ES {
	return &ES{Client: client, IndexName: index}
}

func (s *ES) Search(ctx context.Context, query, categoria string, from, size int) (int64, []models.Product, error) {
	filter := []map[string]any{
		{"term": map[string]any{"is_active": true}},
	}
	if categoria != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"categoria.keyword": categoria}})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"titulo^2", "descripcion", "caracteristicas", "aplicaciones"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filter,
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.IndexName),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func (s *ES) Index(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	res, err := s.Client.Index(
		s.IndexName,
		bytes.NewReader(data),
		s.Client.Index.WithDocumentID(p.ID.String()),
		s.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

func (s *ES) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.Client.Delete(s.IndexName, id.String(), s.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete product: %s", res.Status())
	}
	return nil
}
