package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mc-consultoria/proteccion-civil/internal/contact"
	"github.com/mc-consultoria/proteccion-civil/internal/events"
	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
	"github.com/mc-consultoria/proteccion-civil/internal/service/search"
	"github.com/mc-consultoria/proteccion-civil/internal/util"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("product not found")
	ErrUnavailable = errors.New("catalog store unavailable")
)

type ProductStore interface {
	ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	PatchProduct(ctx context.Context, id uuid.UUID, p repo.ProductPatch) (*models.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
}

var _ ProductStore = (*repo.GormRepo)(nil)

type Service struct {
	Repo    ProductStore
	Search  search.Searcher
	Events  events.Publisher
	Contact contact.Info
}

type ListQuery struct {
	Page      int
	Limit     int
	Categoria string
	Search    string
}

type Page struct {
	Items  []models.Product
	Total  int64
	Offset int
	Limit  int
	Demo   bool
}

type CreateInput struct {
	Titulo           string
	Descripcion      string
	Categoria        string
	ImagenURL        string
	Caracteristicas  []string
	Aplicaciones     []string
	Especificaciones []string
}

func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.list")

	offset, limit := util.Calculate(q.Page, q.Limit)
	filter := repo.ProductFilter{Categoria: strings.TrimSpace(q.Categoria), Search: strings.TrimSpace(q.Search)}

	if filter.Search != "" && s.Search != nil {
		total, items, err := s.Search.Search(ctx, filter.Search, filter.Categoria, offset, limit)
		if err == nil {
			return &Page{Items: items, Total: total, Offset: offset, Limit: limit}, nil
		}
		if !errors.Is(err, search.ErrDisabled) {
			l.Warn("search_fallback_sql", "error", err)
		}
	}

	total, items, err := s.Repo.ListProducts(ctx, filter, offset, limit)
	if err != nil {
		l.Warn("catalog_store_unavailable", "reason", "serving demo catalog", "error", err)
		total, items = demoList(filter, offset, limit)
		return &Page{Items: items, Total: total, Offset: offset, Limit: limit, Demo: true}, nil
	}
	return &Page{Items: items, Total: total, Offset: offset, Limit: limit}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Product, bool, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.get", "product_id", id)

	prod, err := s.Repo.GetProduct(ctx, id)
	switch {
	case err == nil:
		return prod, false, nil
	case errors.Is(err, repo.ErrNotFound):
		return nil, false, ErrNotFound
	}

	l.Warn("catalog_store_unavailable", "error", err)
	if demo, ok := demoFind(id); ok {
		return demo, true, nil
	}
	return nil, false, fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	in.Categoria = strings.TrimSpace(in.Categoria)
	if in.Titulo == "" || in.Descripcion == "" || in.Categoria == "" {
		return nil, fmt.Errorf("%w: titulo, descripcion and categoria are required", ErrValidation)
	}

	prod := &models.Product{
		Titulo:           in.Titulo,
		Descripcion:      in.Descripcion,
		Categoria:        in.Categoria,
		ImagenURL:        strings.TrimSpace(in.ImagenURL),
		Caracteristicas:  cleanList(in.Caracteristicas),
		Aplicaciones:     cleanList(in.Aplicaciones),
		Especificaciones: cleanList(in.Especificaciones),
		CreatedBy:        createdBy,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		l.Error("product_create_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.index(ctx, prod)
	s.publish(ctx, "product_created", prod)
	return prod, nil
}

type PatchInput struct {
	Titulo           *string
	Descripcion      *string
	Categoria        *string
	ImagenURL        *string
	Caracteristicas  *[]string
	Aplicaciones     *[]string
	Especificaciones *[]string
}

// blankToNil treats an empty string the same as an absent field.
func blankToNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func cleanListPtr(p *[]string) *[]string {
	if p == nil {
		return nil
	}
	v := cleanList(*p)
	return &v
}

func (s *Service) Patch(ctx context.Context, id uuid.UUID, in PatchInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.patch", "product_id", id)

	prod, err := s.Repo.PatchProduct(ctx, id, repo.ProductPatch{
		Titulo:           blankToNil(in.Titulo),
		Descripcion:      blankToNil(in.Descripcion),
		Categoria:        blankToNil(in.Categoria),
		ImagenURL:        blankToNil(in.ImagenURL),
		Caracteristicas:  cleanListPtr(in.Caracteristicas),
		Aplicaciones:     cleanListPtr(in.Aplicaciones),
		Especificaciones: cleanListPtr(in.Especificaciones),
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		l.Error("product_patch_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.index(ctx, prod)
	s.publish(ctx, "product_updated", prod)
	return prod, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	if err := s.Repo.DeactivateProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		l.Error("product_delete_error", "status", 500, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if s.Search != nil {
		if err := s.Search.Delete(ctx, id); err != nil {
			l.Warn("search_unindex_failed", "error", err)
		}
	}
	events.Publish(ctx, s.Events, events.TopicProducts, id.String(), map[string]any{
		"type":      "product_deleted",
		"productID": id.String(),
	})
	return nil
}

func (s *Service) ContactLinks(ctx context.Context, id uuid.UUID) (contact.Links, error) {
	prod, _, err := s.Get(ctx, id)
	if err != nil {
		return contact.Links{}, err
	}
	return s.Contact.ForProduct(prod.Titulo, prod.Categoria), nil
}

func (s *Service) index(ctx context.Context, prod *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, prod); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", prod.ID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, eventType string, prod *models.Product) {
	events.Publish(ctx, s.Events, events.TopicProducts, prod.ID.String(), map[string]any{
		"type":      eventType,
		"productID": prod.ID.String(),
		"titulo":    prod.Titulo,
		"categoria": prod.Categoria,
	})
}
