package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/Skotchmaster/business_site/internal/logging"
	"github.com/Skotchmaster/business_site/internal/models"
	"github.com/Skotchmaster/business_site/internal/mykafka"
	"github.com/Skotchmaster/business_site/internal/repo"
	"github.com/Skotchmaster/business_site/internal/search"
	"github.com/Skotchmaster/business_site/internal/transport"
)

type SearchIndex interface {
	Put(ctx context.Context, doc search.Document) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []search.Document, error)
}

// CatalogService serves the public catalog and its admin management.
// Index is optional; without it search runs against the store.
type CatalogService struct {
	Repo     *repo.GormRepo
	Index    SearchIndex
	Producer mykafka.Publisher
}

func (s *CatalogService) Categories(ctx context.Context) ([]transport.CategoryView, error) {
	items, err := s.Repo.ListPublishedCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CategoryView, 0, len(items))
	for _, c := range items {
		out = append(out, transport.CategoryView{ID: c.ID.String(), Name: c.Name, ImageURL: c.ImageURL})
	}
	return out, nil
}

func (s *CatalogService) CategoriesWithServices(ctx context.Context) ([]transport.CategoryWithServices, error) {
	categories, err := s.Repo.ListPublishedCategories(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	services, err := s.Repo.ListPublishedServices(ctx, ids)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]transport.ServiceView, len(categories))
	for i := range services {
		byCategory[services[i].CategoryID] = append(byCategory[services[i].CategoryID], serviceView(&services[i]))
	}

	out := make([]transport.CategoryWithServices, 0, len(categories))
	for _, c := range categories {
		views := byCategory[c.ID]
		if views == nil {
			views = []transport.ServiceView{}
		}
		out = append(out, transport.CategoryWithServices{
			ID:        c.ID.String(),
			Name:      c.Name,
			SortOrder: c.SortOrder,
			Services:  views,
		})
	}
	return out, nil
}

// ServiceBySlug returns a published service whose category exists and is
// published too.
func (s *CatalogService) ServiceBySlug(ctx context.Context, slug string) (*transport.ServiceDetail, error) {
	svc, err := s.Repo.GetPublishedServiceBySlug(ctx, slug)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	category, err := s.Repo.GetCategory(ctx, svc.CategoryID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !category.IsPublished {
		return nil, ErrNotFound
	}

	return &transport.ServiceDetail{
		ServiceView:  serviceView(svc),
		CategoryID:   category.ID.String(),
		CategoryName: category.Name,
	}, nil
}

func (s *CatalogService) Search(ctx context.Context, q string, offset, limit int) (int64, []transport.ServiceView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []transport.ServiceView{}, nil
	}

	if s.Index != nil {
		total, docs, err := s.Index.Search(ctx, q, offset, limit)
		if err != nil {
			return 0, nil, fmt.Errorf("search index: %w", err)
		}
		out := make([]transport.ServiceView, 0, len(docs))
		for _, d := range docs {
			out = append(out, transport.ServiceView{
				ID:          d.ID,
				Name:        d.Name,
				Description: d.Description,
				Price:       d.Price,
				ImageURL:    d.ImageURL,
				Slug:        d.Slug,
			})
		}
		return total, out, nil
	}

	total, items, err := s.Repo.SearchPublishedServices(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	out := make([]transport.ServiceView, 0, len(items))
	for i := range items {
		out = append(out, serviceView(&items[i]))
	}
	return total, out, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrValidation
	}

	category := &models.Category{
		Name:        name,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		SortOrder:   req.SortOrder,
		IsPublished: req.IsPublished,
	}
	if err := s.Repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.publishCatalog(ctx, "category_created", category.ID, map[string]any{"name": category.Name})
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.PatchCategoryRequest) (*models.Category, error) {
	category, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	wasPublished := category.IsPublished

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrValidation
		}
		category.Name = name
	}
	if req.ImageURL != nil {
		category.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsPublished != nil {
		category.IsPublished = *req.IsPublished
	}

	if err := s.Repo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}

	if wasPublished != category.IsPublished {
		s.reindexCategory(ctx, category)
	}
	s.publishCatalog(ctx, "category_updated", category.ID, map[string]any{"name": category.Name})
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		if errors.Is(err, repo.ErrCategoryInUse) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return err
	}

	s.publishCatalog(ctx, "category_deleted", id, nil)
	return nil
}

func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.Repo.ListServices(ctx)
}

func (s *CatalogService) CreateService(ctx context.Context, req transport.CreateServiceRequest) (*models.Service, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price < 0 {
		return nil, ErrValidation
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, ErrValidation
	}
	category, err := s.categoryFor(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, ErrValidation
	}

	svc := &models.Service{
		CategoryID:  categoryID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Slug:        slug,
		IsPublished: req.IsPublished,
	}
	if err := s.Repo.CreateService(ctx, svc); err != nil {
		if errors.Is(err, repo.ErrSlugTaken) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, err
	}

	s.indexService(ctx, svc, category.IsPublished)
	s.publishCatalog(ctx, "service_created", svc.ID, map[string]any{"name": svc.Name, "slug": svc.Slug})
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, req transport.PatchServiceRequest) (*models.Service, error) {
	svc, err := s.Repo.GetService(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, ErrValidation
		}
		svc.CategoryID = categoryID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrValidation
		}
		svc.Name = name
	}
	if req.Description != nil {
		svc.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrValidation
		}
		svc.Price = *req.Price
	}
	if req.ImageURL != nil {
		svc.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			slug = Slugify(svc.Name)
		}
		if slug == "" {
			return nil, ErrValidation
		}
		svc.Slug = slug
	}
	if req.IsPublished != nil {
		svc.IsPublished = *req.IsPublished
	}

	category, err := s.categoryFor(ctx, svc.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SaveService(ctx, svc); err != nil {
		if errors.Is(err, repo.ErrSlugTaken) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, err
	}

	s.indexService(ctx, svc, category.IsPublished)
	s.publishCatalog(ctx, "service_updated", svc.ID, map[string]any{"name": svc.Name, "slug": svc.Slug})
	return svc, nil
}

func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteService(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.Remove(ctx, id.String()); err != nil {
			logging.FromContext(ctx).Error("search_index_failed", "op", "remove", "service_id", id, "error", err)
		}
	}
	s.publishCatalog(ctx, "service_deleted", id, nil)
	return nil
}

// categoryFor loads the category a service points at. A missing category is
// a client error, not a missing resource.
func (s *CatalogService) categoryFor(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: unknown category", ErrValidation)
		}
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) indexService(ctx context.Context, svc *models.Service, categoryPublished bool) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, search.DocumentFromService(svc, categoryPublished)); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "op", "put", "service_id", svc.ID, "error", err)
	}
}

// reindexCategory refreshes every service of a category after its
// visibility changed.
func (s *CatalogService) reindexCategory(ctx context.Context, category *models.Category) {
	if s.Index == nil {
		return
	}
	services, err := s.Repo.ListServices(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("search_reindex_failed", "category_id", category.ID, "error", err)
		return
	}
	for i := range services {
		if services[i].CategoryID == category.ID {
			s.indexService(ctx, &services[i], category.IsPublished)
		}
	}
}

func (s *CatalogService) publishCatalog(ctx context.Context, eventType string, id uuid.UUID, fields map[string]any) {
	event := map[string]any{"type": eventType, "id": id.String()}
	for k, v := range fields {
		event[k] = v
	}
	mykafka.Publish(ctx, s.Producer, mykafka.TopicCatalogEvents, id.String(), event)
}

func serviceView(s *models.Service) transport.ServiceView {
	return transport.ServiceView{
		ID:          s.ID.String(),
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		ImageURL:    s.ImageURL,
		Slug:        s.Slug,
	}
}

// Slugify lower-cases s and joins its letter and digit runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
