package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/business_site/internal/models"
)

// ListPublishedServices returns the published services of the given
// categories ordered by name.
func (r *GormRepo) ListPublishedServices(ctx context.Context, categoryIDs []uuid.UUID) ([]models.Service, error) {
	items := make([]models.Service, 0)
	if len(categoryIDs) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).
		Where("category_id IN ?", categoryIDs).
		Where("is_published = ?", true).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListServices(ctx context.Context) ([]models.Service, error) {
	var items []models.Service
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *GormRepo) GetPublishedServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	var service models.Service
	if err := r.DB.WithContext(ctx).
		Where("slug = ?", slug).
		Where("is_published = ?", true).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *GormRepo) CreateService(ctx context.Context, service *models.Service) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSlug(tx, service.Slug, uuid.Nil); err != nil {
			return err
		}
		return uniqueViolation(tx.Create(service).Error, ErrSlugTaken)
	})
}

func (r *GormRepo) SaveService(ctx context.Context, service *models.Service) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSlug(tx, service.Slug, service.ID); err != nil {
			return err
		}
		return uniqueViolation(tx.Save(service).Error, ErrSlugTaken)
	})
}

func (r *GormRepo) DeleteService(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Service{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchPublishedServices is the store-side search used when no search
// cluster is configured: a case-insensitive substring match on name and
// description, restricted to published services in published categories.
func (r *GormRepo) SearchPublishedServices(ctx context.Context, q string, offset, limit int) (int64, []models.Service, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	published := r.DB.Model(&models.Category{}).Select("id").Where("is_published = ?", true)

	scope := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Service{}).
			Where("is_published = ?", true).
			Where("category_id IN (?)", published).
			Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := r.DB.WithContext(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Service, 0, limit)
	if err := r.DB.WithContext(ctx).Scopes(scope).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func checkSlug(tx *gorm.DB, slug string, except uuid.UUID) error {
	var count int64
	q := tx.Model(&models.Service{}).Where("slug = ?", slug)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
