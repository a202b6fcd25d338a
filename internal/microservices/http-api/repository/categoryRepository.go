package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	// Delete detaches the category from its titles and removes it.
	Delete(ctx context.Context, slug string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	var list []models.Category
	var total int64

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Category{})
		if search != "" {
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(search))
		}
		return q
	}

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	if err := query().Order("slug asc").Limit(pageSize).Offset(offset(page, pageSize)).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get categories: %w", err)
	}
	return list, total, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.Where("slug = ?", slug).First(&c).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach category from titles: %w", err)
		}
		if err := tx.Delete(&c).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}
