package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(ctx context.Context, g *models.Genre) error
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.Genre, error)
	// FindBySlugs returns the genres that exist; callers compare lengths to find unknown slugs.
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	// Delete unlinks the genre from its titles and removes it.
	Delete(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, g *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func (r *genreRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Genre{})
		if search != "" {
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(search))
		}
		return q
	}

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}
	if err := query().Order("slug asc").Limit(pageSize).Offset(offset(page, pageSize)).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get genres: %w", err)
	}
	return list, total, nil
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("slug asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres by slug: %w", err)
	}
	return list, nil
}

func (r *genreRepository) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Genre
		if err := tx.Where("slug = ?", slug).First(&g).Error; err != nil {
			return err
		}
		if err := tx.Where("genre_id = ?", g.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("unlink genre from titles: %w", err)
		}
		if err := tx.Delete(&g).Error; err != nil {
			return fmt.Errorf("delete genre: %w", err)
		}
		return nil
	})
}
