package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows title lists. Slugs match case-insensitively, Name
// matches any title containing it.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
}

type TitleRepository interface {
	List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Create inserts the title and its genre links in one transaction.
	Create(ctx context.Context, t *models.Title, genreIDs []int64) error
	// Update saves the title. A non-nil genreIDs replaces every genre link in
	// the same transaction; nil leaves the links untouched.
	Update(ctx context.Context, t *models.Title, genreIDs *[]int64) error
	// Delete removes the title with its reviews, their comments and its genre links.
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) filtered(ctx context.Context, f TitleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Title{})
	if f.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("LOWER(categories.slug) = ?", toLower(f.Category))
	}
	if f.Genre != "" {
		linked := r.db.Table("title_genres").
			Select("title_genres.title_id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("LOWER(genres.slug) = ?", toLower(f.Genre))
		q = q.Where("titles.id IN (?)", linked)
	}
	if f.Name != "" {
		q = q.Where(`LOWER(titles.name) LIKE ? ESCAPE '\'`, containsPattern(f.Name))
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}

func (r *titleRepository) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	if err := r.filtered(ctx, f).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.slug asc") }).
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.slug asc") }).
		First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return count > 0, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Genres").Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		return linkGenres(tx, t.ID, genreIDs)
	})
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title, genreIDs *[]int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Title{ID: t.ID}).Updates(map[string]any{
			"name":        t.Name,
			"year":        t.Year,
			"description": t.Description,
			"category_id": t.CategoryID,
		})
		if res.Error != nil {
			return fmt.Errorf("update title: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if genreIDs == nil {
			return nil
		}
		if err := tx.Where("title_id = ?", t.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("clear title genres: %w", err)
		}
		return linkGenres(tx, t.ID, *genreIDs)
	})
}

func linkGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.TitleGenre, 0, len(genreIDs))
	seen := make(map[int64]bool, len(genreIDs))
	for _, id := range genreIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, models.TitleGenre{TitleID: titleID, GenreID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link title genres: %w", err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete title comments: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete title reviews: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("delete title genres: %w", err)
		}
		res := tx.Delete(&models.Title{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete title: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
