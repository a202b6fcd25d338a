package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ScoreStat is the integer aggregate of one title's review scores.
type ScoreStat struct {
	TitleID int64 `gorm:"column:title_id"`
	Sum     int64 `gorm:"column:score_sum"`
	Count   int64 `gorm:"column:score_count"`
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	// Delete removes the review and its comments.
	Delete(ctx context.Context, id int64) error
	// FindInTitle only finds the review when it belongs to titleID.
	FindInTitle(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error)
	// ScoreStats aggregates scores for the given titles in one query. Titles
	// without reviews are absent from the result.
	ScoreStats(ctx context.Context, titleIDs []int64) (map[int64]ScoreStat, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Title").Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).
		Model(&models.Review{ID: review.ID}).
		Updates(map[string]any{"text": review.Text, "score": review.Score}).Error
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete review comments: %w", err)
		}
		res := tx.Delete(&models.Review{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *reviewRepository) FindInTitle(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByTitle retrieves the reviews of a title with pagination
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC, id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("get reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return count > 0, nil
}

func (r *reviewRepository) ScoreStats(ctx context.Context, titleIDs []int64) (map[int64]ScoreStat, error) {
	stats := make(map[int64]ScoreStat, len(titleIDs))
	if len(titleIDs) == 0 {
		return stats, nil
	}

	var rows []ScoreStat
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("title_id, COALESCE(SUM(score), 0) AS score_sum, COUNT(*) AS score_count").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate review scores: %w", err)
	}
	for _, row := range rows {
		stats[row.TitleID] = row
	}
	return stats, nil
}
