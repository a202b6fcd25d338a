package service

import (
	"context"
	"errors"
	"fmt"

	"yamdb/database"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/apperror"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const msgAlreadyReviewed = "you have already reviewed this title"

var errNotAuthor = apperror.Forbidden("only the author or a moderator can change this")

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) (dto.Page[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (dto.ReviewResponse, error)
	// Create stores the actor's review of the title. An actor may review a
	// title once; the storage constraint decides concurrent duplicates.
	Create(ctx context.Context, actor policy.Actor, titleID int64, req dto.CreateReviewRequest) (dto.ReviewResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.UpdateReviewRequest) (dto.ReviewResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	titles  repository.TitleRepository
	reviews repository.ReviewRepository
}

func NewReviewService(titles repository.TitleRepository, reviews repository.ReviewRepository) ReviewService {
	return &reviewService{titles: titles, reviews: reviews}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("title")
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (dto.Page[dto.ReviewResponse], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return dto.Page[dto.ReviewResponse]{}, err
	}
	reviews, total, err := s.reviews.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return dto.Page[dto.ReviewResponse]{}, err
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, dto.ToReviewResponse(r))
	}
	return dto.NewPage(out, total, page, pageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (dto.ReviewResponse, error) {
	r, err := s.reviews.FindInTitle(ctx, titleID, reviewID)
	if err != nil {
		return dto.ReviewResponse{}, notFound(err, "review")
	}
	return dto.ToReviewResponse(*r), nil
}

func (s *reviewService) Create(ctx context.Context, actor policy.Actor, titleID int64, req dto.CreateReviewRequest) (dto.ReviewResponse, error) {
	if !actor.Authenticated() {
		return dto.ReviewResponse{}, apperror.Unauthorized("")
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return dto.ReviewResponse{}, err
	}

	text, err := cleanText("text", req.Text)
	if err != nil {
		return dto.ReviewResponse{}, err
	}
	if err := checkScore(req.Score); err != nil {
		return dto.ReviewResponse{}, err
	}

	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}
	if exists {
		return dto.ReviewResponse{}, apperror.Conflict(map[string][]string{"title": {msgAlreadyReviewed}})
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     text,
		Score:    *req.Score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if database.IsUniqueViolation(err) {
			return dto.ReviewResponse{}, apperror.Conflict(map[string][]string{"title": {msgAlreadyReviewed}})
		}
		return dto.ReviewResponse{}, err
	}

	log.Info().Int64("title_id", titleID).Int64("review_id", review.ID).Str("author", actor.Username).Msg("review created")
	return s.Get(ctx, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.UpdateReviewRequest) (dto.ReviewResponse, error) {
	review, err := s.owned(ctx, actor, titleID, reviewID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	if req.Text != nil {
		if review.Text, err = cleanText("text", *req.Text); err != nil {
			return dto.ReviewResponse{}, err
		}
	}
	if req.Score != nil {
		if err := checkScore(req.Score); err != nil {
			return dto.ReviewResponse{}, err
		}
		review.Score = *req.Score
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return dto.ReviewResponse{}, err
	}
	return s.Get(ctx, titleID, reviewID)
}

func (s *reviewService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	if _, err := s.owned(ctx, actor, titleID, reviewID); err != nil {
		return err
	}
	return notFound(s.reviews.Delete(ctx, reviewID), "review")
}

// owned loads the review and checks the actor may change it. The author is
// the one stored with the review.
func (s *reviewService) owned(ctx context.Context, actor policy.Actor, titleID, reviewID int64) (*models.Review, error) {
	if !actor.Authenticated() {
		return nil, apperror.Unauthorized("")
	}
	review, err := s.reviews.FindInTitle(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("review")
		}
		return nil, err
	}
	if !policy.CanModify(actor, review.AuthorID) {
		return nil, errNotAuthor
	}
	return review, nil
}

func checkScore(score *int) error {
	if score == nil {
		return apperror.Validation("score", "this field is required")
	}
	if *score < models.MinScore || *score > models.MaxScore {
		return apperror.Validation("score", fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore))
	}
	return nil
}
