package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/apperror"

	"gorm.io/gorm"
)

// CommentService addresses comments through their title and review, so a
// comment is only reachable under the review it belongs to.
type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (dto.Page[dto.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (dto.CommentResponse, error)
	Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.CommentRequest) (dto.CommentResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, req dto.CommentRequest) (dto.CommentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	reviews  repository.ReviewRepository
	comments repository.CommentRepository
}

func NewCommentService(reviews repository.ReviewRepository, comments repository.CommentRepository) CommentService {
	return &commentService{reviews: reviews, comments: comments}
}

func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviews.FindInTitle(ctx, titleID, reviewID); err != nil {
		return notFound(err, "review")
	}
	return nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (dto.Page[dto.CommentResponse], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return dto.Page[dto.CommentResponse]{}, err
	}
	comments, total, err := s.comments.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return dto.Page[dto.CommentResponse]{}, err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, dto.ToCommentResponse(c))
	}
	return dto.NewPage(out, total, page, pageSize), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return dto.CommentResponse{}, err
	}
	c, err := s.comments.FindInReview(ctx, reviewID, commentID)
	if err != nil {
		return dto.CommentResponse{}, notFound(err, "comment")
	}
	return dto.ToCommentResponse(*c), nil
}

func (s *commentService) Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.CommentRequest) (dto.CommentResponse, error) {
	if !actor.Authenticated() {
		return dto.CommentResponse{}, apperror.Unauthorized("")
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return dto.CommentResponse{}, err
	}
	text, err := cleanText("text", req.Text)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	comment := &models.Comment{ReviewID: reviewID, AuthorID: actor.UserID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return dto.CommentResponse{}, err
	}
	return s.Get(ctx, titleID, reviewID, comment.ID)
}

func (s *commentService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, req dto.CommentRequest) (dto.CommentResponse, error) {
	comment, err := s.owned(ctx, actor, titleID, reviewID, commentID)
	if err != nil {
		return dto.CommentResponse{}, err
	}
	if comment.Text, err = cleanText("text", req.Text); err != nil {
		return dto.CommentResponse{}, err
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return dto.CommentResponse{}, err
	}
	return s.Get(ctx, titleID, reviewID, commentID)
}

func (s *commentService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error {
	if _, err := s.owned(ctx, actor, titleID, reviewID, commentID); err != nil {
		return err
	}
	return notFound(s.comments.Delete(ctx, commentID), "comment")
}

func (s *commentService) owned(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if !actor.Authenticated() {
		return nil, apperror.Unauthorized("")
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindInReview(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("comment")
		}
		return nil, err
	}
	if !policy.CanModify(actor, comment.AuthorID) {
		return nil, errNotAuthor
	}
	return comment, nil
}
