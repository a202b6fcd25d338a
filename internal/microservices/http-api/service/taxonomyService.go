package service

import (
	"context"
	"strings"

	"yamdb/database"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/apperror"
)

const msgSlugTaken = "this slug is already in use"

// TaxonomyService manages one slug-keyed classification: genres or categories.
type TaxonomyService interface {
	List(ctx context.Context, search string, page, pageSize int) (dto.Page[dto.TaxonomyResponse], error)
	Create(ctx context.Context, req dto.TaxonomyRequest) (dto.TaxonomyResponse, error)
	Delete(ctx context.Context, slug string) error
}

type taxonomyStore[T any] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	Create(ctx context.Context, item *T) error
	Delete(ctx context.Context, slug string) error
}

type taxonomyService[T any] struct {
	kind       string
	repo       taxonomyStore[T]
	build      func(name, slug string) *T
	toResponse func(T) dto.TaxonomyResponse
}

// NewGenreService deletes by unlinking the genre from every title; the
// titles themselves stay.
func NewGenreService(r repository.GenreRepository) TaxonomyService {
	return &taxonomyService[models.Genre]{
		kind: "genre",
		repo: r,
		build: func(name, slug string) *models.Genre {
			return &models.Genre{Name: name, Slug: slug}
		},
		toResponse: dto.ToGenreResponse,
	}
}

// NewCategoryService deletes by leaving the category's titles uncategorized.
func NewCategoryService(r repository.CategoryRepository) TaxonomyService {
	return &taxonomyService[models.Category]{
		kind: "category",
		repo: r,
		build: func(name, slug string) *models.Category {
			return &models.Category{Name: name, Slug: slug}
		},
		toResponse: dto.ToCategoryResponse,
	}
}

func (s *taxonomyService[T]) List(ctx context.Context, search string, page, pageSize int) (dto.Page[dto.TaxonomyResponse], error) {
	items, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return dto.Page[dto.TaxonomyResponse]{}, err
	}
	out := make([]dto.TaxonomyResponse, 0, len(items))
	for _, item := range items {
		out = append(out, s.toResponse(item))
	}
	return dto.NewPage(out, total, page, pageSize), nil
}

func (s *taxonomyService[T]) Create(ctx context.Context, req dto.TaxonomyRequest) (dto.TaxonomyResponse, error) {
	name, err := cleanText("name", req.Name)
	if err != nil {
		return dto.TaxonomyResponse{}, err
	}
	item := s.build(name, strings.TrimSpace(req.Slug))
	if err := s.repo.Create(ctx, item); err != nil {
		if database.IsUniqueViolation(err) {
			return dto.TaxonomyResponse{}, apperror.Conflict(map[string][]string{"slug": {msgSlugTaken}})
		}
		return dto.TaxonomyResponse{}, err
	}
	return s.toResponse(*item), nil
}

func (s *taxonomyService[T]) Delete(ctx context.Context, slug string) error {
	return notFound(s.repo.Delete(ctx, slug), s.kind)
}
