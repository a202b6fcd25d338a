package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/apperror"
	"yamdb/pkg/sanitize"

	"gorm.io/gorm"
)

type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (dto.Page[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (dto.TitleResponse, error)
	Create(ctx context.Context, req dto.TitleRequest) (dto.TitleResponse, error)
	// Replace is a full update; genre links survive when req.Genre is absent.
	Replace(ctx context.Context, id int64, req dto.TitleRequest) (dto.TitleResponse, error)
	Patch(ctx context.Context, id int64, req dto.TitlePatchRequest) (dto.TitleResponse, error)
	// Delete removes the title together with its reviews and their comments.
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	reviews    repository.ReviewRepository
	now        func() time.Time
}

func NewTitleService(
	titles repository.TitleRepository,
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
	reviews repository.ReviewRepository,
) TitleService {
	return &titleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		reviews:    reviews,
		now:        time.Now,
	}
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (dto.Page[dto.TitleResponse], error) {
	titles, total, err := s.titles.List(ctx, f, page, pageSize)
	if err != nil {
		return dto.Page[dto.TitleResponse]{}, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	stats, err := s.reviews.ScoreStats(ctx, ids)
	if err != nil {
		return dto.Page[dto.TitleResponse]{}, err
	}

	out := make([]dto.TitleResponse, 0, len(titles))
	for _, t := range titles {
		st := stats[t.ID]
		out = append(out, dto.ToTitleResponse(t, Rating(st.Sum, st.Count)))
	}
	return dto.NewPage(out, total, page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (dto.TitleResponse, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return dto.TitleResponse{}, notFound(err, "title")
	}
	return s.render(ctx, t)
}

func (s *titleService) render(ctx context.Context, t *models.Title) (dto.TitleResponse, error) {
	stats, err := s.reviews.ScoreStats(ctx, []int64{t.ID})
	if err != nil {
		return dto.TitleResponse{}, err
	}
	st := stats[t.ID]
	return dto.ToTitleResponse(*t, Rating(st.Sum, st.Count)), nil
}

func (s *titleService) Create(ctx context.Context, req dto.TitleRequest) (dto.TitleResponse, error) {
	t := &models.Title{}
	genreIDs, err := s.apply(ctx, t, req.Patch())
	if err != nil {
		return dto.TitleResponse{}, err
	}
	var links []int64
	if genreIDs != nil {
		links = *genreIDs
	}
	if err := s.titles.Create(ctx, t, links); err != nil {
		return dto.TitleResponse{}, err
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Replace(ctx context.Context, id int64, req dto.TitleRequest) (dto.TitleResponse, error) {
	return s.Patch(ctx, id, req.Patch())
}

func (s *titleService) Patch(ctx context.Context, id int64, req dto.TitlePatchRequest) (dto.TitleResponse, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return dto.TitleResponse{}, notFound(err, "title")
	}
	genreIDs, err := s.apply(ctx, t, req)
	if err != nil {
		return dto.TitleResponse{}, err
	}
	if err := s.titles.Update(ctx, t, genreIDs); err != nil {
		return dto.TitleResponse{}, notFound(err, "title")
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	return notFound(s.titles.Delete(ctx, id), "title")
}

// apply validates req and copies the fields it sets onto t. The returned
// genre ids are nil when req leaves the genre links alone.
func (s *titleService) apply(ctx context.Context, t *models.Title, req dto.TitlePatchRequest) (*[]int64, error) {
	fields := map[string][]string{}

	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			fields["name"] = append(fields["name"], "this field may not be blank")
		}
		t.Name = name
	}
	if req.Year != nil {
		if current := s.now().Year(); *req.Year > current {
			fields["year"] = append(fields["year"], fmt.Sprintf("year cannot be later than %d", current))
		}
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = sanitize.Text(*req.Description)
	}

	if req.Category.Set {
		if req.Category.Value == nil || strings.TrimSpace(*req.Category.Value) == "" {
			t.CategoryID = nil
			t.Category = nil
		} else {
			c, err := s.categories.FindBySlug(ctx, strings.TrimSpace(*req.Category.Value))
			switch {
			case err == nil:
				t.CategoryID = &c.ID
				t.Category = c
			case errors.Is(err, gorm.ErrRecordNotFound):
				fields["category"] = append(fields["category"], fmt.Sprintf("category %q does not exist", *req.Category.Value))
			default:
				return nil, err
			}
		}
	}

	var genreIDs *[]int64
	if req.Genre != nil {
		ids, missing, err := s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		for _, slug := range missing {
			fields["genre"] = append(fields["genre"], fmt.Sprintf("genre %q does not exist", slug))
		}
		genreIDs = &ids
	}

	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}
	return genreIDs, nil
}

// resolveGenres maps slugs to ids and reports the slugs that match nothing.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]int64, []string, error) {
	wanted := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		wanted = append(wanted, slug)
	}

	found, err := s.genres.FindBySlugs(ctx, wanted)
	if err != nil {
		return nil, nil, err
	}
	bySlug := make(map[string]int64, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g.ID
	}

	ids := make([]int64, 0, len(wanted))
	var missing []string
	for _, slug := range wanted {
		id, ok := bySlug[slug]
		if !ok {
			missing = append(missing, slug)
			continue
		}
		ids = append(ids, id)
	}
	return ids, missing, nil
}
