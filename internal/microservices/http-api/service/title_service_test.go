package service

import (
	"net/http"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func slugs(items []dto.TaxonomyResponse) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Slug)
	}
	return out
}

type catalog struct {
	*fixture
	titles     TitleService
	categories TaxonomyService
	genres     TaxonomyService
}

func newCatalog(t *testing.T) *catalog {
	t.Helper()
	f := newFixture(t)
	titles := NewTitleService(f.titles, f.categories, f.genres, f.reviews)
	titles.(*titleService).now = func() time.Time {
		return time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
	c := &catalog{
		fixture:    f,
		titles:     titles,
		categories: NewCategoryService(f.categories),
		genres:     NewGenreService(f.genres),
	}

	for _, slug := range []string{"books", "films"} {
		_, err := c.categories.Create(f.ctx, dto.TaxonomyRequest{Name: slug, Slug: slug})
		require.NoError(t, err)
	}
	for _, slug := range []string{"drama", "comedy", "horror"} {
		_, err := c.genres.Create(f.ctx, dto.TaxonomyRequest{Name: slug, Slug: slug})
		require.NoError(t, err)
	}
	return c
}

func (c *catalog) create(t *testing.T, req dto.TitleRequest) dto.TitleResponse {
	t.Helper()
	out, err := c.titles.Create(c.ctx, req)
	require.NoError(t, err)
	return out
}

func TestTitleCreate_YearBoundary(t *testing.T) {
	c := newCatalog(t)

	out, err := c.titles.Create(c.ctx, dto.TitleRequest{Name: "Now", Year: intPtr(2030)})
	require.NoError(t, err)
	assert.Equal(t, 2030, out.Year)

	_, err = c.titles.Create(c.ctx, dto.TitleRequest{Name: "Later", Year: intPtr(2031)})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	assert.Contains(t, apperror.FieldsOf(err), "year")

	_, err = c.titles.Patch(c.ctx, out.ID, dto.TitlePatchRequest{Year: intPtr(2031)})
	assert.Contains(t, apperror.FieldsOf(err), "year")
}

func TestTitleCreate_ResolvesSlugs(t *testing.T) {
	c := newCatalog(t)

	out := c.create(t, dto.TitleRequest{
		Name:     "Dune",
		Year:     intPtr(1965),
		Category: dto.OptionalSlug{Set: true, Value: strPtr("books")},
		Genre:    &[]string{"drama", "horror", "drama"},
	})

	require.NotNil(t, out.Category)
	assert.Equal(t, "books", out.Category.Slug)
	assert.Equal(t, []string{"drama", "horror"}, slugs(out.Genre))
	assert.Nil(t, out.Rating)
}

func TestTitleCreate_UnknownSlugs(t *testing.T) {
	c := newCatalog(t)

	_, err := c.titles.Create(c.ctx, dto.TitleRequest{
		Name:     "Dune",
		Year:     intPtr(1965),
		Category: dto.OptionalSlug{Set: true, Value: strPtr("games")},
		Genre:    &[]string{"drama", "western"},
	})

	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	fields := apperror.FieldsOf(err)
	assert.Contains(t, fields, "category")
	require.Contains(t, fields, "genre")
	assert.Contains(t, fields["genre"][0], "western")

	page, err := c.titles.List(c.ctx, repository.TitleFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Count)
}

func TestTitlePatch_GenreReplaceAndPreserve(t *testing.T) {
	c := newCatalog(t)
	out := c.create(t, dto.TitleRequest{Name: "Dune", Year: intPtr(1965), Genre: &[]string{"drama", "horror"}})

	// absent genre keeps the links
	patched, err := c.titles.Patch(c.ctx, out.ID, dto.TitlePatchRequest{Name: strPtr("Dune Messiah")})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", patched.Name)
	assert.Equal(t, []string{"drama", "horror"}, slugs(patched.Genre))

	// present genre replaces them
	patched, err = c.titles.Patch(c.ctx, out.ID, dto.TitlePatchRequest{Genre: &[]string{"comedy"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"comedy"}, slugs(patched.Genre))

	// an empty list clears them
	patched, err = c.titles.Patch(c.ctx, out.ID, dto.TitlePatchRequest{Genre: &[]string{}})
	require.NoError(t, err)
	assert.Empty(t, patched.Genre)
}

func TestTitleReplace_CategoryNullAndAbsent(t *testing.T) {
	c := newCatalog(t)
	out := c.create(t, dto.TitleRequest{
		Name:     "Alien",
		Year:     intPtr(1979),
		Category: dto.OptionalSlug{Set: true, Value: strPtr("films")},
	})

	replaced, err := c.titles.Replace(c.ctx, out.ID, dto.TitleRequest{Name: "Alien", Year: intPtr(1979), Description: "in space"})
	require.NoError(t, err)
	require.NotNil(t, replaced.Category)
	assert.Equal(t, "in space", replaced.Description)

	replaced, err = c.titles.Replace(c.ctx, out.ID, dto.TitleRequest{
		Name:     "Alien",
		Year:     intPtr(1979),
		Category: dto.OptionalSlug{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, replaced.Category)
}

func TestTitleRating(t *testing.T) {
	c := newCatalog(t)
	out := c.create(t, dto.TitleRequest{Name: "Dune", Year: intPtr(1965)})
	other := c.create(t, dto.TitleRequest{Name: "Alien", Year: intPtr(1979)})

	for i, score := range []int{7, 8} {
		u := c.user(t, []string{"a", "b"}[i], models.RoleUser)
		require.NoError(t, c.reviews.Create(c.ctx, &models.Review{TitleID: out.ID, AuthorID: u.ID, Text: "t", Score: score}))
	}

	got, err := c.titles.Get(c.ctx, out.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 8, *got.Rating)

	page, err := c.titles.List(c.ctx, repository.TitleFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	for _, r := range page.Results {
		if r.ID == other.ID {
			assert.Nil(t, r.Rating)
		} else {
			assert.Equal(t, 8, *r.Rating)
		}
	}
}

func TestTitleMissing(t *testing.T) {
	c := newCatalog(t)

	_, err := c.titles.Get(c.ctx, 999)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	_, err = c.titles.Patch(c.ctx, 999, dto.TitlePatchRequest{})
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(c.titles.Delete(c.ctx, 999)))
}

func TestTaxonomy(t *testing.T) {
	c := newCatalog(t)
	out := c.create(t, dto.TitleRequest{
		Name:     "Dune",
		Year:     intPtr(1965),
		Category: dto.OptionalSlug{Set: true, Value: strPtr("books")},
		Genre:    &[]string{"drama"},
	})

	_, err := c.genres.Create(c.ctx, dto.TaxonomyRequest{Name: "Drama again", Slug: "drama"})
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
	assert.Contains(t, apperror.FieldsOf(err), "slug")

	_, err = c.categories.Create(c.ctx, dto.TaxonomyRequest{Name: "  ", Slug: "blank"})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	page, err := c.genres.List(c.ctx, "DRA", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"drama"}, slugs(page.Results))

	require.NoError(t, c.categories.Delete(c.ctx, "books"))
	require.NoError(t, c.genres.Delete(c.ctx, "drama"))
	assert.EqualError(t, c.genres.Delete(c.ctx, "drama"), "genre not found")
	assert.EqualError(t, c.categories.Delete(c.ctx, "books"), "category not found")

	_, err = c.categories.Create(c.ctx, dto.TaxonomyRequest{Name: "Films again", Slug: "films"})
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
	categories, err := c.categories.List(c.ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"films"}, slugs(categories.Results))

	// the title outlives its taxonomy
	got, err := c.titles.Get(c.ctx, out.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Category)
	assert.Empty(t, got.Genre)
}
