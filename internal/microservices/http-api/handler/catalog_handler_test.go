package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- MOCKS ---

type MockTaxonomyService struct {
	mock.Mock
}

func (m *MockTaxonomyService) List(ctx context.Context, search string, page, pageSize int) (dto.Page[dto.TaxonomyResponse], error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).(dto.Page[dto.TaxonomyResponse]), args.Error(1)
}

func (m *MockTaxonomyService) Create(ctx context.Context, req dto.TaxonomyRequest) (dto.TaxonomyResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.TaxonomyResponse), args.Error(1)
}

func (m *MockTaxonomyService) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (dto.Page[dto.TitleResponse], error) {
	args := m.Called(ctx, f, page, pageSize)
	return args.Get(0).(dto.Page[dto.TitleResponse]), args.Error(1)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (dto.TitleResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, req dto.TitleRequest) (dto.TitleResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Replace(ctx context.Context, id int64, req dto.TitleRequest) (dto.TitleResponse, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Patch(ctx context.Context, id int64, req dto.TitlePatchRequest) (dto.TitleResponse, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page, pageSize int) (dto.Page[dto.ReviewResponse], error) {
	args := m.Called(ctx, titleID, page, pageSize)
	return args.Get(0).(dto.Page[dto.ReviewResponse]), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID)
	return args.Get(0).(dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, actor policy.Actor, titleID int64, req dto.CreateReviewRequest) (dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, req)
	return args.Get(0).(dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.UpdateReviewRequest) (dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, req)
	return args.Get(0).(dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	args := m.Called(ctx, actor, titleID, reviewID)
	return args.Error(0)
}

// --- SETUP ---

func setupCatalogRouter(actor policy.Actor, genres *MockTaxonomyService, titles *MockTitleService, reviews *MockReviewService) *gin.Engine {
	r := gin.New()
	r.Use(withActor(actor))
	api := r.Group("/api/v1")
	if genres != nil {
		handler.NewTaxonomyHandler(genres, 10).RegisterRoutes(api.Group("/genres"))
	}
	if titles != nil {
		handler.NewTitleHandler(titles, 10).RegisterRoutes(api.Group("/titles"))
	}
	if reviews != nil {
		handler.NewReviewHandler(reviews, 10).RegisterRoutes(api.Group("/titles/:title_id/reviews"))
	}
	return r
}

// --- TESTS ---

func TestTaxonomyHandler(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		svc := new(MockTaxonomyService)
		svc.On("Create", mock.Anything, dto.TaxonomyRequest{Name: "Drama", Slug: "drama"}).
			Return(dto.TaxonomyResponse{Name: "Drama", Slug: "drama"}, nil)

		w := performRequest(setupCatalogRouter(admin, svc, nil, nil), http.MethodPost, "/api/v1/genres",
			dto.TaxonomyRequest{Name: "Drama", Slug: "drama"})

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad slug", func(t *testing.T) {
		svc := new(MockTaxonomyService)

		w := performRequest(setupCatalogRouter(admin, svc, nil, nil), http.MethodPost, "/api/v1/genres",
			dto.TaxonomyRequest{Name: "Sci Fi", Slug: "sci fi"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "slug")
	})

	t.Run("duplicate slug", func(t *testing.T) {
		svc := new(MockTaxonomyService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(dto.TaxonomyResponse{}, apperror.Conflict(map[string][]string{"slug": {"taken"}}))

		w := performRequest(setupCatalogRouter(admin, svc, nil, nil), http.MethodPost, "/api/v1/genres",
			dto.TaxonomyRequest{Name: "Drama", Slug: "drama"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("list with search", func(t *testing.T) {
		svc := new(MockTaxonomyService)
		svc.On("List", mock.Anything, "dra", 1, 10).
			Return(dto.NewPage([]dto.TaxonomyResponse{{Name: "Drama", Slug: "drama"}}, 1, 1, 10), nil)

		w := performRequest(setupCatalogRouter(policy.Anonymous(), svc, nil, nil), http.MethodGet, "/api/v1/genres?search=dra", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var page dto.Page[dto.TaxonomyResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, int64(1), page.Count)
		assert.Equal(t, "drama", page.Results[0].Slug)
	})

	t.Run("delete", func(t *testing.T) {
		svc := new(MockTaxonomyService)
		svc.On("Delete", mock.Anything, "drama").Return(nil)

		w := performRequest(setupCatalogRouter(admin, svc, nil, nil), http.MethodDelete, "/api/v1/genres/drama", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestTitleHandler(t *testing.T) {
	t.Run("non-numeric id is not found", func(t *testing.T) {
		svc := new(MockTitleService)

		w := performRequest(setupCatalogRouter(policy.Anonymous(), nil, svc, nil), http.MethodGet, "/api/v1/titles/abc", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("get", func(t *testing.T) {
		svc := new(MockTitleService)
		rating := 8
		svc.On("Get", mock.Anything, int64(7)).Return(dto.TitleResponse{ID: 7, Name: "Dune", Rating: &rating}, nil)

		w := performRequest(setupCatalogRouter(policy.Anonymous(), nil, svc, nil), http.MethodGet, "/api/v1/titles/7", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.TitleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Rating)
		assert.Equal(t, 8, *resp.Rating)
	})

	t.Run("filters", func(t *testing.T) {
		svc := new(MockTitleService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(f repository.TitleFilter) bool {
			return f.Category == "books" && f.Genre == "drama" && f.Name == "ham" && f.Year != nil && *f.Year == 1603
		}), 1, 10).Return(dto.NewPage([]dto.TitleResponse{}, 0, 1, 10), nil)

		w := performRequest(setupCatalogRouter(policy.Anonymous(), nil, svc, nil), http.MethodGet,
			"/api/v1/titles?category=books&genre=drama&name=ham&year=1603", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad year filter", func(t *testing.T) {
		svc := new(MockTitleService)

		w := performRequest(setupCatalogRouter(policy.Anonymous(), nil, svc, nil), http.MethodGet, "/api/v1/titles?year=old", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "year")
	})

	t.Run("create", func(t *testing.T) {
		svc := new(MockTitleService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(req dto.TitleRequest) bool {
			return req.Name == "Dune" && *req.Year == 1965 &&
				req.Category.Set && *req.Category.Value == "books" &&
				req.Genre != nil && len(*req.Genre) == 1
		})).Return(dto.TitleResponse{ID: 1, Name: "Dune", Year: 1965}, nil)

		w := performRequest(setupCatalogRouter(admin, nil, svc, nil), http.MethodPost, "/api/v1/titles",
			`{"name":"Dune","year":1965,"category":"books","genre":["sci-fi"]}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("replace without year", func(t *testing.T) {
		svc := new(MockTitleService)

		w := performRequest(setupCatalogRouter(admin, nil, svc, nil), http.MethodPut, "/api/v1/titles/1",
			`{"name":"Dune"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "year")
	})

	t.Run("patch clears category", func(t *testing.T) {
		svc := new(MockTitleService)
		svc.On("Patch", mock.Anything, int64(1), mock.MatchedBy(func(req dto.TitlePatchRequest) bool {
			return req.Category.Set && req.Category.Value == nil && req.Genre == nil && req.Name == nil
		})).Return(dto.TitleResponse{ID: 1}, nil)

		w := performRequest(setupCatalogRouter(admin, nil, svc, nil), http.MethodPatch, "/api/v1/titles/1",
			`{"category":null}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		svc := new(MockTitleService)
		svc.On("Delete", mock.Anything, int64(1)).Return(nil)

		w := performRequest(setupCatalogRouter(admin, nil, svc, nil), http.MethodDelete, "/api/v1/titles/1", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestReviewHandler(t *testing.T) {
	t.Run("create uses the actor from context", func(t *testing.T) {
		svc := new(MockReviewService)
		score := 9
		svc.On("Create", mock.Anything, alice, int64(3), dto.CreateReviewRequest{Text: "great", Score: &score}).
			Return(dto.ReviewResponse{ID: 1, Author: "alice", Score: 9}, nil)

		w := performRequest(setupCatalogRouter(alice, nil, nil, svc), http.MethodPost, "/api/v1/titles/3/reviews",
			`{"text":"great","score":9,"author":"root"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp dto.ReviewResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.Author)
		svc.AssertExpectations(t)
	})

	t.Run("score out of range", func(t *testing.T) {
		svc := new(MockReviewService)

		w := performRequest(setupCatalogRouter(alice, nil, nil, svc), http.MethodPost, "/api/v1/titles/3/reviews",
			`{"text":"meh","score":11}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "score")
	})

	t.Run("second review conflicts", func(t *testing.T) {
		svc := new(MockReviewService)
		svc.On("Create", mock.Anything, alice, int64(3), mock.Anything).
			Return(dto.ReviewResponse{}, apperror.Conflict(map[string][]string{"title": {"you have already reviewed this title"}}))

		w := performRequest(setupCatalogRouter(alice, nil, nil, svc), http.MethodPost, "/api/v1/titles/3/reviews",
			`{"text":"again","score":5}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "title")
	})

	t.Run("bad review id", func(t *testing.T) {
		svc := new(MockReviewService)

		w := performRequest(setupCatalogRouter(alice, nil, nil, svc), http.MethodPatch, "/api/v1/titles/3/reviews/0",
			`{"text":"edit"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		svc := new(MockReviewService)
		svc.On("Delete", mock.Anything, alice, int64(3), int64(4)).
			Return(apperror.Forbidden("only the author or a moderator can change this"))

		w := performRequest(setupCatalogRouter(alice, nil, nil, svc), http.MethodDelete, "/api/v1/titles/3/reviews/4", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("page size is capped", func(t *testing.T) {
		svc := new(MockReviewService)
		svc.On("List", mock.Anything, int64(3), 1, 100).Return(dto.NewPage([]dto.ReviewResponse{}, 0, 1, 100), nil)

		w := performRequest(setupCatalogRouter(policy.Anonymous(), nil, nil, svc), http.MethodGet, "/api/v1/titles/3/reviews?page_size=5000", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}
