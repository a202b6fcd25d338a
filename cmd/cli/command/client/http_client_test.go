package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Token(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/token", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req dto.TokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "123456", req.ConfirmationCode)

		_ = json.NewEncoder(w).Encode(dto.TokenResponse{Token: "jwt"})
	}))
	defer srv.Close()

	token, err := NewHTTPClient(srv.URL+"/api/v1/").Token(context.Background(), "alice", "123456")
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
}

func TestHTTPClient_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "/titles/3/reviews", r.URL.Path)

		var req dto.CreateReviewRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Score)
		assert.Equal(t, 9, *req.Score)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.ReviewResponse{ID: 1, Author: "alice", Score: 9})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.SetToken("jwt")
	review, err := c.CreateReview(context.Background(), 3, "great", 9)
	require.NoError(t, err)
	assert.Equal(t, "alice", review.Author)
}

func TestHTTPClient_ListTitlesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "books", q.Get("category"))
		assert.Equal(t, "the ring", q.Get("name"))
		assert.Equal(t, "1954", q.Get("year"))
		assert.Empty(t, q.Get("genre"))

		_ = json.NewEncoder(w).Encode(dto.NewPage([]dto.TitleResponse{{ID: 1, Name: "The Fellowship of the Ring"}}, 1, 1, 10))
	}))
	defer srv.Close()

	page, err := NewHTTPClient(srv.URL).ListTitles(context.Background(), TitleQuery{Category: "books", Name: "the ring", Year: 1954})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(1), page.Count)
}

func TestHTTPClient_DecodesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(response.ErrorBody{
			Error:  "resource already exists",
			Fields: map[string][]string{"title": {"you have already reviewed this title"}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.SetToken("jwt")
	_, err := c.CreateReview(context.Background(), 3, "again", 5)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, err.Error(), "you have already reviewed this title")
}

func TestHTTPClient_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/titles/1/reviews/2/comments/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPClient(srv.URL).DeleteComment(context.Background(), 1, 2, 3))
}

func TestHTTPClient_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
