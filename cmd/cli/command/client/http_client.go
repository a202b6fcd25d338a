package client

// http_client.go talks to the yamdb REST API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/pkg/response"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, ", "))
}

// TitleQuery holds the optional title list filters.
type TitleQuery struct {
	Category string
	Genre    string
	Name     string
	Year     int
	Page     int
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) Authenticated() bool {
	return c.token != ""
}

// do sends body as JSON and decodes a 2xx answer into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody response.ErrorBody
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Fields = errBody.Fields
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pageQuery(page int) string {
	if page < 1 {
		return ""
	}
	return "?page=" + strconv.Itoa(page)
}

// Auth

func (c *HTTPClient) Signup(ctx context.Context, username, email string) (*dto.SignupResponse, error) {
	var result dto.SignupResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", dto.SignupRequest{Username: username, Email: email}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Token(ctx context.Context, username, code string) (string, error) {
	var result dto.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/token", dto.TokenRequest{Username: username, ConfirmationCode: code}, &result)
	if err != nil {
		return "", err
	}
	return result.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var result dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Catalog

func (c *HTTPClient) ListTitles(ctx context.Context, q TitleQuery) (*dto.Page[dto.TitleResponse], error) {
	values := url.Values{}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Genre != "" {
		values.Set("genre", q.Genre)
	}
	if q.Name != "" {
		values.Set("name", q.Name)
	}
	if q.Year != 0 {
		values.Set("year", strconv.Itoa(q.Year))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	path := "/titles"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var result dto.Page[dto.TitleResponse]
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetTitle(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	var result dto.TitleResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/titles/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTaxonomy lists "genres" or "categories".
func (c *HTTPClient) ListTaxonomy(ctx context.Context, kind, search string) (*dto.Page[dto.TaxonomyResponse], error) {
	path := "/" + kind
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var result dto.Page[dto.TaxonomyResponse]
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reviews

func (c *HTTPClient) ListReviews(ctx context.Context, titleID int64, page int) (*dto.Page[dto.ReviewResponse], error) {
	var result dto.Page[dto.ReviewResponse]
	path := fmt.Sprintf("/titles/%d/reviews%s", titleID, pageQuery(page))
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateReview(ctx context.Context, titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var result dto.ReviewResponse
	req := dto.CreateReviewRequest{Text: text, Score: &score}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/titles/%d/reviews", titleID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, titleID, reviewID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/titles/%d/reviews/%d", titleID, reviewID), nil, nil)
}

// Comments

func (c *HTTPClient) ListComments(ctx context.Context, titleID, reviewID int64, page int) (*dto.Page[dto.CommentResponse], error) {
	var result dto.Page[dto.CommentResponse]
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments%s", titleID, reviewID, pageQuery(page))
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	var result dto.CommentResponse
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments", titleID, reviewID)
	if err := c.do(ctx, http.MethodPost, path, dto.CommentRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteComment(ctx context.Context, titleID, reviewID, commentID int64) error {
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments/%d", titleID, reviewID, commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
