package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/shared"
	"yamdb/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	actors map[string]policy.Actor
}

func (f fakeAuth) Signup(context.Context, string, string) (*models.User, error) { return nil, nil }

func (f fakeAuth) RedeemToken(context.Context, string, string) (string, error) { return "", nil }

func (f fakeAuth) ValidateToken(string) (*shared.AuthClaims, error) { return nil, nil }

func (f fakeAuth) ResolveActor(_ context.Context, token string) (policy.Actor, error) {
	if a, ok := f.actors[token]; ok {
		return a, nil
	}
	return policy.Actor{}, apperror.Unauthorized("invalid token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	a := ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{"username": a.Username, "level": a.Level.String()})
}

func TestAuthenticate(t *testing.T) {
	alice := policy.Actor{UserID: "u1", Username: "alice", Level: policy.LevelUser}
	r := gin.New()
	r.Use(Authenticate(fakeAuth{actors: map[string]policy.Actor{"good": alice}}))
	r.GET("/whoami", whoami)

	tests := []struct {
		name   string
		header string
		status int
		level  string
	}{
		{"no header is anonymous", "", http.StatusOK, "anonymous"},
		{"valid bearer", "Bearer good", http.StatusOK, "user"},
		{"scheme is case-insensitive", "bearer good", http.StatusOK, "user"},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"missing token", "Bearer", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.level != "" {
				assert.Contains(t, w.Body.String(), `"level":"`+tt.level+`"`)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	p, err := policy.New(policy.Config{})
	require.NoError(t, err)

	build := func(actor policy.Actor) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set(actorKey, actor); c.Next() })
		g := r.Group("/titles", Authorize(p, policy.ResourceCatalog))
		g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	do := func(r *gin.Engine, method string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/titles", nil))
		return w.Code
	}

	anon := build(policy.Anonymous())
	assert.Equal(t, http.StatusOK, do(anon, http.MethodGet))
	assert.Equal(t, http.StatusUnauthorized, do(anon, http.MethodPost))

	mod := build(policy.Actor{UserID: "m", Level: policy.LevelModerator})
	assert.Equal(t, http.StatusForbidden, do(mod, http.MethodPost))

	adm := build(policy.Actor{UserID: "a", Level: policy.LevelAdmin})
	assert.Equal(t, http.StatusCreated, do(adm, http.MethodPost))
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "burst exhausted")
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per ip")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "one token refilled")
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("10.0.0.1"))
	}
}

func TestRateLimiter_EvictsIdle(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	for i := 0; i <= 1024; i++ {
		rl.Allow(string(rune('a'+i%26)) + time.Duration(i).String())
	}
	require.Greater(t, len(rl.limiters), 1024)

	now = now.Add(2 * time.Hour)
	rl.Allow("fresh")
	assert.Len(t, rl.limiters, 1)
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/signup", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/signup", nil))
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
