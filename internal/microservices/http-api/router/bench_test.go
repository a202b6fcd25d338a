package router_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/router"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		PageSize:       10,
		JWTSecret:      "router-test-secret-that-is-long-enough",
		AccessTokenTTL: time.Hour,
	}
}

// newEngine builds the full router over a fresh in-memory database.
func newEngine(tb testing.TB, cfg *config.Config) (*gin.Engine, *gorm.DB, *mailer.Outbox) {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite://:memory:")
	require.NoError(tb, err)
	require.NoError(tb, database.Migrate(db))
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	authz, err := policy.New(policy.Config{})
	require.NoError(tb, err)

	outbox := &mailer.Outbox{}
	engine, err := router.New(router.Deps{
		Config:   cfg,
		DB:       db,
		Policy:   authz,
		Mailer:   outbox,
		Cooldown: service.NewRedisCooldown(nil, 0),
	})
	require.NoError(tb, err)
	return engine, db, outbox
}

// seedCatalog stores n titles with one review each.
func seedCatalog(tb testing.TB, db *gorm.DB, n int) {
	tb.Helper()
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	titles := repository.NewTitleRepository(db)
	reviews := repository.NewReviewRepository(db)

	author := &models.User{Username: "seed", Email: "seed@example.com", Role: models.RoleUser}
	require.NoError(tb, users.Create(ctx, author))
	for i := 0; i < n; i++ {
		title := &models.Title{Name: fmt.Sprintf("Title %03d", i), Year: 1900 + i%120}
		require.NoError(tb, titles.Create(ctx, title, nil))
		require.NoError(tb, reviews.Create(ctx, &models.Review{
			TitleID:  title.ID,
			AuthorID: author.ID,
			Text:     "seeded",
			Score:    1 + i%10,
		}))
	}
}

func get(h http.Handler, path string) int {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

// TestConcurrentReaders has many anonymous clients read the catalog at once.
func TestConcurrentReaders(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	engine, db, _ := newEngine(t, testConfig())
	seedCatalog(t, db, 50)

	const clients, requestsEach = 50, 10
	var ok, failed atomic.Int64
	var wg sync.WaitGroup
	for c := 0; c < clients; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			for r := 0; r < requestsEach; r++ {
				path := fmt.Sprintf("/api/v1/titles?page=%d", 1+(c+r)%5)
				if r%2 == 1 {
					path = fmt.Sprintf("/api/v1/titles/%d/reviews", 1+(c*requestsEach+r)%50)
				}
				if get(engine, path) == http.StatusOK {
					ok.Add(1)
				} else {
					failed.Add(1)
				}
			}
		}(c)
	}
	wg.Wait()

	assert.Equal(t, int64(clients*requestsEach), ok.Load())
	assert.Zero(t, failed.Load())
}

func BenchmarkListTitles(b *testing.B) {
	engine, db, _ := newEngine(b, testConfig())
	seedCatalog(b, db, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if code := get(engine, "/api/v1/titles?page=2"); code != http.StatusOK {
			b.Fatalf("status %d", code)
		}
	}
}

func BenchmarkGetTitle(b *testing.B) {
	engine, db, _ := newEngine(b, testConfig())
	seedCatalog(b, db, 10)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if code := get(engine, "/api/v1/titles/5"); code != http.StatusOK {
				b.Errorf("status %d", code)
				return
			}
		}
	})
}
