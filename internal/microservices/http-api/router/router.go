// Package router assembles the HTTP API: middleware, policy groups and handlers.
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/logging"
	"yamdb/internal/mailer"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/pkg/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Policy   *policy.Policy
	Mailer   mailer.Sender
	Cooldown service.Cooldown
}

// New builds the gin engine with every route under /api/v1.
func New(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		if err := validator.Register(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	genreRepo := repository.NewGenreRepository(deps.DB)
	titleRepo := repository.NewTitleRepository(deps.DB)
	reviewRepo := repository.NewReviewRepository(deps.DB)
	commentRepo := repository.NewCommentRepository(deps.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, deps.Mailer, deps.Cooldown, cfg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo)
	reviewService := service.NewReviewService(titleRepo, reviewRepo)
	commentService := service.NewCommentService(reviewRepo, commentRepo)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, cfg.PageSize)
	categoryHandler := handler.NewTaxonomyHandler(categoryService, cfg.PageSize)
	genreHandler := handler.NewTaxonomyHandler(genreService, cfg.PageSize)
	titleHandler := handler.NewTitleHandler(titleService, cfg.PageSize)
	reviewHandler := handler.NewReviewHandler(reviewService, cfg.PageSize)
	commentHandler := handler.NewCommentHandler(commentService, cfg.PageSize)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinLogger())
	if cfg.PrometheusEnabled {
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler())
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", health(deps.DB))

	api := r.Group("/api/v1")
	api.Use(middleware.Authenticate(authService))

	p := deps.Policy
	authGroup := api.Group("/auth", middleware.Authorize(p, policy.ResourceAuth))
	if cfg.AuthRateLimit > 0 {
		authGroup.Use(middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst).Middleware())
	}
	authHandler.RegisterRoutes(authGroup)

	userHandler.RegisterMeRoutes(api.Group("/users/me", middleware.Authorize(p, policy.ResourceMe)))
	userHandler.RegisterRoutes(api.Group("/users", middleware.Authorize(p, policy.ResourceUsers)))

	categoryHandler.RegisterRoutes(api.Group("/categories", middleware.Authorize(p, policy.ResourceCatalog)))
	genreHandler.RegisterRoutes(api.Group("/genres", middleware.Authorize(p, policy.ResourceCatalog)))
	titleHandler.RegisterRoutes(api.Group("/titles", middleware.Authorize(p, policy.ResourceCatalog)))

	reviewHandler.RegisterRoutes(api.Group("/titles/:title_id/reviews", middleware.Authorize(p, policy.ResourceReview)))
	commentHandler.RegisterRoutes(api.Group("/titles/:title_id/reviews/:review_id/comments", middleware.Authorize(p, policy.ResourceComment)))

	return r, nil
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
