package service

import (
	"context"
	"strings"
	"testing"

	"yamdb/database"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx context.Context
	db  *gorm.DB

	users      repository.UserRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	titles     repository.TitleRepository
	reviews    repository.ReviewRepository
	comments   repository.CommentRepository
	outbox     *mailer.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &fixture{
		ctx:        context.Background(),
		db:         db,
		users:      repository.NewUserRepository(db),
		categories: repository.NewCategoryRepository(db),
		genres:     repository.NewGenreRepository(db),
		titles:     repository.NewTitleRepository(db),
		reviews:    repository.NewReviewRepository(db),
		comments:   repository.NewCommentRepository(db),
		outbox:     &mailer.Outbox{},
	}
}

func (f *fixture) user(t *testing.T, name, role string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Role: role}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) actor(t *testing.T, name, role string) policy.Actor {
	t.Helper()
	return policy.ActorFor(f.user(t, name, role))
}

func (f *fixture) title(t *testing.T, name string) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: 2000}
	require.NoError(t, f.titles.Create(f.ctx, title, nil))
	return title
}

// codeFrom pulls the confirmation code out of the last email sent to addr.
func codeFrom(t *testing.T, outbox *mailer.Outbox, addr string) string {
	t.Helper()
	msg, ok := outbox.Last(addr)
	require.True(t, ok, "no email sent to %s", addr)

	lines := strings.Split(msg.Body, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "confirmation code is:") {
			continue
		}
		for _, next := range lines[i+1:] {
			if code := strings.TrimSpace(next); code != "" {
				return code
			}
		}
	}
	t.Fatalf("no confirmation code in email to %s", addr)
	return ""
}
