package command

import (
	"context"
	"testing"

	"yamdb/database"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsers(t *testing.T) repository.UserRepository {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewUserRepository(db)
}

func TestCreateSuperuser(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)

	user, err := createSuperuser(ctx, users, "root", " Root@Example.com")
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	assert.Equal(t, "root@example.com", user.Email)
	assert.Equal(t, policy.LevelAdmin, policy.ActorFor(user).Level)

	_, err = createSuperuser(ctx, users, "root", "other@example.com")
	assert.Error(t, err)

	_, err = createSuperuser(ctx, users, "me", "me@example.com")
	assert.Error(t, err)

	_, err = createSuperuser(ctx, users, "nomail", "not-an-email")
	assert.Error(t, err)
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	require.NoError(t, users.Create(ctx, &models.User{Username: "alice", Email: "alice@example.com"}))

	user, err := setRole(ctx, users, "alice", models.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, user.Role)

	stored, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, stored.Role)

	_, err = setRole(ctx, users, "alice", "owner")
	assert.Error(t, err)

	_, err = setRole(ctx, users, "nobody", models.RoleAdmin)
	assert.Error(t, err)
}
