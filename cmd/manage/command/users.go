package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yamdb/database"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/validator"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	suUsername string
	suEmail    string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser with the admin role",
	Long: `Create a superuser. The account has no confirmation code yet; obtain one
through POST /api/v1/auth/signup with the same username and email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeFn, err := openDB()
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := createSuperuser(cmd.Context(), repository.NewUserRepository(db), suUsername, suEmail)
		if err != nil {
			return err
		}
		color.Green("✓ superuser %s <%s> created", user.Username, user.Email)
		return nil
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "setrole [username] [user|moderator|admin]",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeFn, err := openDB()
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := setRole(cmd.Context(), repository.NewUserRepository(db), args[0], args[1])
		if err != nil {
			return err
		}
		color.Green("✓ %s is now %s", user.Username, user.Role)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&suUsername, "username", "", "username of the new superuser")
	createSuperuserCmd.Flags().StringVar(&suEmail, "email", "", "email of the new superuser")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(createSuperuserCmd, setRoleCmd)
}

func createSuperuser(ctx context.Context, users repository.UserRepository, username, email string) (*models.User, error) {
	if err := validator.ValidateUsername(username); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
	}
	if err := users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("a user with username %q or email %q already exists", username, email)
		}
		return nil, err
	}
	return user, nil
}

func setRole(ctx context.Context, users repository.UserRepository, username, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q, expected user, moderator or admin", role)
	}

	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q not found", username)
		}
		return nil, err
	}
	user.Role = role
	if err := users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
