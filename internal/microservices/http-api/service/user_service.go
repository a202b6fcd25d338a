package service

import (
	"context"
	"errors"

	"yamdb/database"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/pkg/apperror"
	"yamdb/pkg/sanitize"
	"yamdb/pkg/validator"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type UserService interface {
	Me(ctx context.Context, actor policy.Actor) (dto.UserResponse, error)
	// UpdateMe patches the actor's own profile. The request type has no
	// role, so a profile update can never change authority.
	UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (dto.UserResponse, error)

	List(ctx context.Context, search string, page, pageSize int) (dto.Page[dto.UserResponse], error)
	Create(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error)
	Get(ctx context.Context, username string) (dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Me(ctx context.Context, actor policy.Actor) (dto.UserResponse, error) {
	if !actor.Authenticated() {
		return dto.UserResponse{}, apperror.Unauthorized("")
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return dto.UserResponse{}, notFound(err, "user")
	}
	return dto.ToUserResponse(u), nil
}

func (s *userService) UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
	if !actor.Authenticated() {
		return dto.UserResponse{}, apperror.Unauthorized("")
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return dto.UserResponse{}, notFound(err, "user")
	}
	req.ApplyTo(u)
	if err := s.save(ctx, u); err != nil {
		return dto.UserResponse{}, err
	}
	return dto.ToUserResponse(u), nil
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (dto.Page[dto.UserResponse], error) {
	users, total, err := s.users.List(ctx, search, page, pageSize)
	if err != nil {
		return dto.Page[dto.UserResponse]{}, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.ToUserResponse(&users[i]))
	}
	return dto.NewPage(out, total, page, pageSize), nil
}

// Create adds a user without a confirmation code. The user gets one by
// signing up with the same username and email.
func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error) {
	u := req.ToModel()
	if err := s.normalize(u); err != nil {
		return dto.UserResponse{}, err
	}
	if err := s.checkUnique(ctx, u); err != nil {
		return dto.UserResponse{}, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return dto.UserResponse{}, apperror.Conflict(map[string][]string{
				"non_field_errors": {"a user with this username or email already exists"},
			})
		}
		return dto.UserResponse{}, err
	}
	log.Info().Str("username", u.Username).Str("role", u.Role).Msg("user created by admin")
	return dto.ToUserResponse(u), nil
}

func (s *userService) Get(ctx context.Context, username string) (dto.UserResponse, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return dto.UserResponse{}, notFound(err, "user")
	}
	return dto.ToUserResponse(u), nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserRequest) (dto.UserResponse, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return dto.UserResponse{}, notFound(err, "user")
	}
	previousRole := u.Role
	req.ApplyTo(u)
	if err := s.save(ctx, u); err != nil {
		return dto.UserResponse{}, err
	}
	if u.Role != previousRole {
		log.Info().Str("username", u.Username).Str("from", previousRole).Str("to", u.Role).Msg("role changed")
	}
	return dto.ToUserResponse(u), nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return notFound(err, "user")
	}
	return notFound(s.users.Delete(ctx, u.ID), "user")
}

func (s *userService) save(ctx context.Context, u *models.User) error {
	if err := s.normalize(u); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, u); err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.Conflict(map[string][]string{
				"non_field_errors": {"a user with this username or email already exists"},
			})
		}
		return err
	}
	return nil
}

// normalize applies the same username rule as signup and cleans free text.
func (s *userService) normalize(u *models.User) error {
	if err := validator.ValidateUsername(u.Username); err != nil {
		return apperror.Validation("username", err.Error())
	}
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" {
		return apperror.Validation("email", "this field may not be blank")
	}
	if !models.ValidRole(u.Role) {
		return apperror.Validation("role", "unknown role")
	}
	u.FirstName = sanitize.Text(u.FirstName)
	u.LastName = sanitize.Text(u.LastName)
	u.Bio = sanitize.Text(u.Bio)
	return nil
}

// checkUnique reports every field u shares with a different user.
func (s *userService) checkUnique(ctx context.Context, u *models.User) error {
	fields := map[string][]string{}

	other, err := s.users.FindByUsername(ctx, u.Username)
	switch {
	case err == nil && other.ID != u.ID:
		fields["username"] = []string{msgUsernameTaken}
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	other, err = s.users.FindByEmail(ctx, u.Email)
	switch {
	case err == nil && other.ID != u.ID:
		fields["email"] = []string{msgEmailTaken}
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if len(fields) > 0 {
		return apperror.Conflict(fields)
	}
	return nil
}
