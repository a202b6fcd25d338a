package dto

import "yamdb/internal/microservices/http-api/models"

// UserResponse is the public shape of a user; the confirmation code never leaves storage.
type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// CreateUserRequest is used by admins; the new user has no confirmation code yet.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

func (r CreateUserRequest) ToModel() *models.User {
	role := r.Role
	if role == "" {
		role = models.RoleUser
	}
	return &models.User{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      role,
	}
}

// UpdateProfileRequest is a partial update of the requester's own profile.
// It has no role field; the handler rejects bodies that carry one.
type UpdateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,username"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

func (r UpdateProfileRequest) ApplyTo(u *models.User) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.FirstName != nil {
		u.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		u.LastName = *r.LastName
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
}

// UpdateUserRequest is an admin's partial update, which may change the role.
type UpdateUserRequest struct {
	UpdateProfileRequest
	Role *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

func (r UpdateUserRequest) ApplyTo(u *models.User) {
	r.UpdateProfileRequest.ApplyTo(u)
	if r.Role != nil {
		u.Role = *r.Role
	}
}
