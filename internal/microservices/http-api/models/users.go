package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether r is one of the stored role values.
func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName   string `gorm:"size:150" json:"first_name"`
	LastName    string `gorm:"size:150" json:"last_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	Role        string `gorm:"size:16;default:'user';not null" json:"role"`
	IsSuperuser bool   `gorm:"not null;default:false" json:"is_superuser"`
	IsConfirmed bool   `gorm:"not null;default:false" json:"is_confirmed"`
	// bcrypt hash of the outstanding confirmation code, empty once redeemed
	ConfirmationCode string    `gorm:"size:128" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}
