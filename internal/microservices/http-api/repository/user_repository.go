package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations.
// Lookups return gorm.ErrRecordNotFound (possibly wrapped) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// Update writes the profile and role columns only. The confirmation
	// code and is_confirmed change through SetConfirmationCode and
	// ConsumeConfirmationCode.
	Update(ctx context.Context, user *models.User) error
	SetConfirmationCode(ctx context.Context, id, codeHash string) error
	Delete(ctx context.Context, id string) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByUsernameForUpdate locks the row until the surrounding transaction ends.
	FindByUsernameForUpdate(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	// ConsumeConfirmationCode clears the stored code only if it still equals
	// codeHash, so a code can be redeemed at most once.
	ConsumeConfirmationCode(ctx context.Context, id, codeHash string) (bool, error)
	Transaction(ctx context.Context, fn func(repo UserRepository) error) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

var profileColumns = []string{
	"username", "email", "first_name", "last_name", "bio", "role", "is_superuser", "updated_at",
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Select(profileColumns).Updates(user)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) SetConfirmationCode(ctx context.Context, id, codeHash string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("confirmation_code", codeHash)
	if res.Error != nil {
		return fmt.Errorf("set confirmation code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the user together with their reviews and every comment
// that would otherwise point at a removed row.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&models.Review{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("author_id = ? OR review_id IN (?)", id, authored).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete user comments: %w", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete user reviews: %w", err)
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on error so callers never mistake a zero-value user for a match
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsernameForUpdate(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.User{})
		if search != "" {
			q = q.Where(`LOWER(username) LIKE ? ESCAPE '\'`, containsPattern(search))
		}
		return q
	}

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	if err := query().Order("username asc").Limit(pageSize).Offset(offset(page, pageSize)).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) ConsumeConfirmationCode(ctx context.Context, id, codeHash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND confirmation_code = ?", id, codeHash).
		Updates(map[string]any{"confirmation_code": "", "is_confirmed": true})
	if res.Error != nil {
		return false, fmt.Errorf("consume confirmation code: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) Transaction(ctx context.Context, fn func(repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userRepository{db: tx})
	})
}
