package repositories

import (
	"errors"

	"github.com/melodyground/backend/internal/models"
	"github.com/melodyground/backend/internal/types"
	"gorm.io/gorm"
)

// UserRepository is the credential store. Users are created at registration
// and never updated or deleted through this interface.
type UserRepository struct {
	DB *gorm.DB
}

// UsernameExists reports whether a user with the given username exists
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// EmailExists reports whether a user with the given email exists
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Create persists a new user. The unique indexes on username and email are
// the real uniqueness guarantee; two registrations can race past the
// existence checks, so a duplicate-key failure here is translated back into
// the same conflict outcome the pre-check would have produced.
func (r *UserRepository) Create(user *models.User) (*models.User, error) {
	if err := r.DB.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			taken, probeErr := r.UsernameExists(user.Username)
			if probeErr == nil && taken {
				return nil, types.ErrDuplicateUsername
			}
			return nil, types.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// FindByUsername returns the user with the given username, or
// gorm.ErrRecordNotFound.
func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
