package repository

import (
	"errors"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository persists users, their provider tokens and the sync watermark.
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByID(id string) (*authdomain.User, error)
	FindByEmail(email string) (*authdomain.User, error)
	Update(user *authdomain.User) error
	UpdateTokens(userID, accessToken string, expiresAt time.Time) error
	UpdateWatermark(userID string, syncedAt time.Time) error
	FindSyncable() ([]*authdomain.User, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.Save(user).Error
}

func (r *userRepository) UpdateTokens(userID, accessToken string, expiresAt time.Time) error {
	return r.db.Model(&authdomain.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"google_access_token": accessToken,
			"token_expires_at":    expiresAt,
			"updated_at":          time.Now(),
		}).Error
}

func (r *userRepository) UpdateWatermark(userID string, syncedAt time.Time) error {
	return r.db.Model(&authdomain.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_synced_at": syncedAt,
			"updated_at":     time.Now(),
		}).Error
}

// FindSyncable returns every user holding a refresh token, i.e. everyone the
// scheduler should poll.
func (r *userRepository) FindSyncable() ([]*authdomain.User, error) {
	var users []*authdomain.User
	err := r.db.Where("google_refresh_token <> ''").Find(&users).Error
	return users, err
}
