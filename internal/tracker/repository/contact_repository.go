package repository

import (
	"errors"
	"time"

	"jobtrail-backend/internal/tracker/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) FindOrCreate(email, name, companyID string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.Where("email = ?", email).First(&contact).Error
	if err == nil {
		return &contact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	contact = domain.Contact{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.Create(&contact).Error; err != nil {
		var existing domain.Contact
		if findErr := r.db.Where("email = ?", email).First(&existing).Error; findErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &contact, nil
}
