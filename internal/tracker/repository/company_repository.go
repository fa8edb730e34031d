package repository

import (
	"errors"
	"time"

	"jobtrail-backend/internal/tracker/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// FindOrCreate returns the company for a domain, creating it on first
// sighting. Derived fields are never rewritten on a re-sighting; the unique
// index on domain resolves concurrent creation races.
func (r *companyRepository) FindOrCreate(companyDomain, name string) (*domain.Company, error) {
	var company domain.Company
	err := r.db.Where("domain = ?", companyDomain).First(&company).Error
	if err == nil {
		return &company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	company = domain.Company{
		ID:        uuid.New().String(),
		Name:      name,
		Domain:    companyDomain,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.Create(&company).Error; err != nil {
		// Lost the race to a concurrent upsert; the row exists now.
		var existing domain.Company
		if findErr := r.db.Where("domain = ?", companyDomain).First(&existing).Error; findErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &company, nil
}
