package domain

import "time"

// Contact is deduped by email address and owned by exactly one company.
type Contact struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CompanyID string    `json:"company_id" gorm:"index;not null"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
