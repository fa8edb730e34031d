package domain

import "time"

// Application is the unit of business state: one (user, company, role_title)
// thread. The triple is enforced unique at the storage layer so concurrent
// ingestion cannot create duplicate threads.
type Application struct {
	ID                 string            `json:"id" gorm:"primaryKey"`
	UserID             string            `json:"user_id" gorm:"uniqueIndex:idx_app_dedupe;not null"`
	CompanyID          string            `json:"company_id" gorm:"uniqueIndex:idx_app_dedupe;not null"`
	RoleTitle          string            `json:"role_title" gorm:"uniqueIndex:idx_app_dedupe"`
	Status             ApplicationStatus `json:"status" gorm:"default:applied"`
	AppliedAt          *time.Time        `json:"applied_at,omitempty"`
	LastEmailAt        *time.Time        `json:"last_email_at,omitempty"`
	LastStatusChangeAt *time.Time        `json:"last_status_change_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}
