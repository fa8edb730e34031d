package repository

import (
	"jobtrail-backend/internal/tracker/domain"
)

// CompanyRepository dedupes companies on domain.
type CompanyRepository interface {
	FindOrCreate(companyDomain, name string) (*domain.Company, error)
}

// ContactRepository dedupes contacts on email.
type ContactRepository interface {
	FindOrCreate(email, name, companyID string) (*domain.Contact, error)
}

// CompanyReplyRate is one leaderboard row: how often a domain replies.
type CompanyReplyRate struct {
	Domain  string  `json:"domain"`
	Replies int     `json:"replies"`
	Total   int     `json:"total"`
	Rate    float64 `json:"rate"`
}

// ApplicationRepository dedupes applications on (user, company, role_title).
type ApplicationRepository interface {
	FindOrCreate(userID, companyID, roleTitle string) (*domain.Application, error)
	Update(app *domain.Application) error
	FindByIDForUser(userID, id string) (*domain.Application, error)
	ListByUser(userID string, status string, limit, offset int) ([]*domain.Application, error)
	CountByStatus(userID string) (map[domain.ApplicationStatus]int64, error)
	Leaderboard(userID string, top int) ([]CompanyReplyRate, error)
}

// MessageRepository dedupes messages on the provider message id.
type MessageRepository interface {
	FindByGmailID(gmailMessageID string) (*domain.Message, error)
	Create(msg *domain.Message) error
	Update(msg *domain.Message) error
	UpdateMetadata(id string, md domain.Metadata) error
	FindByIDForUser(userID, id string) (*domain.Message, error)
	ListByUser(userID, classification string, limit, offset int) ([]*domain.Message, error)
	ListByApplication(applicationID string) ([]*domain.Message, error)
}

// EventRepository is append-only: the audit trail is never updated or
// deleted.
type EventRepository interface {
	Append(event *domain.ApplicationEvent) error
	ListByApplication(applicationID string) ([]*domain.ApplicationEvent, error)
}

// CalendarEventRepository records externally created calendar entries.
type CalendarEventRepository interface {
	Create(event *domain.CalendarEvent) error
}
