package repository

import (
	"time"

	"jobtrail-backend/internal/tracker/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(event *domain.ApplicationEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()
	return r.db.Create(event).Error
}

func (r *eventRepository) ListByApplication(applicationID string) ([]*domain.ApplicationEvent, error) {
	var events []*domain.ApplicationEvent
	err := r.db.Where("application_id = ?", applicationID).
		Order("occurred_at ASC").Find(&events).Error
	return events, err
}

type calendarEventRepository struct {
	db *gorm.DB
}

func NewCalendarEventRepository(db *gorm.DB) CalendarEventRepository {
	return &calendarEventRepository{db: db}
}

func (r *calendarEventRepository) Create(event *domain.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()
	return r.db.Create(event).Error
}
