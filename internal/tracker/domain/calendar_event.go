package domain

import "time"

// CalendarEvent records an externally created calendar entry for an
// application (interview or online assessment slot parsed from an email).
type CalendarEvent struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	ApplicationID string    `json:"application_id" gorm:"index;not null"`
	GoogleEventID string    `json:"google_event_id"`
	EventType     string    `json:"event_type"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Location      string    `json:"location,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
