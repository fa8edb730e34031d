package domain

import "time"

// ApplicationEvent is the append-only audit trail for an application. Rows are
// written once per ingested message and never updated or deleted.
type ApplicationEvent struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	ApplicationID string    `json:"application_id" gorm:"index;not null"`
	EventType     string    `json:"event_type"`
	Payload       Metadata  `json:"payload" gorm:"type:jsonb"`
	OccurredAt    time.Time `json:"occurred_at"`
	CreatedAt     time.Time `json:"created_at"`
}

const EventTypeEmailIngested = "email_ingested"
