package domain

import "time"

// Message is one ingested inbox item. GmailMessageID is the idempotency key:
// re-ingesting the same provider id updates the existing row.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	ApplicationID  string    `json:"application_id" gorm:"index;not null"`
	ContactID      string    `json:"contact_id" gorm:"index;not null"`
	GmailMessageID string    `json:"gmail_message_id" gorm:"uniqueIndex;not null"`
	GmailThreadID  string    `json:"gmail_thread_id" gorm:"index"`
	FromAddr       string    `json:"from_addr"`
	ToAddr         string    `json:"to_addr"`
	Subject        string    `json:"subject"`
	Snippet        string    `json:"snippet" gorm:"type:text"`
	Classification string    `json:"classification" gorm:"index"`
	InternalTS     time.Time `json:"internal_ts" gorm:"index"`
	Metadata       Metadata  `json:"metadata" gorm:"type:jsonb"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Application *Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
	Contact     *Contact     `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
}

// ClassificationConfidence exposes the metadata confidence for serialization.
func (m *Message) ClassificationConfidence() *float64 {
	if cm, ok := m.Metadata.Classification(); ok {
		return cm.Confidence
	}
	return nil
}

// ClassificationSource exposes the metadata source for serialization.
func (m *Message) ClassificationSource() string {
	if cm, ok := m.Metadata.Classification(); ok {
		return cm.Source
	}
	return ""
}
