package domain

import "time"

// Company is deduped by domain; name is best-effort derived from the sender
// address on first sighting and never rewritten afterwards.
type Company struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
