package domain

import "time"

// User owns the Google token pair and the sync watermark. A nil LastSyncedAt
// means the inbox has never been synced; the orchestrator then uses a bounded
// default lookback instead of backfilling the whole mailbox.
type User struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	Email              string     `json:"email" gorm:"uniqueIndex;not null"`
	GoogleAccessToken  string     `json:"-" gorm:"type:text"`
	GoogleRefreshToken string     `json:"-" gorm:"type:text"`
	TokenExpiresAt     *time.Time `json:"token_expires_at,omitempty"`
	LastSyncedAt       *time.Time `json:"last_synced_at,omitempty" gorm:"index"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Syncable reports whether the user can be polled at all.
func (u *User) Syncable() bool {
	return u.GoogleRefreshToken != ""
}
