package models

import "time"

// VerificationToken is a single-use proof for one channel of one account,
// linked to the account through its email.
type VerificationToken struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	Channel   Channel   `gorm:"size:10;not null;index:idx_verification_tokens_owner" json:"channel"`
	UserEmail string    `gorm:"size:255;not null;index:idx_verification_tokens_owner" json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
}
