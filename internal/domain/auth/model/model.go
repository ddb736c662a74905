package model

import (
	"github.com/google/uuid"
	"time"
)

// CanonicalUser is the identity carried by a validated Mini App payload.
// ID is the decimal Telegram user id, kept as a string so ids above 2^53
// survive intact.
type CanonicalUser struct {
	ID        string
	Username  *string
	FirstName *string
	LastName  *string
}

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TelegramID string    `gorm:"uniqueIndex;not null"`
	Username   string
	FirstName  string
	LastName   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	UserId          uuid.UUID
	RefreshTokenJTI string
}
