package model

import (
	"time"

	"github.com/google/uuid"
)

// OAuthAccount links a User to an external identity provider account.
type OAuthAccount struct {
	ID                uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID            uuid.UUID `json:"user_id" gorm:"type:char(36);index;not null"`
	Provider          string    `json:"provider" gorm:"size:50;not null;uniqueIndex:idx_provider_account"`
	ProviderAccountID string    `json:"provider_account_id" gorm:"size:255;not null;uniqueIndex:idx_provider_account"`
	CreatedAt         time.Time `json:"created_at"`
}
