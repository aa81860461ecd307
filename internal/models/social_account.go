package models

import (
	"fmt"
	"time"
)

// Provider identifies a social platform.
type Provider string

// Supported providers
const (
	ProviderTwitter  Provider = "twitter"
	ProviderLinkedIn Provider = "linkedin"
)

// Providers lists every supported provider in a stable order.
var Providers = []Provider{ProviderTwitter, ProviderLinkedIn}

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case ProviderTwitter, ProviderLinkedIn:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider %q", name)
	}
}

// SocialAccountLink binds a user to a provider account. One row per
// user and provider.
type SocialAccountLink struct {
	ID                string     `gorm:"column:id;primaryKey"`
	UserID            string     `gorm:"column:user_id;uniqueIndex:idx_social_accounts_user_provider"`
	Provider          Provider   `gorm:"column:provider;uniqueIndex:idx_social_accounts_user_provider"`
	ProviderAccountID string     `gorm:"column:provider_account_id"`
	AccessToken       string     `gorm:"column:access_token"`
	RefreshToken      *string    `gorm:"column:refresh_token"`
	ExpiresAt         *time.Time `gorm:"column:expires_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (SocialAccountLink) TableName() string {
	return "social_accounts"
}
