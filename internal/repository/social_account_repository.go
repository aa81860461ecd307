package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vipul43/blogforge/internal/models"
)

var ErrSocialAccountNotFound = errors.New("social account not found")

type SocialAccountRepository struct {
	db *gorm.DB
}

func NewSocialAccountRepository(db *gorm.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

// Upsert inserts the link or overwrites the tokens of the existing row for
// the same user and provider.
func (r *SocialAccountRepository) Upsert(ctx context.Context, link models.SocialAccountLink) error {
	now := time.Now()
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	link.CreatedAt = now
	link.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"provider_account_id",
			"access_token",
			"refresh_token",
			"expires_at",
			"updated_at",
		}),
	}).Create(&link)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert social account: %w", result.Error)
	}
	return nil
}

// GetByUserAndProvider retrieves the link of a user for one provider
func (r *SocialAccountRepository) GetByUserAndProvider(ctx context.Context, userID string, provider models.Provider) (*models.SocialAccountLink, error) {
	var link models.SocialAccountLink
	result := r.db.WithContext(ctx).First(&link, "user_id = ? AND provider = ?", userID, provider)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSocialAccountNotFound
		}
		return nil, fmt.Errorf("failed to get social account: %w", result.Error)
	}
	return &link, nil
}
