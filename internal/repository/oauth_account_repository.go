package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"codecrafting/internal/model"
)

// OAuthAccountRepository persists links between users and provider accounts.
type OAuthAccountRepository interface {
	Create(ctx context.Context, account *model.OAuthAccount) error
	HasLinkedAccount(ctx context.Context, userID uuid.UUID, provider string) (bool, error)
}

type oauthAccountRepository struct {
	db *gorm.DB
}

// NewOAuthAccountRepository builds a GORM-backed repository.
func NewOAuthAccountRepository(db *gorm.DB) OAuthAccountRepository {
	return &oauthAccountRepository{db: db}
}

func (r *oauthAccountRepository) Create(ctx context.Context, account *model.OAuthAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *oauthAccountRepository) HasLinkedAccount(ctx context.Context, userID uuid.UUID, provider string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OAuthAccount{}).
		Where("user_id = ? AND provider = ?", userID.String(), provider).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
