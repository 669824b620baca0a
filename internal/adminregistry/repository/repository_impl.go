package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nexusverde/console/internal/adminregistry/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Administrator{}).Count(&count).Error
	return count, err
}

func (r *repo) Create(ctx context.Context, admin *domain.Administrator) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *repo) Exists(ctx context.Context, userID snowflake.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Administrator{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
