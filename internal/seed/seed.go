// Package seed bootstraps the first operator account.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	admindomain "github.com/nexusverde/console/internal/adminregistry/domain"
	authdomain "github.com/nexusverde/console/internal/auth/domain"
	"github.com/nexusverde/console/internal/auth/password"
	"github.com/nexusverde/console/internal/config"
	"gorm.io/gorm"
)

// EnsureRootAdmin creates the bootstrap operator account and registers it as
// an administrator. Without at least one registry entry the fail-closed gate
// would lock everyone out of a fresh install.
func EnsureRootAdmin(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminEmail))
	rawPassword := cfg.Bootstrap.AdminPassword
	if email == "" || rawPassword == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := ensureUserTx(ctx, tx, node, email, rawPassword)
		if err != nil {
			return err
		}
		return ensureAdministratorTx(ctx, tx, node, user)
	})
}

func ensureUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, email, rawPassword string) (*authdomain.User, error) {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user = authdomain.User{
		ID:                  node.Generate(),
		Email:               email,
		DisplayName:         "Console Admin",
		PasswordHash:        &hashed,
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureAdministratorTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, user *authdomain.User) error {
	var admin admindomain.Administrator
	err := tx.WithContext(ctx).Where("user_id = ?", user.ID).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin = admindomain.Administrator{
		ID:        node.Generate(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&admin).Error
}
