package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, admin *Administrator) error
	Exists(ctx context.Context, userID snowflake.ID) (bool, error)
}
