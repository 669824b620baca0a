package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ListFilter bounds company listings.
type ListFilter struct {
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id snowflake.ID) (*Company, error)
	FindByTaxID(ctx context.Context, taxID string) (*Company, error)
	List(ctx context.Context, filter ListFilter) ([]Company, error)
}
