package domain

import "context"

// ListFilter bounds audit log queries.
type ListFilter struct {
	Action string
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}
