package domain

import "context"

type Service interface {
	Create(ctx context.Context, req CreateCompanyRequest) (*Company, error)
	GetByID(ctx context.Context, id string) (*CompanyResponse, error)
	List(ctx context.Context, filter ListFilter) ([]CompanyResponse, error)
}

// CreateCompanyRequest carries the validated provisioning form fields.
type CreateCompanyRequest struct {
	Name  string
	TaxID string
}
