package domain

import "context"

// Account is one identity-provider account to create.
type Account struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Request is the payload for the privileged user-provisioning operation.
type Request struct {
	CompanyID string   `json:"company_id"`
	Admin     Account  `json:"admin"`
	Master    *Account `json:"master"`
}

// Result reports a completed provisioning attempt.
type Result struct {
	CompanyID  string   `json:"company_id"`
	AccountIDs []string `json:"account_ids"`
}

// UserProvisioner is the privileged backend operation that creates the
// identity-provider accounts for a company. Its internal atomicity is
// outside this service's control.
type UserProvisioner interface {
	Provision(ctx context.Context, req Request) (*Result, error)
}

// Service executes the two-step provisioning sequence.
type Service interface {
	Provision(ctx context.Context, form Form) (*Result, error)
}
