package domain

import (
	"errors"
	"fmt"
)

const (
	StepCreateCompany  = "create_company"
	StepProvisionUsers = "provision_users"
)

// FallbackMessage is shown when the backend supplies no error detail.
const FallbackMessage = "Could not provision user accounts. Check permissions and backend availability."

var (
	ErrInvalidForm     = errors.New("form validation failed")
	ErrAttemptInFlight = errors.New("provisioning attempt already in flight")
)

// ProvisionError reports a failed attempt. CompanyID is set when step 1
// succeeded, so an orphaned company can be located for remediation.
type ProvisionError struct {
	Step      string
	CompanyID string
	Message   string
	Err       error
}

func (e *ProvisionError) Error() string {
	if e.CompanyID != "" {
		return fmt.Sprintf("%s failed (company %s): %s", e.Step, e.CompanyID, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// BackendError carries the operator-displayable detail returned by the
// user-provisioning backend.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend rejected the request with status %d", e.StatusCode)
}
