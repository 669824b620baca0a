package domain

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrCompanyExists   = errors.New("company already exists")
	ErrInvalidCompany  = errors.New("invalid company")
	ErrInvalidName     = errors.New("invalid company name")
	ErrInvalidTaxID    = errors.New("invalid tax id")
)
