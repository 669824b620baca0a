// Package domain contains the provisioning form, validators and contracts.
package domain

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// TaxIDLength is the fixed length of the numeric tax identifier.
	TaxIDLength = 14
	// MinPasswordLength applies to every provisioned account password.
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form holds the raw operator input for one provisioning attempt.
type Form struct {
	CompanyName    string `json:"company_name"`
	TaxID          string `json:"tax_id"`
	AdminEmail     string `json:"admin_email"`
	AdminPassword  string `json:"admin_password"`
	CreateMaster   bool   `json:"create_master"`
	MasterEmail    string `json:"master_email"`
	MasterPassword string `json:"master_password"`
}

// NormalizeDigits strips every non-digit character.
func NormalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidTaxID reports whether the input normalizes to exactly 14 digits.
// Length check only, no checksum.
func ValidTaxID(raw string) bool {
	return len(NormalizeDigits(raw)) == TaxIDLength
}

// ValidEmail reports whether the trimmed input has a local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// CanSubmit is the sole gate on submitting a provisioning attempt. It is
// recomputed from scratch on every call.
func (f Form) CanSubmit() bool {
	if strings.TrimSpace(f.CompanyName) == "" {
		return false
	}
	if !ValidTaxID(f.TaxID) {
		return false
	}
	if !ValidEmail(f.AdminEmail) {
		return false
	}
	if len(f.AdminPassword) < MinPasswordLength {
		return false
	}
	if f.CreateMaster {
		if !ValidEmail(f.MasterEmail) {
			return false
		}
		if len(f.MasterPassword) < MinPasswordLength {
			return false
		}
	}
	return true
}

// NormalizeEmail lower-cases and trims an address for transmission.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
