package domain

import "testing"

func validForm() Form {
	return Form{
		CompanyName:   "Acme LTDA",
		TaxID:         "12.345.678/0001-99",
		AdminEmail:    "a@b.com",
		AdminPassword: "secret1",
	}
}

func TestNormalizeDigits(t *testing.T) {
	cases := map[string]string{
		"12.345.678/0001-99": "12345678000199",
		"":                   "",
		"abc":                "",
		"1a2b3c":             "123",
		" 9 9 ":              "99",
	}
	for input, want := range cases {
		if got := NormalizeDigits(input); got != want {
			t.Fatalf("NormalizeDigits(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeDigitsIsIdempotent(t *testing.T) {
	inputs := []string{"12.345.678/0001-99", "abc123", "", "   ", "00000000000000"}
	for _, input := range inputs {
		once := NormalizeDigits(input)
		if twice := NormalizeDigits(once); twice != once {
			t.Fatalf("NormalizeDigits not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}

func TestValidTaxIDMatchesNormalizedLength(t *testing.T) {
	inputs := []string{
		"12.345.678/0001-99",
		"12345678000199",
		"123",
		"",
		"123456780001991",
		"aa12345678000199bb",
	}
	for _, input := range inputs {
		want := len(NormalizeDigits(input)) == TaxIDLength
		if got := ValidTaxID(input); got != want {
			t.Fatalf("ValidTaxID(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "  a@b.com  ", "first.last@sub.domain.org"}
	for _, input := range valid {
		if !ValidEmail(input) {
			t.Fatalf("expected %q to be valid", input)
		}
	}

	invalid := []string{"", "not-an-email", "a@b", "a b@c.com", "@b.com", "a@.com"}
	for _, input := range invalid {
		if ValidEmail(input) {
			t.Fatalf("expected %q to be invalid", input)
		}
	}
}

func TestCanSubmitValidForm(t *testing.T) {
	if !validForm().CanSubmit() {
		t.Fatal("expected valid form to be submittable")
	}
}

func TestCanSubmitRejectsBlankCompanyName(t *testing.T) {
	form := validForm()
	form.CompanyName = "   "
	if form.CanSubmit() {
		t.Fatal("expected blank company name to block submission")
	}
}

func TestCanSubmitRejectsShortAdminPassword(t *testing.T) {
	form := validForm()
	form.AdminPassword = "abc"
	if form.CanSubmit() {
		t.Fatal("expected short admin password to block submission")
	}
}

func TestCanSubmitRejectsInvalidMasterEmailWhenRequested(t *testing.T) {
	form := validForm()
	form.CreateMaster = true
	form.MasterEmail = "not-an-email"
	form.MasterPassword = "secret1"
	if form.CanSubmit() {
		t.Fatal("expected invalid master email to block submission")
	}
}

func TestCanSubmitIgnoresMasterFieldsWhenNotRequested(t *testing.T) {
	form := validForm()
	form.CreateMaster = false
	form.MasterEmail = "garbage"
	form.MasterPassword = ""
	if !form.CanSubmit() {
		t.Fatal("expected master fields to be ignored when not requested")
	}
}

func TestCanSubmitAcceptsMasterWhenValid(t *testing.T) {
	form := validForm()
	form.CreateMaster = true
	form.MasterEmail = "m@b.com"
	form.MasterPassword = "secret2"
	if !form.CanSubmit() {
		t.Fatal("expected valid master fields to be submittable")
	}
}
