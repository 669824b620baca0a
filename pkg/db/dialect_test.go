package db

import (
	"errors"
	"testing"

	"github.com/nexusverde/console/internal/config"
	"gorm.io/gorm"
)

func TestDialectSelectsPostgres(t *testing.T) {
	dialect, err := Dialect(config.Config{DBType: "postgres", DBHost: "localhost", DBPort: "5432"})
	if err != nil {
		t.Fatalf("dialect: %v", err)
	}
	if dialect.Name() != "postgres" {
		t.Fatalf("expected postgres dialect, got %q", dialect.Name())
	}
}

func TestDialectSelectsSQLiteWithDefaultPath(t *testing.T) {
	dialect, err := Dialect(config.Config{DBType: "sqlite"})
	if err != nil {
		t.Fatalf("dialect: %v", err)
	}
	if dialect.Name() != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %q", dialect.Name())
	}
}

func TestDialectRejectsUnknownType(t *testing.T) {
	if _, err := Dialect(config.Config{DBType: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "postgres", err: errors.New(`duplicate key value violates unique constraint "ux_companies_tax_id"`), want: true},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: companies.tax_id"), want: true},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		if got := IsDuplicateKeyErr(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
