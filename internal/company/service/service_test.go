package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/nexusverde/console/internal/company/domain"
	"github.com/nexusverde/console/internal/company/repository"
	dbpkg "github.com/nexusverde/console/pkg/db"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Company{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create id generator: %v", err)
	}
	return NewService(repository.New(db), node)
}

func TestCreateAssignsStatusAndClassification(t *testing.T) {
	svc := newTestService(t)

	company, err := svc.Create(context.Background(), domain.CreateCompanyRequest{
		Name:  "  Acme Ltda  ",
		TaxID: "12.345.678/0001-95",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if company.Name != "Acme Ltda" {
		t.Fatalf("expected trimmed name, got %q", company.Name)
	}
	if company.TaxID != "12345678000195" {
		t.Fatalf("expected normalized tax id, got %q", company.TaxID)
	}
	if company.Slug != "acme-ltda" {
		t.Fatalf("expected slug acme-ltda, got %q", company.Slug)
	}
	if company.Status != domain.StatusActive {
		t.Fatalf("expected status %s, got %s", domain.StatusActive, company.Status)
	}
	if company.Classification != domain.ClassificationInventoryContractor {
		t.Fatalf("expected classification %s, got %s", domain.ClassificationInventoryContractor, company.Classification)
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCompanyRequest{
		Name:  "   ",
		TaxID: "12345678000195",
	})
	if err != domain.ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestCreateRejectsMalformedTaxID(t *testing.T) {
	svc := newTestService(t)

	for _, taxID := range []string{"", "123", "123456780001952", "abcdefghijklmn"} {
		_, err := svc.Create(context.Background(), domain.CreateCompanyRequest{
			Name:  "Acme",
			TaxID: taxID,
		})
		if err != domain.ErrInvalidTaxID {
			t.Fatalf("tax id %q: expected ErrInvalidTaxID, got %v", taxID, err)
		}
	}
}

func TestCreateRejectsDuplicateTaxID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateCompanyRequest{
		Name:  "Acme",
		TaxID: "12345678000195",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := svc.Create(ctx, domain.CreateCompanyRequest{
		Name:  "Other",
		TaxID: "12.345.678/0001-95",
	})
	if err != domain.ErrCompanyExists {
		t.Fatalf("expected ErrCompanyExists, got %v", err)
	}
}

func TestGetByIDAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateCompanyRequest{
		Name:  "Acme",
		TaxID: "12345678000195",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != created.ID.String() {
		t.Fatalf("expected id %s, got %s", created.ID, got.ID)
	}

	if _, err := svc.GetByID(ctx, "not-a-snowflake"); err != domain.ErrInvalidCompany {
		t.Fatalf("expected ErrInvalidCompany, got %v", err)
	}

	list, err := svc.List(ctx, domain.ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 company, got %d", len(list))
	}
}
