package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/nexusverde/console/internal/company/domain"
	dbpkg "github.com/nexusverde/console/pkg/db"
)

const taxIDLength = 14

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateCompanyRequest) (*domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	taxID := digitsOnly(req.TaxID)
	if len(taxID) != taxIDLength {
		return nil, domain.ErrInvalidTaxID
	}

	if _, err := s.repo.FindByTaxID(ctx, taxID); err == nil {
		return nil, domain.ErrCompanyExists
	} else if !errors.Is(err, domain.ErrCompanyNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	company := &domain.Company{
		ID:             s.genID.Generate(),
		Name:           name,
		Slug:           slug.Make(name),
		TaxID:          taxID,
		Status:         domain.StatusActive,
		Classification: domain.ClassificationInventoryContractor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCompanyExists
		}
		return nil, err
	}

	return company, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.CompanyResponse, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return nil, domain.ErrInvalidCompany
	}
	companyID, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, domain.ErrInvalidCompany
	}

	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toResponse(company), nil
}

func (s *service) List(ctx context.Context, filter domain.ListFilter) ([]domain.CompanyResponse, error) {
	companies, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.CompanyResponse, 0, len(companies))
	for i := range companies {
		resp = append(resp, *toResponse(&companies[i]))
	}
	return resp, nil
}

func toResponse(company *domain.Company) *domain.CompanyResponse {
	return &domain.CompanyResponse{
		ID:             company.ID.String(),
		Name:           company.Name,
		Slug:           company.Slug,
		TaxID:          company.TaxID,
		Status:         company.Status,
		Classification: company.Classification,
		CreatedAt:      company.CreatedAt,
	}
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
