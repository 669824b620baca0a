package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	auditdomain "github.com/nexusverde/console/internal/audit/domain"
	companydomain "github.com/nexusverde/console/internal/company/domain"
	"github.com/nexusverde/console/internal/observability/logger"
	"github.com/nexusverde/console/internal/observability/metrics"
	"github.com/nexusverde/console/internal/provisioning/domain"
	"github.com/nexusverde/console/internal/provisioning/event"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Companies   companydomain.Service
	Provisioner domain.UserProvisioner
	Events      event.Publisher
	Audit       auditdomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
}

// Orchestrator runs the two-step provisioning sequence. Step 1 creates the
// company record, step 2 asks the privileged backend to create the user
// accounts. The steps are not atomic: a step-2 failure leaves the company
// in place and is surfaced to the operator instead of rolled back.
type Orchestrator struct {
	log         *zap.Logger
	companies   companydomain.Service
	provisioner domain.UserProvisioner
	events      event.Publisher
	audit       auditdomain.Service
	metrics     *metrics.Metrics

	mu sync.Mutex
}

func NewOrchestrator(p Params) domain.Service {
	return &Orchestrator{
		log:         p.Log.Named("provisioning.orchestrator"),
		companies:   p.Companies,
		provisioner: p.Provisioner,
		events:      p.Events,
		audit:       p.Audit,
		metrics:     p.Metrics,
	}
}

func (o *Orchestrator) Provision(ctx context.Context, form domain.Form) (*domain.Result, error) {
	if !form.CanSubmit() {
		return nil, domain.ErrInvalidForm
	}

	// At most one attempt may be in flight per orchestrator instance.
	if !o.mu.TryLock() {
		return nil, domain.ErrAttemptInFlight
	}
	defer o.mu.Unlock()

	attemptID := ulid.Make().String()
	log := logger.WithContext(ctx, o.log).With(zap.String("attempt_id", attemptID))

	company, err := o.companies.Create(ctx, companydomain.CreateCompanyRequest{
		Name:  form.CompanyName,
		TaxID: form.TaxID,
	})
	if err != nil {
		log.Warn("company creation failed", zap.Error(err))
		o.metrics.RecordProvisioningAttempt(ctx, "step1_failed")
		o.recordAudit(ctx, auditdomain.ActionCompanyProvisionFailed, nil, map[string]any{
			"attempt_id": attemptID,
			"step":       domain.StepCreateCompany,
		})
		return nil, &domain.ProvisionError{
			Step:    domain.StepCreateCompany,
			Message: stepOneMessage(err),
			Err:     err,
		}
	}

	req := domain.Request{
		CompanyID: company.ID.String(),
		Admin: domain.Account{
			Email:    domain.NormalizeEmail(form.AdminEmail),
			Password: form.AdminPassword,
		},
	}
	if form.CreateMaster {
		req.Master = &domain.Account{
			Email:    domain.NormalizeEmail(form.MasterEmail),
			Password: form.MasterPassword,
		}
	}

	result, err := o.provisioner.Provision(ctx, req)
	if err != nil {
		companyID := company.ID.String()
		log.Error("user provisioning failed, company record is orphaned",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		o.metrics.RecordProvisioningAttempt(ctx, "step2_failed")
		o.metrics.RecordOrphanedCompany(ctx)
		o.signalOrphan(ctx, companyID, attemptID, err)
		o.recordAudit(ctx, auditdomain.ActionCompanyProvisionFailed, &companyID, map[string]any{
			"attempt_id": attemptID,
			"step":       domain.StepProvisionUsers,
		})
		return nil, &domain.ProvisionError{
			Step:      domain.StepProvisionUsers,
			CompanyID: companyID,
			Message:   backendMessage(err),
			Err:       err,
		}
	}

	if result == nil {
		result = &domain.Result{}
	}
	result.CompanyID = company.ID.String()

	o.metrics.RecordProvisioningAttempt(ctx, "success")
	companyID := company.ID.String()
	o.recordAudit(ctx, auditdomain.ActionCompanyProvisioned, &companyID, map[string]any{
		"attempt_id": attemptID,
		"accounts":   len(result.AccountIDs),
	})
	o.publishEvent(ctx, event.CompanyProvisionedTopic, map[string]any{
		"company_id": companyID,
		"attempt_id": attemptID,
	})
	log.Info("company provisioned", zap.String("company_id", companyID))

	return result, nil
}

// signalOrphan leaves a durable trail pointing at the orphaned company so an
// operator can remediate it later.
func (o *Orchestrator) signalOrphan(ctx context.Context, companyID, attemptID string, cause error) {
	o.publishEvent(ctx, event.CompanyOrphanedTopic, map[string]any{
		"company_id": companyID,
		"attempt_id": attemptID,
		"reason":     cause.Error(),
	})
}

func (o *Orchestrator) publishEvent(ctx context.Context, topic string, payload map[string]any) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, topic, payload); err != nil {
		o.log.Warn("failed to publish provisioning event", zap.String("topic", topic), zap.Error(err))
	}
}

func (o *Orchestrator) recordAudit(ctx context.Context, action string, targetID *string, metadata map[string]any) {
	if o.audit == nil {
		return
	}
	_ = o.audit.Record(ctx, action, "company", targetID, metadata)
}

func stepOneMessage(err error) string {
	switch {
	case errors.Is(err, companydomain.ErrCompanyExists):
		return "A company with this tax id already exists."
	case errors.Is(err, companydomain.ErrInvalidName), errors.Is(err, companydomain.ErrInvalidTaxID):
		return "Company fields failed validation."
	default:
		return "Could not create the company record."
	}
}

// backendMessage prefers the backend-supplied detail and falls back to a
// generic remediation hint.
func backendMessage(err error) string {
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		if msg := strings.TrimSpace(backendErr.Message); msg != "" {
			return msg
		}
	}
	return domain.FallbackMessage
}
