package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/nexusverde/console/internal/audit/domain"
	"github.com/nexusverde/console/internal/audit/repository"
	obscontext "github.com/nexusverde/console/internal/observability/context"
	dbpkg "github.com/nexusverde/console/pkg/db"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) auditdomain.Service {
	t.Helper()

	db, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&auditdomain.AuditLog{}); err != nil {
		t.Fatalf("migrate audit logs: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	return NewService(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.New(db),
	})
}

func TestRecordEnrichesFromRequestContext(t *testing.T) {
	svc := newTestService(t)

	ctx := context.Background()
	ctx = obscontext.WithRequestID(ctx, "req-1")
	ctx = obscontext.WithActorID(ctx, "42")
	ctx = obscontext.WithIPAddress(ctx, "10.0.0.9")
	ctx = obscontext.WithUserAgent(ctx, "console-test")

	targetID := "7001"
	err := svc.Record(ctx, auditdomain.ActionCompanyProvisioned, "company", &targetID, map[string]any{
		"company_name": "Acme Ltda",
	})
	assert.NoError(t, err)

	entries, err := svc.List(ctx, auditdomain.ListFilter{Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, auditdomain.ActionCompanyProvisioned, entry.Action)
	assert.Equal(t, "company", entry.TargetType)
	if assert.NotNil(t, entry.TargetID) {
		assert.Equal(t, "7001", *entry.TargetID)
	}
	if assert.NotNil(t, entry.ActorID) {
		assert.Equal(t, "42", *entry.ActorID)
	}
	if assert.NotNil(t, entry.IPAddress) {
		assert.Equal(t, "10.0.0.9", *entry.IPAddress)
	}
	assert.Equal(t, "req-1", entry.Metadata["request_id"])
	assert.Equal(t, "Acme Ltda", entry.Metadata["company_name"])
}

func TestRecordRejectsBlankAction(t *testing.T) {
	svc := newTestService(t)

	err := svc.Record(context.Background(), "  ", "user", nil, nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListFiltersByAction(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Record(ctx, auditdomain.ActionUserLogin, "user", nil, nil))
	assert.NoError(t, svc.Record(ctx, auditdomain.ActionUserLoginFailed, "user", nil, nil))
	assert.NoError(t, svc.Record(ctx, auditdomain.ActionUserLogin, "user", nil, nil))

	entries, err := svc.List(ctx, auditdomain.ListFilter{Action: auditdomain.ActionUserLogin, Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, auditdomain.ActionUserLogin, entry.Action)
	}
}
