package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nexusverde/console/internal/adminregistry/domain"
	"github.com/nexusverde/console/internal/adminregistry/repository"
	"github.com/nexusverde/console/internal/auth/identity"
	dbpkg "github.com/nexusverde/console/pkg/db"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) (domain.Repository, *snowflake.Node) {
	t.Helper()

	db, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Administrator{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create id generator: %v", err)
	}
	return repository.New(db), node
}

func TestEvaluateAllowsRegisteredAdministrator(t *testing.T) {
	registry, node := newTestRegistry(t)
	userID := node.Generate()

	if err := registry.Create(context.Background(), &domain.Administrator{
		ID:     node.Generate(),
		UserID: userID,
		Email:  "ops@example.com",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	g := New(registry, identity.NewHub(), nil, zap.NewNop())
	if state := g.Evaluate(context.Background(), userID); state != StateAllowed {
		t.Fatalf("expected ALLOWED, got %s", state)
	}
}

func TestEvaluateDeniesUnregisteredUser(t *testing.T) {
	registry, node := newTestRegistry(t)

	g := New(registry, identity.NewHub(), nil, zap.NewNop())
	if state := g.Evaluate(context.Background(), node.Generate()); state != StateDenied {
		t.Fatalf("expected DENIED, got %s", state)
	}
}

type failingRegistry struct{}

func (failingRegistry) Count(context.Context) (int64, error) { return 0, errors.New("db down") }
func (failingRegistry) Create(context.Context, *domain.Administrator) error {
	return errors.New("db down")
}
func (failingRegistry) Exists(context.Context, snowflake.ID) (bool, error) {
	return false, errors.New("db down")
}

func TestEvaluateFailsClosedOnLookupError(t *testing.T) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create id generator: %v", err)
	}

	g := New(failingRegistry{}, identity.NewHub(), nil, zap.NewNop())
	if state := g.Evaluate(context.Background(), node.Generate()); state != StateDenied {
		t.Fatalf("expected DENIED on lookup error, got %s", state)
	}
}

func TestWatchTracksSignInState(t *testing.T) {
	registry, node := newTestRegistry(t)
	userID := node.Generate()

	if err := registry.Create(context.Background(), &domain.Administrator{
		ID:     node.Generate(),
		UserID: userID,
		Email:  "ops@example.com",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	hub := identity.NewHub()
	g := New(registry, hub, nil, zap.NewNop())

	watch, err := g.Watch(context.Background(), userID)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer watch.Close()

	if state := waitForState(t, watch); state != StateAllowed {
		t.Fatalf("expected initial ALLOWED, got %s", state)
	}

	hub.Publish(userID.String(), identity.Event{
		UserID: userID.String(),
		State:  identity.StateSignedOut,
	})
	if state := waitForState(t, watch); state != StateDenied {
		t.Fatalf("expected DENIED after sign-out, got %s", state)
	}

	hub.Publish(userID.String(), identity.Event{
		UserID: userID.String(),
		State:  identity.StateSignedIn,
	})
	if state := waitForState(t, watch); state != StateAllowed {
		t.Fatalf("expected ALLOWED after sign-in, got %s", state)
	}
}

func TestWatchCloseEndsUpdates(t *testing.T) {
	registry, node := newTestRegistry(t)

	g := New(registry, identity.NewHub(), nil, zap.NewNop())
	watch, err := g.Watch(context.Background(), node.Generate())
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	waitForState(t, watch)
	watch.Close()

	select {
	case _, ok := <-watch.Updates():
		if ok {
			t.Fatal("expected no further updates after close")
		}
	case <-time.After(time.Second):
		t.Fatal("updates channel did not close")
	}
}

func waitForState(t *testing.T, watch *Watch) State {
	t.Helper()
	select {
	case state, ok := <-watch.Updates():
		if !ok {
			t.Fatal("updates channel closed unexpectedly")
		}
		return state
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for gate update")
		return ""
	}
}
