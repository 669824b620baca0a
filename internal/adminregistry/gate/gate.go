// Package gate decides whether a signed-in user may operate the console.
package gate

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/nexusverde/console/internal/adminregistry/domain"
	"github.com/nexusverde/console/internal/auth/identity"
	"github.com/nexusverde/console/internal/observability/logger"
	"github.com/nexusverde/console/internal/observability/metrics"
	"go.uber.org/zap"
)

// State is the authorization decision for a user.
type State string

const (
	// StatePending means the authentication state is not yet known.
	StatePending State = "PENDING"
	// StateDenied means access is refused. Lookup failures land here.
	StateDenied State = "DENIED"
	// StateAllowed means the user is signed in and registered as an administrator.
	StateAllowed State = "ALLOWED"
)

// Gate evaluates administrator membership and fails closed.
type Gate struct {
	registry domain.Repository
	hub      *identity.Hub
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func New(registry domain.Repository, hub *identity.Hub, m *metrics.Metrics, log *zap.Logger) *Gate {
	return &Gate{
		registry: registry,
		hub:      hub,
		metrics:  m,
		log:      log.Named("adminregistry.gate"),
	}
}

// Evaluate resolves the current decision for a signed-in user. Any registry
// lookup failure denies access rather than letting the request through.
func (g *Gate) Evaluate(ctx context.Context, userID snowflake.ID) State {
	ok, err := g.registry.Exists(ctx, userID)
	if err != nil {
		logger.WithContext(ctx, g.log).Warn("administrator lookup failed, denying access",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		g.metrics.RecordGateDenial(ctx, "lookup_error")
		return StateDenied
	}
	if !ok {
		g.metrics.RecordGateDenial(ctx, "not_registered")
		return StateDenied
	}
	return StateAllowed
}

// Watch streams authorization decisions for a user as their sign-in state
// changes. The first update carries the decision for the current state.
type Watch struct {
	updates chan State
	sub     *identity.Subscription
	done    chan struct{}
	once    sync.Once
}

func (g *Gate) Watch(ctx context.Context, userID snowflake.ID) (*Watch, error) {
	sub, _, err := g.hub.Subscribe(userID.String())
	if err != nil {
		return nil, err
	}

	w := &Watch{
		updates: make(chan State, 4),
		sub:     sub,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(w.updates)

		w.send(g.Evaluate(ctx, userID))
		for {
			select {
			case <-w.done:
				return
			case <-ctx.Done():
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				switch event.State {
				case identity.StateSignedOut:
					w.send(StateDenied)
				case identity.StateSignedIn:
					w.send(g.Evaluate(ctx, userID))
				}
			}
		}
	}()

	return w, nil
}

// Updates delivers decision changes. The channel closes when the watch ends.
func (w *Watch) Updates() <-chan State {
	if w == nil {
		return nil
	}
	return w.updates
}

// Close detaches the watch from the identity hub.
func (w *Watch) Close() {
	if w == nil {
		return
	}
	w.once.Do(func() {
		close(w.done)
		w.sub.Close()
	})
}

func (w *Watch) send(state State) {
	select {
	case w.updates <- state:
	case <-w.done:
	}
}
