// Package engine is the caller-facing surface of rowguard.
//
// An Engine owns the store and the policy, authentication, privilege and
// provisioning services. Callers talk to it through a Conn: one logical
// connection with its own session slot. Every data operation on a Conn is
// filtered or gated by the policy engine against the identity bound to that
// connection, re-read from the store for each operation.
//
// Connections can be opened directly (Connect, ConnectAs) or borrowed from
// a Pool, which resets the session slot whenever a connection changes
// hands.
package engine

import (
	"context"
	"sync"

	"github.com/marmos91/rowguard/pkg/auth"
	"github.com/marmos91/rowguard/pkg/metrics"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/principal"
	"github.com/marmos91/rowguard/pkg/privilege"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// Config holds engine settings.
type Config struct {
	// Audit enables the decision audit log.
	Audit bool

	// BcryptCost is the hashing cost for user and durable principal
	// passwords. Zero means models.DefaultBcryptCost.
	BcryptCost int

	// Metrics receives decision, login and session metrics. Nil disables them.
	Metrics metrics.AuthzMetrics
}

// Engine wires the authorization services over one store.
type Engine struct {
	store       store.Store
	policy      *policy.Engine
	auth        *auth.Authenticator
	registry    *privilege.Registry
	provisioner *principal.Provisioner
	metrics     metrics.AuthzMetrics

	mu    sync.Mutex
	conns map[string]*Conn
}

// New creates an Engine over s.
func New(s store.Store, cfg Config) *Engine {
	popts := []policy.Option{policy.WithMetrics(cfg.Metrics)}
	if cfg.Audit {
		popts = append(popts, policy.WithAuditor(policy.NewStoreAuditor(s)))
	}
	pe := policy.New(s, popts...)

	var prOpts []principal.Option
	if cfg.BcryptCost > 0 {
		s.SetBcryptCost(cfg.BcryptCost)
		prOpts = append(prOpts, principal.WithBcryptCost(cfg.BcryptCost))
	}
	prov := principal.New(pe, prOpts...)

	authn := auth.NewAuthenticator(
		[]auth.Provider{auth.NewUserProvider(s), auth.NewPrincipalProvider(prov, s)},
		auth.WithMetrics(cfg.Metrics),
		auth.WithLastLogin(s),
	)

	return &Engine{
		store:       s,
		policy:      pe,
		auth:        authn,
		registry:    privilege.New(pe),
		provisioner: prov,
		metrics:     cfg.Metrics,
		conns:       make(map[string]*Conn),
	}
}

// Store returns the underlying store.
func (e *Engine) Store() store.Store {
	return e.store
}

// Policy returns the policy engine.
func (e *Engine) Policy() *policy.Engine {
	return e.policy
}

// Registry returns the privilege registry.
func (e *Engine) Registry() *privilege.Registry {
	return e.registry
}

// Connect opens an anonymous connection. Call Login on it to act as a user.
func (e *Engine) Connect() *Conn {
	c := &Conn{engine: e, sess: session.New()}
	e.track(c)
	return c
}

// ConnectAs opens a connection authenticated directly as the durable
// principal name. Every credential failure is ErrAuthenticationFailed.
func (e *Engine) ConnectAs(ctx context.Context, name, password string) (*Conn, error) {
	c := e.Connect()
	if _, err := c.LoginPrincipal(ctx, name, password); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// ListGrantsVisibleTo returns the grants userID may see.
func (e *Engine) ListGrantsVisibleTo(ctx context.Context, userID string) ([]*models.Grant, error) {
	return e.registry.ListGrantsVisibleTo(ctx, userID)
}

// ActiveConnections returns the number of open connections.
func (e *Engine) ActiveConnections() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.conns)
}

func (e *Engine) track(c *Conn) {
	e.mu.Lock()
	e.conns[c.sess.ID()] = c
	n := len(e.conns)
	e.mu.Unlock()
	if e.metrics != nil {
		e.metrics.SetActiveSessions(n)
	}
}

func (e *Engine) untrack(c *Conn) {
	e.mu.Lock()
	delete(e.conns, c.sess.ID())
	n := len(e.conns)
	e.mu.Unlock()
	if e.metrics != nil {
		e.metrics.SetActiveSessions(n)
	}
}
