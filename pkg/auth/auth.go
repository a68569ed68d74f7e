// Package auth verifies credentials and binds the resulting identity to a
// connection's session.
//
// Credentials are checked by a chain of Providers: UserProvider for
// application users and PrincipalProvider for durable principals. Every
// credential failure surfaces as models.ErrAuthenticationFailed with the
// same message, whether the name was unknown, the password wrong or the
// account disabled.
//
// Sub-files:
//   - provider.go: Provider chain members
//   - jwt.go: signed session handles for the HTTP API
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/internal/telemetry"
	"github.com/marmos91/rowguard/pkg/metrics"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// Login outcomes reported to metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ErrUnsupportedMechanism indicates that no registered Provider can check
// the presented credentials.
var ErrUnsupportedMechanism = errors.New("auth: unsupported authentication mechanism")

// Handle acknowledges a successful login. It describes the binding now
// held by the connection.
type Handle struct {
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	PrincipalID   string    `json:"principal_id,omitempty"`
	PrincipalName string    `json:"principal,omitempty"`
	Since         time.Time `json:"since"`
}

// Authenticator chains Providers and mutates session contexts.
//
// Thread safety: safe for concurrent use (providers are read-only after
// construction). Each session.Context serializes its own updates.
type Authenticator struct {
	providers []Provider
	users     store.CredentialStore
	metrics   metrics.AuthzMetrics
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithMetrics reports login outcomes to m.
func WithMetrics(m metrics.AuthzMetrics) Option {
	return func(a *Authenticator) { a.metrics = m }
}

// WithLastLogin records successful user logins in users.
func WithLastLogin(users store.CredentialStore) Option {
	return func(a *Authenticator) { a.users = users }
}

// NewAuthenticator creates an Authenticator. Providers are tried in order;
// the first whose CanHandle returns true checks the credentials.
func NewAuthenticator(providers []Provider, opts ...Option) *Authenticator {
	a := &Authenticator{providers: providers}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate checks creds with the first matching provider. A provider
// returning ErrUnsupportedMechanism passes the credentials on.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (*Result, error) {
	for _, p := range a.providers {
		if !p.CanHandle(creds) {
			continue
		}
		res, err := p.Authenticate(ctx, creds)
		if errors.Is(err, ErrUnsupportedMechanism) {
			continue
		}
		return res, err
	}
	return nil, ErrUnsupportedMechanism
}

// Providers returns a copy of the registered providers.
func (a *Authenticator) Providers() []Provider {
	if a == nil || len(a.providers) == 0 {
		return nil
	}
	out := make([]Provider, len(a.providers))
	copy(out, a.providers)
	return out
}

// Login verifies a user's credentials and binds the user to sess. A failed
// login leaves sess as it was.
func (a *Authenticator) Login(ctx context.Context, sess *session.Context, username, password string) (*Handle, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanLogin)
	defer span.End()
	return a.login(ctx, sess, Credentials{Kind: KindUser, Name: username, Password: password})
}

// LoginPrincipal verifies a durable principal's credentials and binds it
// to sess. The acting user is resolved through the principal on every
// later operation.
func (a *Authenticator) LoginPrincipal(ctx context.Context, sess *session.Context, name, password string) (*Handle, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanPrincipalLogin)
	defer span.End()
	return a.login(ctx, sess, Credentials{Kind: KindPrincipal, Name: name, Password: password})
}

func (a *Authenticator) login(ctx context.Context, sess *session.Context, creds Credentials) (*Handle, error) {
	res, err := a.Authenticate(ctx, creds)
	if err != nil {
		a.recordLogin(creds.Kind, OutcomeFailure)
		if errors.Is(err, models.ErrAuthenticationFailed) || errors.Is(err, ErrUnsupportedMechanism) {
			logger.WarnCtx(ctx, "login failed", "kind", string(creds.Kind))
			return nil, models.ErrAuthenticationFailed
		}
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	binding := session.Binding{
		UserID:        res.UserID,
		Username:      res.Username,
		PrincipalID:   res.PrincipalID,
		PrincipalName: res.PrincipalName,
		Since:         time.Now(),
	}
	if err := sess.Bind(binding); err != nil {
		a.recordLogin(creds.Kind, OutcomeFailure)
		return nil, err
	}
	a.recordLogin(creds.Kind, OutcomeSuccess)

	if a.users != nil && res.PrincipalID == "" {
		if err := a.users.UpdateLastLogin(ctx, res.UserID, binding.Since); err != nil {
			logger.WarnCtx(ctx, "failed to record last login", logger.UserID(res.UserID), logger.Err(err))
		}
	}

	if lc := logger.FromContext(ctx); lc != nil {
		ctx = logger.WithContext(ctx, lc.WithIdentity(res.UserID, res.PrincipalName))
	}
	logger.InfoCtx(ctx, "login succeeded",
		logger.Username(res.Username),
		"kind", string(creds.Kind),
	)

	return &Handle{
		SessionID:     sess.ID(),
		UserID:        res.UserID,
		Username:      res.Username,
		PrincipalID:   res.PrincipalID,
		PrincipalName: res.PrincipalName,
		Since:         binding.Since,
	}, nil
}

// Logout clears the identity bound to sess. Logging out an anonymous
// session is a no-op.
func (a *Authenticator) Logout(ctx context.Context, sess *session.Context) {
	if sess == nil || !sess.Authenticated() {
		return
	}
	sess.Clear()
	logger.DebugCtx(ctx, "logout", "session", sess.ID())
}

// CurrentUser returns the user id bound to sess, if any. It does not touch
// the store.
func CurrentUser(sess *session.Context) (string, bool) {
	if sess == nil {
		return "", false
	}
	b, ok := sess.Current()
	if !ok || b.UserID == "" {
		return "", false
	}
	return b.UserID, true
}

func (a *Authenticator) recordLogin(kind Kind, outcome string) {
	if a.metrics != nil {
		a.metrics.RecordLogin(string(kind), outcome)
	}
}
