package auth

import (
	"context"
	"errors"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/store"
)

// Kind says which table a set of credentials is checked against.
type Kind string

const (
	// KindUser authenticates an application user by username.
	KindUser Kind = "user"
	// KindPrincipal authenticates a durable principal by name.
	KindPrincipal Kind = "principal"
)

// Credentials is a name and password presented at login.
type Credentials struct {
	Kind     Kind
	Name     string
	Password string
}

// Provider checks one kind of credentials.
//
// Thread safety: implementations must be safe for concurrent use.
type Provider interface {
	// CanHandle returns true if this provider checks creds.
	CanHandle(creds Credentials) bool

	// Authenticate checks creds. Every credential failure is
	// models.ErrAuthenticationFailed; ErrUnsupportedMechanism hands the
	// credentials to the next provider.
	Authenticate(ctx context.Context, creds Credentials) (*Result, error)

	// Name returns the provider name for logging and metrics.
	Name() string
}

// Result is the outcome of a successful authentication.
type Result struct {
	UserID        string
	Username      string
	PrincipalID   string
	PrincipalName string

	// Provider is the name of the Provider that accepted the credentials.
	Provider string
}

// UserProvider checks usernames and passwords against the users table.
type UserProvider struct {
	store store.CredentialStore
}

// NewUserProvider creates a UserProvider backed by s.
func NewUserProvider(s store.CredentialStore) *UserProvider {
	return &UserProvider{store: s}
}

func (p *UserProvider) Name() string { return string(KindUser) }

func (p *UserProvider) CanHandle(creds Credentials) bool {
	return creds.Kind == KindUser || creds.Kind == ""
}

func (p *UserProvider) Authenticate(ctx context.Context, creds Credentials) (*Result, error) {
	u, err := p.store.ValidateCredentials(ctx, creds.Name, creds.Password)
	if err != nil {
		return nil, err
	}
	return &Result{UserID: u.ID, Username: u.Username, Provider: p.Name()}, nil
}

// PrincipalAuthenticator checks durable principal credentials.
type PrincipalAuthenticator interface {
	Authenticate(ctx context.Context, name, password string) (*models.Principal, error)
}

// PrincipalProvider checks durable principal credentials and reports the
// user the principal aliases at login time.
type PrincipalProvider struct {
	principals PrincipalAuthenticator
	users      store.CredentialStore
}

// NewPrincipalProvider creates a PrincipalProvider.
func NewPrincipalProvider(principals PrincipalAuthenticator, users store.CredentialStore) *PrincipalProvider {
	return &PrincipalProvider{principals: principals, users: users}
}

func (p *PrincipalProvider) Name() string { return string(KindPrincipal) }

func (p *PrincipalProvider) CanHandle(creds Credentials) bool {
	return creds.Kind == KindPrincipal
}

func (p *PrincipalProvider) Authenticate(ctx context.Context, creds Credentials) (*Result, error) {
	pr, err := p.principals.Authenticate(ctx, creds.Name, creds.Password)
	if err != nil {
		return nil, err
	}
	u, err := p.users.GetUserByID(ctx, pr.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrAuthenticationFailed
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		UserID:        u.ID,
		Username:      u.Username,
		PrincipalID:   pr.ID,
		PrincipalName: pr.Name,
		Provider:      p.Name(),
	}, nil
}
