// Package store persists rowguard's tables through GORM.
//
// The store is policy-free: callers pass visibility predicates in as
// scopes and run authorization reads and the guarded mutation inside one
// Transaction. SQLite and PostgreSQL are both supported.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/rowguard/pkg/models"
)

// CredentialStore holds users and durable principals and checks their
// passwords. It is read-mostly; only administrative provisioning and
// principal creation write to it.
type CredentialStore interface {
	// GetUser returns the user with the given username.
	// Returns models.ErrUserNotFound if absent.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns the user with the given id.
	// Returns models.ErrUserNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns users matching scopes, ordered by username.
	ListUsers(ctx context.Context, scopes ...Scope) ([]*models.User, error)

	// CreateUser inserts a user and returns its id.
	// Returns models.ErrDuplicateUser if the username is taken.
	CreateUser(ctx context.Context, user *models.User) (string, error)

	// UpdateUser updates profile fields (enabled, role, display name, email).
	UpdateUser(ctx context.Context, user *models.User) error

	// SetUserEnabled soft-disables or re-enables a user.
	SetUserEnabled(ctx context.Context, id string, enabled bool) error

	// UpdatePassword replaces a user's password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateLastLogin records a successful login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// ValidateCredentials returns the enabled user matching the credentials.
	// Every failure is models.ErrAuthenticationFailed.
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)

	// EnsureAdminUser creates the bootstrap admin when missing and returns
	// its initial password ("" when it already existed).
	EnsureAdminUser(ctx context.Context, username string) (string, error)

	// GetPrincipal returns a durable principal by id.
	// Returns models.ErrPrincipalNotFound if absent.
	GetPrincipal(ctx context.Context, id string) (*models.Principal, error)

	// GetPrincipalByName returns a durable principal by name.
	GetPrincipalByName(ctx context.Context, name string) (*models.Principal, error)

	// ListPrincipals returns the principals aliasing userID.
	ListPrincipals(ctx context.Context, userID string) ([]*models.Principal, error)

	// CreatePrincipal inserts a principal.
	// Returns models.ErrDuplicatePrincipal if the name is taken.
	CreatePrincipal(ctx context.Context, p *models.Principal) (string, error)

	// SetPrincipalEnabled enables or disables a principal.
	SetPrincipalEnabled(ctx context.Context, id string, enabled bool) error

	// ValidatePrincipalCredentials returns the enabled principal matching
	// the credentials. Every failure is models.ErrAuthenticationFailed.
	ValidatePrincipalCredentials(ctx context.Context, name, password string) (*models.Principal, error)

	// SetBcryptCost sets the hashing cost stored passwords use.
	SetBcryptCost(cost int)

	// BcryptCost returns the hashing cost stored passwords use.
	BcryptCost() int
}

// ProjectStore holds projects and their grants.
type ProjectStore interface {
	GetProject(ctx context.Context, id string, scopes ...Scope) (*models.Project, error)
	ListProjects(ctx context.Context, scopes ...Scope) ([]*models.Project, error)
	CountProjects(ctx context.Context, scopes ...Scope) (int64, error)

	// LockProject reads a project and locks its row until the transaction ends.
	LockProject(ctx context.Context, id string) (*models.Project, error)

	// CreateProject inserts a project together with an owner grant for ownerID.
	CreateProject(ctx context.Context, project *models.Project, ownerID string) (string, error)
	UpdateProject(ctx context.Context, id string, cols map[string]any) error

	// DeleteProject removes a project, its records and its grants.
	DeleteProject(ctx context.Context, id string) error

	GetGrant(ctx context.Context, projectID, userID string) (*models.Grant, error)
	GrantLevel(ctx context.Context, projectID, userID string) (models.Level, error)
	ListGrants(ctx context.Context, scopes ...Scope) ([]*models.Grant, error)
	PutGrant(ctx context.Context, grant *models.Grant) error
	DeleteGrant(ctx context.Context, projectID, userID string) error
	CountOwners(ctx context.Context, projectID string) (int64, error)
}

// RecordStore holds project child records.
type RecordStore interface {
	GetRecord(ctx context.Context, id string, scopes ...Scope) (*models.Record, error)
	ListRecords(ctx context.Context, filter models.RecordFilter, scopes ...Scope) ([]*models.Record, error)
	CountRecords(ctx context.Context, filter models.RecordFilter, scopes ...Scope) (int64, error)
	RecordIDs(ctx context.Context, filter models.RecordFilter, scopes ...Scope) ([]string, error)
	CreateRecord(ctx context.Context, record *models.Record) (string, error)
	UpdateRecords(ctx context.Context, ids []string, cols map[string]any) (int64, error)
	DeleteRecords(ctx context.Context, ids []string) (int64, error)
}

// MessageStore holds authored messages.
type MessageStore interface {
	GetMessage(ctx context.Context, id string, scopes ...Scope) (*models.Message, error)
	ListMessages(ctx context.Context, filter models.MessageFilter, scopes ...Scope) ([]*models.Message, error)
	MessageIDs(ctx context.Context, filter models.MessageFilter, scopes ...Scope) ([]string, error)
	CreateMessage(ctx context.Context, msg *models.Message) (string, error)
	UpdateMessageBody(ctx context.Context, id, body string) error
	DeleteMessages(ctx context.Context, ids []string) (int64, error)
}

// CapabilityStore holds elevated capabilities.
type CapabilityStore interface {
	HasCapability(ctx context.Context, userID string, name models.CapabilityName) (bool, error)
	ListCapabilities(ctx context.Context, userID string) ([]*models.Capability, error)
	GrantCapability(ctx context.Context, c *models.Capability) error
	RevokeCapability(ctx context.Context, userID string, name models.CapabilityName) error
}

// AuditStore holds the decision audit log.
type AuditStore interface {
	AppendAudit(ctx context.Context, e *models.AuditEntry) error
	ListAudit(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error)
}

// Store is the full persistence surface.
type Store interface {
	CredentialStore
	ProjectStore
	RecordStore
	MessageStore
	CapabilityStore
	AuditStore

	// Transaction runs fn in a transaction. The Store passed to fn is bound
	// to it; an error from fn rolls back every write fn made.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// DB returns the GORM handle, bound to the transaction if any.
	DB() *gorm.DB

	// Dialect returns the backend type.
	Dialect() DatabaseType

	Healthcheck(ctx context.Context) error
	OpenConnections() int
	Close() error
}
