// Package principal provisions durable login principals.
//
// A principal lets a client connect directly instead of calling login. It
// is a live alias of the user that created it: every operation performed
// through it is evaluated as that user, with the grants the user holds at
// that moment. Disabling either the principal or the user cuts it off at
// once.
package principal

import (
	"context"
	"errors"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// Provisioner creates and manages durable principals.
type Provisioner struct {
	engine *policy.Engine
	cost   int
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithBcryptCost overrides the hashing cost for principal passwords.
func WithBcryptCost(cost int) Option {
	return func(p *Provisioner) { p.cost = cost }
}

// New creates a Provisioner over engine.
func New(engine *policy.Engine, opts ...Option) *Provisioner {
	p := &Provisioner{engine: engine, cost: models.DefaultBcryptCost}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateDurablePrincipal creates a principal named name that aliases the
// user behind sess. The session must be authenticated. A taken name is
// ErrDuplicatePrincipal.
func (p *Provisioner) CreateDurablePrincipal(ctx context.Context, sess *session.Context, name, password string) (*models.Principal, error) {
	if err := models.ValidatePrincipalName(name); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := models.HashPasswordWithCost(password, p.cost)
	if err != nil {
		return nil, err
	}

	var created *models.Principal
	op := policy.Op{Operation: policy.OpCreate, Collection: policy.Principals, Target: name}
	err = p.engine.Guard(ctx, sess, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckCreatePrincipal(id); err != nil {
			return err
		}
		created = &models.Principal{
			Name:         name,
			PasswordHash: hash,
			UserID:       id.UserID,
			Enabled:      true,
		}
		_, err := tx.CreatePrincipal(ctx, created)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "durable principal created",
		logger.Principal(created.Name),
		logger.UserID(created.UserID),
	)
	return created, nil
}

// ListPrincipals returns the principals aliasing the user behind sess.
func (p *Provisioner) ListPrincipals(ctx context.Context, sess *session.Context) ([]*models.Principal, error) {
	var principals []*models.Principal
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Principals}
	err := p.engine.Guard(ctx, sess, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if !id.Authenticated() {
			principals = []*models.Principal{}
			return nil
		}
		var err error
		principals, err = tx.ListPrincipals(ctx, id.UserID)
		return err
	})
	return principals, err
}

// SetEnabled enables or disables the principal called name. Principals the
// caller does not manage are reported as ErrPrincipalNotFound.
func (p *Provisioner) SetEnabled(ctx context.Context, sess *session.Context, name string, enabled bool) error {
	op := policy.Op{Operation: policy.OpUpdate, Collection: policy.Principals, Target: name}
	err := p.engine.Guard(ctx, sess, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		pr, err := tx.GetPrincipalByName(ctx, name)
		if err != nil {
			return err
		}
		if !policy.CanManagePrincipal(id, pr) {
			return models.ErrPrincipalNotFound
		}
		return tx.SetPrincipalEnabled(ctx, pr.ID, enabled)
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "durable principal updated",
		logger.Principal(name),
		"enabled", enabled,
	)
	return nil
}

// Authenticate checks a principal's credentials. Unknown names, wrong
// passwords and disabled principals all return ErrAuthenticationFailed, as
// does a principal whose user is disabled.
func (p *Provisioner) Authenticate(ctx context.Context, name, password string) (*models.Principal, error) {
	st := p.engine.Store()
	pr, err := st.ValidatePrincipalCredentials(ctx, name, password)
	if err != nil {
		return nil, err
	}
	u, err := st.GetUserByID(ctx, pr.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrAuthenticationFailed
	}
	if err != nil {
		return nil, err
	}
	if !u.Enabled {
		return nil, models.ErrAuthenticationFailed
	}
	return pr, nil
}
