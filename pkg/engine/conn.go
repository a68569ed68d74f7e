package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/marmos91/rowguard/pkg/auth"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// ErrConnClosed is returned by operations on a closed connection.
var ErrConnClosed = errors.New("connection closed")

// Conn is one logical connection. Its operations are meant to be issued
// one at a time; distinct connections run concurrently.
type Conn struct {
	engine    *Engine
	sess      *session.Context
	closeOnce sync.Once

	// borrowed is set while a Pool has lent the connection out. Guarded by
	// that pool's mutex.
	borrowed bool
}

// Session returns the connection's session slot.
func (c *Conn) Session() *session.Context {
	return c.sess
}

// ID identifies the connection.
func (c *Conn) ID() string {
	return c.sess.ID()
}

// Login authenticates a user and binds it to this connection.
func (c *Conn) Login(ctx context.Context, username, password string) (*auth.Handle, error) {
	if c.sess.Closed() {
		return nil, ErrConnClosed
	}
	return c.engine.auth.Login(ctx, c.sess, username, password)
}

// LoginPrincipal authenticates a durable principal and binds it to this
// connection.
func (c *Conn) LoginPrincipal(ctx context.Context, name, password string) (*auth.Handle, error) {
	if c.sess.Closed() {
		return nil, ErrConnClosed
	}
	return c.engine.auth.LoginPrincipal(ctx, c.sess, name, password)
}

// Resume binds a handle issued by an earlier login, such as one carried in
// an API token, without asking for the password again. The user, and the
// principal when the handle names one, must still exist and be enabled;
// every failure is ErrAuthenticationFailed.
func (c *Conn) Resume(ctx context.Context, h *auth.Handle) error {
	if c.sess.Closed() {
		return ErrConnClosed
	}
	if h == nil || h.UserID == "" {
		return models.ErrAuthenticationFailed
	}
	s := c.engine.store
	if h.PrincipalID != "" {
		p, err := s.GetPrincipal(ctx, h.PrincipalID)
		if err != nil || !p.Enabled || p.UserID != h.UserID {
			return models.ErrAuthenticationFailed
		}
	}
	u, err := s.GetUserByID(ctx, h.UserID)
	if err != nil || !u.Enabled {
		return models.ErrAuthenticationFailed
	}
	return c.sess.Bind(session.Binding{
		UserID:        u.ID,
		Username:      u.Username,
		PrincipalID:   h.PrincipalID,
		PrincipalName: h.PrincipalName,
		Since:         h.Since,
	})
}

// Logout clears the identity of this connection. It is idempotent.
func (c *Conn) Logout(ctx context.Context) {
	c.engine.auth.Logout(ctx, c.sess)
}

// CurrentUser returns the user id bound to this connection, if any.
func (c *Conn) CurrentUser() (string, bool) {
	return auth.CurrentUser(c.sess)
}

// Close clears the session and releases the connection. Closing twice is
// a no-op.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.sess.Close()
		c.engine.untrack(c)
	})
}

// guard runs fn as a policy-gated operation of this connection.
func (c *Conn) guard(ctx context.Context, op policy.Op, fn policy.GuardFunc) error {
	if c.sess.Closed() {
		return ErrConnClosed
	}
	return c.engine.policy.Guard(session.WithContext(ctx, c.sess), c.sess, op, fn)
}

// ============================================
// PRIVILEGES AND PRINCIPALS
// ============================================

// Grant gives userID level on projectID. The caller must own the project.
func (c *Conn) Grant(ctx context.Context, projectID, userID string, level models.Level) (*models.Grant, error) {
	if c.sess.Closed() {
		return nil, ErrConnClosed
	}
	return c.engine.registry.Grant(ctx, c.sess, projectID, userID, level)
}

// Revoke removes userID's grant on projectID. The caller must own the
// project, and the project keeps at least one owner.
func (c *Conn) Revoke(ctx context.Context, projectID, userID string) error {
	if c.sess.Closed() {
		return ErrConnClosed
	}
	return c.engine.registry.Revoke(ctx, c.sess, projectID, userID)
}

// ListGrants returns the grants visible to this connection, optionally
// limited to projectID.
func (c *Conn) ListGrants(ctx context.Context, projectID string) ([]*models.Grant, error) {
	if c.sess.Closed() {
		return nil, ErrConnClosed
	}
	return c.engine.registry.ListGrants(ctx, c.sess, projectID)
}

// CreateDurablePrincipal creates a principal aliasing the current user.
func (c *Conn) CreateDurablePrincipal(ctx context.Context, name, password string) (*models.Principal, error) {
	if c.sess.Closed() {
		return nil, ErrConnClosed
	}
	return c.engine.provisioner.CreateDurablePrincipal(ctx, c.sess, name, password)
}

// ListPrincipals returns the principals aliasing the current user.
func (c *Conn) ListPrincipals(ctx context.Context) ([]*models.Principal, error) {
	if c.sess.Closed() {
		return nil, ErrConnClosed
	}
	return c.engine.provisioner.ListPrincipals(ctx, c.sess)
}

// SetPrincipalEnabled enables or disables one of the current user's
// principals.
func (c *Conn) SetPrincipalEnabled(ctx context.Context, name string, enabled bool) error {
	if c.sess.Closed() {
		return ErrConnClosed
	}
	return c.engine.provisioner.SetEnabled(ctx, c.sess, name, enabled)
}

// ============================================
// USERS
// ============================================

// Me returns the current user's own row. Anonymous connections get
// ErrUserNotFound.
func (c *Conn) Me(ctx context.Context) (*models.User, error) {
	var me *models.User
	err := c.guard(ctx, policy.Op{Operation: policy.OpSelect, Collection: policy.Users}, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		users, err := tx.ListUsers(ctx, policy.SelfOnly(id))
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return models.ErrUserNotFound
		}
		me = users[0]
		return nil
	})
	return me, err
}

// ListUsers returns the users visible to this connection: only its own row.
func (c *Conn) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := c.guard(ctx, policy.Op{Operation: policy.OpSelect, Collection: policy.Users}, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		users, err = tx.ListUsers(ctx, policy.SelfOnly(id))
		return err
	})
	return users, err
}
