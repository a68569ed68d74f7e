package policy

import (
	"context"
	"errors"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// Identity is who an operation runs as, resolved for that operation only.
type Identity struct {
	UserID        string
	Username      string
	PrincipalID   string
	PrincipalName string
	Admin         bool
	CanDelete     bool
}

// Anonymous is the identity of a connection with no valid login.
var Anonymous = Identity{}

// Authenticated reports whether the identity maps to an enabled user.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// ViaPrincipal reports whether the connection authenticated as a durable
// principal.
func (i Identity) ViaPrincipal() bool {
	return i.PrincipalID != ""
}

// Resolve reads the identity bound to sess from st. A principal binding is
// followed to the user it aliases as of now. Missing or disabled principals
// and users resolve to Anonymous, so their open sessions lose all access at
// once.
func Resolve(ctx context.Context, st store.Store, sess *session.Context) (Identity, error) {
	if sess == nil {
		return Anonymous, nil
	}
	b, ok := sess.Current()
	if !ok {
		return Anonymous, nil
	}

	id := Identity{UserID: b.UserID}
	if b.PrincipalID != "" {
		p, err := st.GetPrincipal(ctx, b.PrincipalID)
		if errors.Is(err, models.ErrPrincipalNotFound) {
			return Anonymous, nil
		}
		if err != nil {
			return Anonymous, err
		}
		if !p.Enabled {
			return Anonymous, nil
		}
		id.UserID = p.UserID
		id.PrincipalID = p.ID
		id.PrincipalName = p.Name
	}

	if id.UserID == "" {
		return Anonymous, nil
	}
	u, err := st.GetUserByID(ctx, id.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		return Anonymous, nil
	}
	if err != nil {
		return Anonymous, err
	}
	if !u.Enabled {
		return Anonymous, nil
	}
	id.Username = u.Username
	id.Admin = u.IsAdmin()

	id.CanDelete, err = st.HasCapability(ctx, u.ID, models.CapabilityDelete)
	if err != nil {
		return Anonymous, err
	}
	return id, nil
}
