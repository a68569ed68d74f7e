// Package privilege manages project grants: who holds which level on
// which project.
//
// Every mutation runs as a guarded policy operation. The caller must own
// the project, the grantee must be an enabled user, and a project never
// loses its last owner. Changes are visible to the very next operation of
// every connection because identities and levels are never cached.
package privilege

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// Registry grants and revokes project levels.
type Registry struct {
	engine *policy.Engine
}

// New creates a Registry that runs its operations through engine.
func New(engine *policy.Engine) *Registry {
	return &Registry{engine: engine}
}

// Grant gives granteeID level on projectID, creating the grant or changing
// its level. Only an owner of the project may call it; to anyone else,
// including when the project does not exist, it is ErrPermissionDenied.
func (r *Registry) Grant(ctx context.Context, sess *session.Context, projectID, granteeID string, level models.Level) (*models.Grant, error) {
	if !level.IsValid() {
		return nil, models.ErrInvalidLevel
	}

	var grant *models.Grant
	op := policy.Op{Operation: policy.OpGrant, Collection: policy.Grants, Target: projectID + "/" + granteeID}
	err := r.engine.Guard(ctx, sess, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := checkOwner(ctx, tx, id, policy.OpGrant, projectID); err != nil {
			return err
		}

		grantee, err := tx.GetUserByID(ctx, granteeID)
		if errors.Is(err, models.ErrUserNotFound) {
			return models.ErrUnknownGrantee
		}
		if err != nil {
			return err
		}
		if !grantee.Enabled {
			return models.ErrUnknownGrantee
		}

		current, err := tx.GrantLevel(ctx, projectID, granteeID)
		if err != nil {
			return err
		}
		if current == models.LevelOwner && level != models.LevelOwner {
			if err := keepAnOwner(ctx, tx, projectID); err != nil {
				return err
			}
		}

		grant = &models.Grant{
			ProjectID: projectID,
			UserID:    granteeID,
			Level:     level,
			GrantedBy: id.UserID,
		}
		if err := tx.PutGrant(ctx, grant); err != nil {
			return err
		}
		grant, err = tx.GetGrant(ctx, projectID, granteeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "grant applied",
		logger.ProjectID(projectID),
		logger.GranteeID(granteeID),
		logger.LevelAttr(level.String()),
	)
	return grant, nil
}

// Revoke removes granteeID's grant on projectID. Removing the last owner
// grant is ErrLastOwner; a missing grant is ErrNoSuchGrant.
func (r *Registry) Revoke(ctx context.Context, sess *session.Context, projectID, granteeID string) error {
	op := policy.Op{Operation: policy.OpRevoke, Collection: policy.Grants, Target: projectID + "/" + granteeID}
	err := r.engine.Guard(ctx, sess, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := checkOwner(ctx, tx, id, policy.OpRevoke, projectID); err != nil {
			return err
		}

		current, err := tx.GrantLevel(ctx, projectID, granteeID)
		if err != nil {
			return err
		}
		if current == models.LevelNone {
			return models.ErrNoSuchGrant
		}
		if current == models.LevelOwner {
			if err := keepAnOwner(ctx, tx, projectID); err != nil {
				return err
			}
		}
		return tx.DeleteGrant(ctx, projectID, granteeID)
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "grant revoked",
		logger.ProjectID(projectID),
		logger.GranteeID(granteeID),
	)
	return nil
}

// ListGrantsVisibleTo returns the grants userID may see: every grant on the
// projects userID owns, plus userID's own grant rows elsewhere.
func (r *Registry) ListGrantsVisibleTo(ctx context.Context, userID string) ([]*models.Grant, error) {
	return r.engine.Store().ListGrants(ctx, policy.VisibleGrants(policy.Identity{UserID: userID}))
}

// ListGrants returns the grants visible to the identity of sess, limited to
// projectID when it is set. Anonymous sessions see none.
func (r *Registry) ListGrants(ctx context.Context, sess *session.Context, projectID string) ([]*models.Grant, error) {
	var grants []*models.Grant
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Grants, Target: projectID}
	err := r.engine.Guard(ctx, sess, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		grants, err = tx.ListGrants(ctx, policy.VisibleGrants(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if projectID == "" {
		return grants, nil
	}
	return lo.Filter(grants, func(g *models.Grant, _ int) bool {
		return g.ProjectID == projectID
	}), nil
}

// checkOwner locks projectID and requires id to own it. A missing project
// is denied exactly like a project id does not own.
func checkOwner(ctx context.Context, tx store.Store, id policy.Identity, op policy.Operation, projectID string) error {
	if !id.Authenticated() {
		return policy.CheckManageGrants(id, op, models.LevelNone)
	}
	_, err := tx.LockProject(ctx, projectID)
	if errors.Is(err, models.ErrProjectNotFound) {
		return policy.CheckManageGrants(id, op, models.LevelNone)
	}
	if err != nil {
		return err
	}
	level, err := policy.LevelOn(ctx, tx, id, projectID)
	if err != nil {
		return err
	}
	return policy.CheckManageGrants(id, op, level)
}

// keepAnOwner fails when projectID has a single owner left.
func keepAnOwner(ctx context.Context, tx store.ProjectStore, projectID string) error {
	owners, err := tx.CountOwners(ctx, projectID)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return models.ErrLastOwner
	}
	return nil
}
