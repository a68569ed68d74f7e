package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/store"
)

// CreateProject creates a project owned by the current user. The project
// always gets a fresh id; any id set by the caller is discarded.
func (c *Conn) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, models.ErrEmptyName
	}
	op := policy.Op{Operation: policy.OpInsert, Collection: policy.Projects}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckCreateProject(id); err != nil {
			return err
		}
		p.ID = ""
		p.CreatedBy = id.UserID
		_, err := tx.CreateProject(ctx, p, id.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject returns a visible project. Invisible and missing projects are
// both ErrProjectNotFound.
func (c *Conn) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var p *models.Project
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Projects, Target: projectID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		p, err = tx.GetProject(ctx, projectID, policy.VisibleProjects(id))
		return err
	})
	return p, err
}

// ListProjects returns the projects the current user holds any grant on.
func (c *Conn) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Projects}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		var err error
		projects, err = tx.ListProjects(ctx, policy.VisibleProjects(id))
		return err
	})
	return projects, err
}

// UpdateProject applies patch to a project the current user can write.
func (c *Conn) UpdateProject(ctx context.Context, projectID string, patch models.ProjectPatch) (*models.Project, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, models.ErrEmptyName
	}
	var p *models.Project
	op := policy.Op{Operation: policy.OpUpdate, Collection: policy.Projects, Target: projectID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		level, err := visibleLevel(ctx, tx, id, policy.OpUpdate, policy.Projects, projectID)
		if err != nil {
			return err
		}
		if err := policy.CheckUpdate(id, policy.Projects, level); err != nil {
			return err
		}
		if err := tx.UpdateProject(ctx, projectID, patch.Columns()); err != nil {
			return err
		}
		p, err = tx.GetProject(ctx, projectID)
		return err
	})
	return p, err
}

// DeleteProject removes a project with its records and grants. It needs
// the delete capability; project levels do not matter.
func (c *Conn) DeleteProject(ctx context.Context, projectID string) error {
	op := policy.Op{Operation: policy.OpDelete, Collection: policy.Projects, Target: projectID}
	return c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckDelete(id, policy.Projects); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, projectID)
	})
}

// visibleLevel returns id's level on projectID for a single-row write,
// denying when id holds no grant at all. A missing project and a project id
// cannot see are denied alike.
func visibleLevel(ctx context.Context, tx store.Store, id policy.Identity, op policy.Operation, c policy.Collection, projectID string) (models.Level, error) {
	if !id.Authenticated() {
		return models.LevelNone, policy.CheckTarget(id, op, c, false)
	}
	_, err := tx.GetProject(ctx, projectID)
	if errors.Is(err, models.ErrProjectNotFound) {
		return models.LevelNone, policy.CheckTarget(id, op, c, false)
	}
	if err != nil {
		return models.LevelNone, err
	}
	level, err := policy.LevelOn(ctx, tx, id, projectID)
	if err != nil {
		return models.LevelNone, err
	}
	if err := policy.CheckTarget(id, op, c, policy.CanSelect(id, level)); err != nil {
		return models.LevelNone, err
	}
	return level, nil
}
