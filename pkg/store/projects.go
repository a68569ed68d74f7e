package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// PROJECT OPERATIONS
// ============================================

func (s *GORMStore) GetProject(ctx context.Context, id string, scopes ...Scope) (*models.Project, error) {
	return getByField[models.Project](s.db, ctx, "id", id, models.ErrProjectNotFound, scopes...)
}

func (s *GORMStore) ListProjects(ctx context.Context, scopes ...Scope) ([]*models.Project, error) {
	return listScoped[models.Project](s.db, ctx, "created_at, id", scopes...)
}

func (s *GORMStore) CountProjects(ctx context.Context, scopes ...Scope) (int64, error) {
	return countScoped[models.Project](s.db, ctx, scopes...)
}

// LockProject reads a project and, on PostgreSQL, holds a row lock on it
// until the surrounding transaction ends. Grant changes on the same project
// serialize on this lock. SQLite already serializes writers.
func (s *GORMStore) LockProject(ctx context.Context, id string) (*models.Project, error) {
	q := s.db
	if s.config.Type == DatabaseTypePostgres {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return getByField[models.Project](q, ctx, "id", id, models.ErrProjectNotFound)
}

// CreateProject inserts the project and its first owner grant in one
// transaction, so no project ever exists without an owner.
func (s *GORMStore) CreateProject(ctx context.Context, project *models.Project, ownerID string) (string, error) {
	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = createWithID(tx, ctx, project, func(p *models.Project, id string) { p.ID = id }, project.ID, models.ErrConflict)
		if err != nil {
			return err
		}
		owner := &models.Grant{
			ProjectID: id,
			UserID:    ownerID,
			Level:     models.LevelOwner,
			GrantedBy: ownerID,
		}
		if err := tx.Create(owner).Error; err != nil {
			if isForeignKeyError(err) {
				return models.ErrUnknownGrantee
			}
			return err
		}
		return nil
	})
	return id, err
}

// UpdateProject applies cols to the project.
func (s *GORMStore) UpdateProject(ctx context.Context, id string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	cols["updated_at"] = time.Now()
	result := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

// DeleteProject removes the project with its records and grants.
func (s *GORMStore) DeleteProject(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Record{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Grant{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrProjectNotFound
		}
		return nil
	})
}
