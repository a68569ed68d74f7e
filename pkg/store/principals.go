package store

import (
	"context"
	"errors"

	"github.com/marmos91/rowguard/pkg/models"
)

// ============================================
// PRINCIPAL OPERATIONS
// ============================================

func (s *GORMStore) GetPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	return getByField[models.Principal](s.db, ctx, "id", id, models.ErrPrincipalNotFound)
}

func (s *GORMStore) GetPrincipalByName(ctx context.Context, name string) (*models.Principal, error) {
	return getByField[models.Principal](s.db, ctx, "name", name, models.ErrPrincipalNotFound)
}

// ListPrincipals returns the principals aliasing userID.
func (s *GORMStore) ListPrincipals(ctx context.Context, userID string) ([]*models.Principal, error) {
	return listScoped[models.Principal](s.db, ctx, "name", whereEq("user_id", userID))
}

func (s *GORMStore) CreatePrincipal(ctx context.Context, p *models.Principal) (string, error) {
	return createWithID(s.db, ctx, p, func(p *models.Principal, id string) { p.ID = id }, p.ID, models.ErrDuplicatePrincipal)
}

// SetPrincipalEnabled enables or disables a principal.
func (s *GORMStore) SetPrincipalEnabled(ctx context.Context, id string, enabled bool) error {
	result := s.db.WithContext(ctx).Model(&models.Principal{}).Where("id = ?", id).Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrPrincipalNotFound
	}
	return nil
}

// ValidatePrincipalCredentials is the principal counterpart of
// ValidateCredentials, with the same uniform failure.
func (s *GORMStore) ValidatePrincipalCredentials(ctx context.Context, name, password string) (*models.Principal, error) {
	p, err := s.GetPrincipalByName(ctx, name)
	if err != nil && !errors.Is(err, models.ErrPrincipalNotFound) {
		return nil, err
	}

	hash := ""
	if p != nil {
		hash = p.PasswordHash
	}
	ok := models.VerifyPasswordWithCost(password, hash, s.BcryptCost())
	if !ok || p == nil || !p.Enabled {
		return nil, models.ErrAuthenticationFailed
	}
	return p, nil
}
