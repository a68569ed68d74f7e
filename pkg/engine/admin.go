package engine

import (
	"context"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/policy"
	"github.com/marmos91/rowguard/pkg/store"
)

// NewUser describes a user to provision.
type NewUser struct {
	Username    string          `json:"username" validate:"required,max=255"`
	Password    string          `json:"password" validate:"required"`
	Role        models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	DisplayName string          `json:"display_name,omitempty"`
	Email       string          `json:"email,omitempty" validate:"omitempty,email"`
}

// CreateUser provisions a user. The current user must be an administrator.
func (c *Conn) CreateUser(ctx context.Context, nu NewUser) (*models.User, error) {
	if err := models.ValidatePassword(nu.Password); err != nil {
		return nil, err
	}
	hash, err := models.HashPasswordWithCost(nu.Password, c.engine.store.BcryptCost())
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     nu.Username,
		PasswordHash: hash,
		Enabled:      true,
		Role:         string(nu.Role),
		DisplayName:  nu.DisplayName,
		Email:        nu.Email,
	}
	op := policy.Op{Operation: policy.OpCreate, Collection: policy.Users, Target: nu.Username}
	err = c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckAdmin(id, policy.OpCreate, policy.Users); err != nil {
			return err
		}
		_, err := tx.CreateUser(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "user created", logger.Username(u.Username), logger.UserID(u.ID))
	return u, nil
}

// SetUserEnabled disables or re-enables a user. Disabling takes effect on
// the next operation of every connection bound to the user.
func (c *Conn) SetUserEnabled(ctx context.Context, userID string, enabled bool) error {
	op := policy.Op{Operation: policy.OpUpdate, Collection: policy.Users, Target: userID}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckAdmin(id, policy.OpUpdate, policy.Users); err != nil {
			return err
		}
		return tx.SetUserEnabled(ctx, userID, enabled)
	})
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "user updated", logger.UserID(userID), "enabled", enabled)
	return nil
}

// GrantCapability gives userID an elevated capability.
func (c *Conn) GrantCapability(ctx context.Context, userID string, name models.CapabilityName) error {
	op := policy.Op{Operation: policy.OpGrant, Collection: policy.Capabilities, Target: userID + "/" + string(name)}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckAdmin(id, policy.OpGrant, policy.Capabilities); err != nil {
			return err
		}
		return tx.GrantCapability(ctx, &models.Capability{UserID: userID, Name: name, GrantedBy: id.UserID})
	})
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "capability granted", logger.GranteeID(userID), "capability", string(name))
	return nil
}

// RevokeCapability removes an elevated capability from userID.
func (c *Conn) RevokeCapability(ctx context.Context, userID string, name models.CapabilityName) error {
	op := policy.Op{Operation: policy.OpRevoke, Collection: policy.Capabilities, Target: userID + "/" + string(name)}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if err := policy.CheckAdmin(id, policy.OpRevoke, policy.Capabilities); err != nil {
			return err
		}
		return tx.RevokeCapability(ctx, userID, name)
	})
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "capability revoked", logger.GranteeID(userID), "capability", string(name))
	return nil
}

// ListAudit returns recent audit entries, newest first. Administrators
// see everyone's; other users see only their own.
func (c *Conn) ListAudit(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry
	op := policy.Op{Operation: policy.OpSelect, Collection: policy.Audit}
	err := c.guard(ctx, op, func(ctx context.Context, tx store.Store, id policy.Identity) error {
		if !id.Authenticated() {
			entries = []*models.AuditEntry{}
			return nil
		}
		userID := id.UserID
		if id.Admin {
			userID = ""
		}
		var err error
		entries, err = tx.ListAudit(ctx, userID, limit)
		return err
	})
	return entries, err
}
