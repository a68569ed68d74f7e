package policy

import (
	"context"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/store"
)

// Auditor records authorization decisions for later review.
type Auditor interface {
	// LogDecision records one decision.
	LogDecision(ctx context.Context, entry *models.AuditEntry) error
}

// StoreAuditor writes decisions to the audit_entries table.
type StoreAuditor struct {
	store store.AuditStore
}

// NewStoreAuditor creates an Auditor backed by s.
func NewStoreAuditor(s store.AuditStore) *StoreAuditor {
	return &StoreAuditor{store: s}
}

// LogDecision appends entry to the audit log.
func (a *StoreAuditor) LogDecision(ctx context.Context, entry *models.AuditEntry) error {
	return a.store.AppendAudit(ctx, entry)
}

// auditable reports whether a decision is kept in the audit log: every
// denial, and every successful change to who can do what.
func auditable(op Operation, c Collection, err error) bool {
	if isDenied(err) {
		return true
	}
	if err != nil {
		return false
	}
	switch {
	case op == OpGrant, op == OpRevoke, op == OpDelete:
		return true
	case c == Principals || c == Capabilities:
		return op != OpSelect
	}
	return false
}
