package policy

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/internal/telemetry"
	"github.com/marmos91/rowguard/pkg/metrics"
	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/session"
	"github.com/marmos91/rowguard/pkg/store"
)

// Engine runs guarded operations against a store.
type Engine struct {
	store   store.Store
	auditor Auditor
	metrics metrics.AuthzMetrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuditor records decisions with a.
func WithAuditor(a Auditor) Option {
	return func(e *Engine) { e.auditor = a }
}

// WithMetrics reports decisions to m. A nil m disables metrics.
func WithMetrics(m metrics.AuthzMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine over s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store the engine guards.
func (e *Engine) Store() store.Store {
	return e.store
}

// Metrics returns the configured metrics sink, possibly nil.
func (e *Engine) Metrics() metrics.AuthzMetrics {
	return e.metrics
}

// Op describes a guarded operation for logs, traces and the audit log.
type Op struct {
	Operation  Operation
	Collection Collection
	Target     string
}

// GuardFunc is the body of a guarded operation. tx is bound to the
// operation's transaction and id was resolved inside it.
type GuardFunc func(ctx context.Context, tx store.Store, id Identity) error

// Guard resolves the identity of sess and runs fn in one transaction. Any
// error from fn, including a denial, rolls back every write fn made. The
// decision is observed after the transaction ends.
func (e *Engine) Guard(ctx context.Context, sess *session.Context, op Op, fn GuardFunc) error {
	start := time.Now()
	ctx, span := telemetry.StartOperationSpan(ctx, string(op.Operation), string(op.Collection))
	defer span.End()

	var id Identity
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		id, err = Resolve(ctx, tx, sess)
		if err != nil {
			return err
		}
		return fn(ctx, tx, id)
	})

	e.observe(ctx, id, op, err)
	if e.metrics != nil {
		e.metrics.RecordOperation(string(op.Operation), string(op.Collection), time.Since(start))
	}
	return err
}

// ResolveSession resolves sess outside of any operation.
func (e *Engine) ResolveSession(ctx context.Context, sess *session.Context) (Identity, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanResolve)
	defer span.End()
	return Resolve(ctx, e.store, sess)
}

// observe reports the outcome of op. Only allow and deny are decisions;
// other errors (not found, invariant) are the caller's to report.
func (e *Engine) observe(ctx context.Context, id Identity, op Op, err error) {
	telemetry.SetAttributes(ctx, telemetry.Identity(id.UserID, id.PrincipalName)...)

	var decision string
	switch {
	case err == nil:
		decision = models.DecisionAllow
	case isDenied(err):
		decision = models.DecisionDeny
	default:
		telemetry.RecordError(ctx, err)
		return
	}

	reason := models.DenialReason(err)
	telemetry.SetAttributes(ctx, telemetry.Decision(decision, reason)...)
	if e.metrics != nil {
		e.metrics.RecordDecision(string(op.Operation), string(op.Collection), decision)
	}

	if decision == models.DecisionDeny {
		logger.DebugCtx(ctx, "policy denied operation",
			logger.KeyUserID, id.UserID,
			logger.KeyOperation, string(op.Operation),
			logger.KeyCollection, string(op.Collection),
			logger.KeyReason, reason,
		)
	}

	if e.auditor == nil || !auditable(op.Operation, op.Collection, err) {
		return
	}
	entry := &models.AuditEntry{
		Timestamp:   time.Now(),
		UserID:      id.UserID,
		PrincipalID: id.PrincipalID,
		Operation:   string(op.Operation),
		Collection:  string(op.Collection),
		Target:      op.Target,
		Decision:    decision,
		Reason:      reason,
	}
	if aerr := e.auditor.LogDecision(ctx, entry); aerr != nil {
		logger.WarnCtx(ctx, "failed to write audit entry", logger.Err(aerr))
	}
}

func isDenied(err error) bool {
	return errors.Is(err, models.ErrPermissionDenied)
}

// LevelOn returns the level id holds on projectID, LevelNone for Anonymous.
func LevelOn(ctx context.Context, tx store.ProjectStore, id Identity, projectID string) (models.Level, error) {
	if !id.Authenticated() {
		return models.LevelNone, nil
	}
	return tx.GrantLevel(ctx, projectID, id.UserID)
}
