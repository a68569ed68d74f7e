package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for authorization spans.
const (
	AttrOperation  = "authz.operation"
	AttrCollection = "authz.collection"
	AttrDecision   = "authz.decision"
	AttrReason     = "authz.reason"
	AttrUserID     = "authz.user_id"
	AttrPrincipal  = "authz.principal"
	AttrProjectID  = "authz.project_id"
	AttrRows       = "authz.rows"
	AttrClientIP   = "client.ip"
)

// Span names.
const (
	SpanLogin           = "auth.login"
	SpanPrincipalLogin  = "auth.principal_login"
	SpanResolve         = "policy.resolve"
	SpanGrant           = "privilege.grant"
	SpanRevoke          = "privilege.revoke"
	SpanListGrants      = "privilege.list"
	SpanCreatePrincipal = "principal.create"
)

// StartOperationSpan starts a span for a guarded data operation.
func StartOperationSpan(ctx context.Context, operation, collection string) (context.Context, trace.Span) {
	return StartSpan(ctx, collection+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrOperation, operation),
			attribute.String(AttrCollection, collection),
		),
	)
}

// Identity returns the identity attributes for a span.
func Identity(userID, principal string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrUserID, userID)}
	if principal != "" {
		attrs = append(attrs, attribute.String(AttrPrincipal, principal))
	}
	return attrs
}

// Decision returns the decision attributes for a span.
func Decision(decision, reason string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrDecision, decision)}
	if reason != "" {
		attrs = append(attrs, attribute.String(AttrReason, reason))
	}
	return attrs
}
