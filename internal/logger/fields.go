package logger

import "log/slog"

// Standard field keys. Use them consistently so logs can be queried by field.
const (
	// Tracing
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"

	// Identity
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyPrincipal = "principal"
	KeyClientIP  = "client_ip"

	// Authorization
	KeyOperation  = "operation"  // select, insert, update, delete, grant, revoke
	KeyCollection = "collection" // projects, records, messages, grants, users
	KeyProjectID  = "project_id"
	KeyGranteeID  = "grantee_id"
	KeyLevel      = "level"
	KeyDecision   = "decision" // allow, deny
	KeyReason     = "reason"
	KeyRows       = "rows"

	// Transport
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// UserID returns a slog.Attr for the acting identity.
func UserID(id string) slog.Attr { return slog.String(KeyUserID, id) }

// Username returns a slog.Attr for a login name.
func Username(name string) slog.Attr { return slog.String(KeyUsername, name) }

// Principal returns a slog.Attr for a durable principal name.
func Principal(name string) slog.Attr { return slog.String(KeyPrincipal, name) }

// Operation returns a slog.Attr for the operation kind.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// Collection returns a slog.Attr for the target collection.
func Collection(c string) slog.Attr { return slog.String(KeyCollection, c) }

// ProjectID returns a slog.Attr for a project id.
func ProjectID(id string) slog.Attr { return slog.String(KeyProjectID, id) }

// GranteeID returns a slog.Attr for the user receiving a grant.
func GranteeID(id string) slog.Attr { return slog.String(KeyGranteeID, id) }

// LevelAttr returns a slog.Attr for a privilege level.
func LevelAttr(l string) slog.Attr { return slog.String(KeyLevel, l) }

// Decision returns a slog.Attr for an allow/deny decision.
func Decision(d string) slog.Attr { return slog.String(KeyDecision, d) }

// Reason returns a slog.Attr for a decision reason.
func Reason(r string) slog.Attr { return slog.String(KeyReason, r) }

// Rows returns a slog.Attr for a row count.
func Rows(n int64) slog.Attr { return slog.Int64(KeyRows, n) }

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error. A nil error yields an empty Attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
