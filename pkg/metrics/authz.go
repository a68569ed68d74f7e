package metrics

import "time"

// AuthzMetrics observes authorization activity.
//
// Pass nil to disable collection with zero overhead:
//
//	m := prometheus.NewAuthzMetrics() // nil unless InitRegistry was called
//	eng := policy.New(store, policy.WithMetrics(m))
type AuthzMetrics interface {
	// RecordDecision counts a policy decision.
	//   - operation: select, insert, update, delete, grant, revoke
	//   - collection: projects, records, messages, grants, users, principals
	//   - decision: allow or deny
	RecordDecision(operation, collection, decision string)

	// RecordOperation records how long a guarded operation took, including
	// its authorization reads.
	RecordOperation(operation, collection string, duration time.Duration)

	// RecordLogin counts a login attempt. kind is "user" or "principal",
	// outcome is "success" or "failure".
	RecordLogin(kind, outcome string)

	// SetActiveSessions reports how many connections carry an identity.
	SetActiveSessions(n int)

	// RecordPoolReset counts session resets performed by the connection pool.
	RecordPoolReset()
}
