// Package policy decides what the identity behind a connection may see
// and change.
//
// Decisions are made in three places, all explicit Go code:
//
//   - Resolve turns a session binding into an Identity by re-reading the
//     user (and the principal it came through) on every operation. A
//     disabled or vanished user resolves to Anonymous.
//   - Pure predicates (CheckInsert, CheckUpdate, CheckDelete, ...) judge a
//     single write against the caller's Level on the owning project.
//   - Scopes (VisibleProjects, VisibleRecords, ...) are parameterized SQL
//     filters appended to every read, so invisible rows are never loaded.
//
// Guard ties them together: it opens a transaction, resolves the identity
// inside it, runs the operation, and on the way out records the decision
// in logs, metrics, traces and the audit log. Nothing is cached between
// operations, so grant changes apply to the very next call on any
// connection.
package policy
