package policy

import (
	"github.com/marmos91/rowguard/pkg/models"
)

// Operation is the kind of access being decided.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpGrant  Operation = "grant"
	OpRevoke Operation = "revoke"
	OpCreate Operation = "create"
)

// Collection names a guarded table.
type Collection string

const (
	Projects     Collection = "projects"
	Records      Collection = "records"
	Messages     Collection = "messages"
	Grants       Collection = "grants"
	Users        Collection = "users"
	Principals   Collection = "principals"
	Capabilities Collection = "capabilities"
	Audit        Collection = "audit"
)

// Denial reasons.
const (
	ReasonAnonymous     = "no authenticated identity"
	ReasonNoGrant       = "no grant on project"
	ReasonReadOnly      = "reader grant does not allow writes"
	ReasonNotOwner      = "only an owner can manage grants"
	ReasonNoDeleteCap   = "delete capability required"
	ReasonSpoofedSender = "from_user_id must equal the current identity"
	ReasonNotSender     = "only the sender can edit a message"
	ReasonNotAdmin      = "administrator role required"
	ReasonPartialWrite  = "statement matches rows the caller cannot write"
	ReasonNotVisible    = "target does not exist or is not visible"
)

func deny(op Operation, c Collection, reason string) error {
	return models.Deny(string(op), string(c), reason)
}

// CanSelect reports whether a row governed by a project grant of level is
// visible to id.
func CanSelect(id Identity, level models.Level) bool {
	return id.Authenticated() && level.CanRead()
}

// CanSelectMessage reports whether m is visible to id.
func CanSelectMessage(id Identity, m *models.Message) bool {
	return id.Authenticated() && m.Involves(id.UserID)
}

// CheckCreateProject allows any authenticated identity to create a project.
func CheckCreateProject(id Identity) error {
	if !id.Authenticated() {
		return deny(OpInsert, Projects, ReasonAnonymous)
	}
	return nil
}

// CheckWrite allows inserts and updates on c for writers and owners of the
// owning project.
func CheckWrite(id Identity, op Operation, c Collection, level models.Level) error {
	switch {
	case !id.Authenticated():
		return deny(op, c, ReasonAnonymous)
	case level == models.LevelNone:
		return deny(op, c, ReasonNoGrant)
	case !level.CanWrite():
		return deny(op, c, ReasonReadOnly)
	}
	return nil
}

// CheckInsert is CheckWrite for inserts.
func CheckInsert(id Identity, c Collection, level models.Level) error {
	return CheckWrite(id, OpInsert, c, level)
}

// CheckUpdate is CheckWrite for updates.
func CheckUpdate(id Identity, c Collection, level models.Level) error {
	return CheckWrite(id, OpUpdate, c, level)
}

// CheckDelete allows deletes only with the delete capability. Project
// levels do not matter.
func CheckDelete(id Identity, c Collection) error {
	switch {
	case !id.Authenticated():
		return deny(OpDelete, c, ReasonAnonymous)
	case !id.CanDelete:
		return deny(OpDelete, c, ReasonNoDeleteCap)
	}
	return nil
}

// CheckManageGrants allows grant and revoke for owners only.
func CheckManageGrants(id Identity, op Operation, level models.Level) error {
	switch {
	case !id.Authenticated():
		return deny(op, Grants, ReasonAnonymous)
	case !level.CanAdmin():
		return deny(op, Grants, ReasonNotOwner)
	}
	return nil
}

// CheckInsertMessage requires the sender to be the caller.
func CheckInsertMessage(id Identity, m *models.Message) error {
	switch {
	case !id.Authenticated():
		return deny(OpInsert, Messages, ReasonAnonymous)
	case m.FromUserID != id.UserID:
		return deny(OpInsert, Messages, ReasonSpoofedSender)
	}
	return nil
}

// CheckUpdateMessage allows the sender to edit a message they can see.
func CheckUpdateMessage(id Identity, m *models.Message) error {
	switch {
	case !id.Authenticated():
		return deny(OpUpdate, Messages, ReasonAnonymous)
	case m.FromUserID != id.UserID:
		return deny(OpUpdate, Messages, ReasonNotSender)
	}
	return nil
}

// CheckAdmin allows administrative provisioning (users, capabilities).
func CheckAdmin(id Identity, op Operation, c Collection) error {
	switch {
	case !id.Authenticated():
		return deny(op, c, ReasonAnonymous)
	case !id.Admin:
		return deny(op, c, ReasonNotAdmin)
	}
	return nil
}

// CheckCreatePrincipal allows any authenticated identity to create a
// durable principal aliasing itself.
func CheckCreatePrincipal(id Identity) error {
	if !id.Authenticated() {
		return deny(OpCreate, Principals, ReasonAnonymous)
	}
	return nil
}

// CanManagePrincipal reports whether id may see or disable p: the user it
// aliases, or an administrator.
func CanManagePrincipal(id Identity, p *models.Principal) bool {
	return id.Authenticated() && (p.UserID == id.UserID || id.Admin)
}

// CheckTarget denies a single-row write whose target id cannot see.
// Missing and invisible targets get the same answer.
func CheckTarget(id Identity, op Operation, c Collection, visible bool) error {
	switch {
	case !id.Authenticated():
		return deny(op, c, ReasonAnonymous)
	case !visible:
		return deny(op, c, ReasonNotVisible)
	}
	return nil
}

// CheckBulkWrite denies a filtered write when some of the visible rows it
// matches are not writable. The statement applies to all of them or none.
func CheckBulkWrite(id Identity, op Operation, c Collection, visible, writable int) error {
	switch {
	case !id.Authenticated():
		return deny(op, c, ReasonAnonymous)
	case writable < visible:
		return deny(op, c, ReasonPartialWrite)
	}
	return nil
}
