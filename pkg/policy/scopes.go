package policy

import (
	"gorm.io/gorm"

	"github.com/marmos91/rowguard/pkg/models"
	"github.com/marmos91/rowguard/pkg/store"
)

// Sub-selects used by the scopes below. Every identity value is bound as a
// parameter.
const (
	grantedProjects  = "SELECT g.project_id FROM grants g WHERE g.user_id = ?"
	writableProjects = "SELECT g.project_id FROM grants g WHERE g.user_id = ? AND g.level IN ?"
	ownedProjects    = "SELECT g.project_id FROM grants g WHERE g.user_id = ? AND g.level = ?"
)

var writeLevels = []string{string(models.LevelWriter), string(models.LevelOwner)}

// nothing matches no rows. It is the scope of every read by Anonymous.
func nothing(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// VisibleProjects limits projects to those id holds any grant on.
func VisibleProjects(id Identity) store.Scope {
	if !id.Authenticated() {
		return nothing
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("projects.id IN ("+grantedProjects+")", id.UserID)
	}
}

// WritableProjects limits projects to those id can write.
func WritableProjects(id Identity) store.Scope {
	if !id.Authenticated() {
		return nothing
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("projects.id IN ("+writableProjects+")", id.UserID, writeLevels)
	}
}

// VisibleRecords limits records to those whose project id holds any grant on.
func VisibleRecords(id Identity) store.Scope {
	if !id.Authenticated() {
		return nothing
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("records.project_id IN ("+grantedProjects+")", id.UserID)
	}
}

// WritableRecords limits records to those id can update.
func WritableRecords(id Identity) store.Scope {
	if !id.Authenticated() {
		return nothing
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("records.project_id IN ("+writableProjects+")", id.UserID, writeLevels)
	}
}

// VisibleMessages limits messages to those id sent or received.
func VisibleMessages(id Identity) store.Scope {
	if !id.Authenticated() {
		return nothing
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(messages.from_user_id = ? OR messages.to_user_id = ?)", id.UserID, id.UserID)
	}
}

// VisibleGrants limits grants to id's own rows plus every row on projects
// id owns. Non-owners never learn who else shares a project.
func VisibleGrants(id Identity) store.Scope {
	if !id.Authenticated() {
		return nothing
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(grants.user_id = ? OR grants.project_id IN ("+ownedProjects+"))",
			id.UserID, id.UserID, string(models.LevelOwner))
	}
}

// SelfOnly limits users to id's own row.
func SelfOnly(id Identity) store.Scope {
	if !id.Authenticated() {
		return nothing
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.id = ?", id.UserID)
	}
}
