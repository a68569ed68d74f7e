package models

// AllModels returns all GORM models for auto-migration, parents first.
func AllModels() []any {
	return []any{
		&User{},
		&Project{},
		&Grant{},
		&Record{},
		&Message{},
		&Principal{},
		&Capability{},
		&AuditEntry{},
	}
}
