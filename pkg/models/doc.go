// Package models defines the persistent domain types of rowguard.
//
// Users, projects, grants, records, messages, durable principals,
// capabilities and audit entries are plain GORM models; the privilege
// ladder (Level) and the error taxonomy live here as well so every layer
// shares one vocabulary.
package models
