package models

import "time"

// Project is the top-level shareable resource. Access to it and to its
// records is governed by Grant rows.
type Project struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	CreatedBy   string    `gorm:"size:36;index" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Project.
func (Project) TableName() string {
	return "projects"
}

// Grant gives a user a Level on a project. (ProjectID, UserID) is unique.
type Grant struct {
	ProjectID string    `gorm:"primaryKey;size:36" json:"project_id"`
	UserID    string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	Level     Level     `gorm:"not null;size:16" json:"level"`
	GrantedBy string    `gorm:"size:36" json:"granted_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
}

// TableName returns the table name for Grant.
func (Grant) TableName() string {
	return "grants"
}

// Record is child data of a project: a rock sample with its lithology and
// geological period. Rights on a record are the grantee's rights on its
// project.
type Record struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ProjectID  string    `gorm:"not null;size:36;index" json:"project_id"`
	Lithology  string    `gorm:"size:255" json:"lithology"`
	TimePeriod string    `gorm:"size:255" json:"time_period"`
	Age        float64   `json:"age"`
	Notes      string    `gorm:"size:1024" json:"notes,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Record.
func (Record) TableName() string {
	return "records"
}

// RecordFilter selects records for bulk reads and updates. Empty fields
// match everything.
type RecordFilter struct {
	ProjectID  string
	Lithology  string
	TimePeriod string
}

// RecordPatch lists the record fields an update may change. Nil means
// unchanged.
type RecordPatch struct {
	ProjectID  *string  `json:"project_id,omitempty"`
	Lithology  *string  `json:"lithology,omitempty"`
	TimePeriod *string  `json:"time_period,omitempty"`
	Age        *float64 `json:"age,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// Columns returns the patch as a column map for an UPDATE statement.
func (p RecordPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.ProjectID != nil {
		cols["project_id"] = *p.ProjectID
	}
	if p.Lithology != nil {
		cols["lithology"] = *p.Lithology
	}
	if p.TimePeriod != nil {
		cols["time_period"] = *p.TimePeriod
	}
	if p.Age != nil {
		cols["age"] = *p.Age
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}

// ProjectPatch lists the project fields an update may change.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Columns returns the patch as a column map.
func (p ProjectPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	return cols
}
