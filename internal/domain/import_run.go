package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ImportRun is the audit record written after every spreadsheet import
// attempt, successful or not. Errors holds the structured per-row error
// records as produced by the pipeline.
type ImportRun struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Filename            string         `gorm:"column:filename;not null" json:"filename"`
	Success             bool           `gorm:"column:success;not null" json:"success"`
	SkipInvalid         bool           `gorm:"column:skip_invalid;not null;default:true" json:"skip_invalid"`
	TotalRows           int            `gorm:"column:total_rows;not null" json:"total_rows"`
	ImportedRows        int            `gorm:"column:imported_rows;not null" json:"imported_rows"`
	SkippedRows         int            `gorm:"column:skipped_rows;not null" json:"skipped_rows"`
	ManagersCreated     int            `gorm:"column:managers_created;not null" json:"managers_created"`
	ProjectsCreated     int            `gorm:"column:projects_created;not null" json:"projects_created"`
	DeliverablesCreated int            `gorm:"column:deliverables_created;not null" json:"deliverables_created"`
	Errors              datatypes.JSON `gorm:"column:errors;type:jsonb" json:"errors,omitempty"`
	CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ImportRun) TableName() string { return "import_runs" }
