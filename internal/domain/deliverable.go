package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Frequency string

const (
	FrequencyMonthly    Frequency = "M"
	FrequencyQuarterly  Frequency = "Q"
	FrequencySemiAnnual Frequency = "SA"
	FrequencyAnnual     Frequency = "A"
	FrequencyOneTime    Frequency = "OT"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnual, FrequencyAnnual, FrequencyOneTime:
		return true
	}
	return false
}

// Display returns the human-readable frequency name.
func (f Frequency) Display() string {
	switch f {
	case FrequencyMonthly:
		return "Monthly"
	case FrequencyQuarterly:
		return "Quarterly"
	case FrequencySemiAnnual:
		return "Semi-Annual"
	case FrequencyAnnual:
		return "Annual"
	case FrequencyOneTime:
		return "One-Time"
	}
	return string(f)
}

type DeliverableStatus string

const (
	StatusPending    DeliverableStatus = "pending"
	StatusInProgress DeliverableStatus = "in_progress"
	StatusCompleted  DeliverableStatus = "completed"
)

func (s DeliverableStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Deliverable is a dated obligation owned by a project. The natural key
// (project, due date, frequency, description) is unique among non-deleted
// rows; the import pipeline enforces this, not the schema.
type Deliverable struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"project_id"`
	Project     *Project          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Description string            `gorm:"column:description;not null" json:"description"`
	DueDate     time.Time         `gorm:"column:due_date;type:date;not null;index" json:"due_date"`
	Frequency   Frequency         `gorm:"column:frequency;type:varchar(10);not null" json:"frequency"`
	Status      DeliverableStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	Notes       *string           `gorm:"column:notes" json:"notes,omitempty"`
	CompletedAt *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (Deliverable) TableName() string { return "deliverables" }

// IsOverdue is derived, never stored: a deliverable is overdue when it is
// not completed and its due date has passed.
func (d *Deliverable) IsOverdue(today time.Time) bool {
	if d.Status == StatusCompleted {
		return false
	}
	return DateOnly(today).After(DateOnly(d.DueDate))
}

// DaysUntilDue is negative once the due date has passed.
func (d *Deliverable) DaysUntilDue(today time.Time) int {
	return int(DateOnly(d.DueDate).Sub(DateOnly(today)).Hours() / 24)
}

// UTCToday returns today's date in UTC so overdue and date-range logic is
// consistent regardless of server timezone.
func UTCToday() time.Time {
	return DateOnly(time.Now().UTC())
}

// DateOnly truncates a timestamp to a UTC calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DeliverableFilter is the multi-criteria query shape for deliverables.
type DeliverableFilter struct {
	ProjectID        *uuid.UUID
	ProjectName      string
	ManagerID        *uuid.UUID
	Status           *DeliverableStatus
	Frequency        *Frequency
	DueBefore        *time.Time
	DueAfter         *time.Time
	IncludeCompleted bool
	Search           string
}

// DeliverableSummary holds aggregate counts over non-completed deliverables.
type DeliverableSummary struct {
	Total        int64 `json:"total"`
	Overdue      int64 `json:"overdue"`
	DueToday     int64 `json:"due_today"`
	DueThisWeek  int64 `json:"due_this_week"`
	DueThisMonth int64 `json:"due_this_month"`
}
