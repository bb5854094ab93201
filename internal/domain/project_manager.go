package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectManager is referenced (not owned) by projects; normalized so the
// same manager name is stored once.
type ProjectManager struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Email     *string   `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProjectManager) TableName() string { return "project_managers" }
