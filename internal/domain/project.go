package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project owns its deliverables exclusively: deleting a project deletes them.
type Project struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string          `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description *string         `gorm:"column:description" json:"description,omitempty"`
	ManagerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"manager_id"`
	Manager     *ProjectManager `gorm:"foreignKey:ManagerID;references:ID" json:"manager,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "projects" }
