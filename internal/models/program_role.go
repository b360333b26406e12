package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgramRoleStatus string

const (
	ProgramRoleActive   ProgramRoleStatus = "active"
	ProgramRoleInactive ProgramRoleStatus = "inactive"
)

// ProgramRole is a custom, program-scoped service account with an assigned
// set of activities ("events"). Permission identifiers sent alongside a role
// are UI capability flags and are intentionally not persisted.
type ProgramRole struct {
	ID           string            `gorm:"type:uuid;primarykey" json:"id"`
	ProgramID    string            `gorm:"type:uuid;not null;index" json:"program_id"`
	RoleName     string            `gorm:"type:varchar(255);not null" json:"role_name"`
	Username     string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string            `gorm:"type:varchar(255);not null" json:"-"`
	Description  string            `gorm:"type:text" json:"description"`
	Status       ProgramRoleStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`

	// ServiceIDs echoes the accepted capability flags of a create or update
	// request. Never stored.
	ServiceIDs []string `gorm:"-" json:"serviceIds,omitempty"`

	// Relations
	Program *Program   `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	Events  []Activity `gorm:"many2many:program_role_events" json:"events,omitempty"`
}

func (r *ProgramRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
