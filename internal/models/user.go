package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleSuperAdmin       UserRole = "super-admin"
	RoleAdmin            UserRole = "admin"
	RoleProgramAdmin     UserRole = "program-admin"
	RoleProgramManager   UserRole = "program-manager"
	RoleProgramModerator UserRole = "program-moderator"
)

// ProgramUserRoles are the role kinds managed through the program-user endpoints.
var ProgramUserRoles = []UserRole{RoleProgramAdmin, RoleProgramManager, RoleProgramModerator}

type User struct {
	ID           string         `gorm:"type:uuid;primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(30);not null" json:"role"`
	ProgramID    *string        `gorm:"type:uuid;index" json:"program_id"`
	Status       string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Program *Program `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// BelongsToProgram reports whether the user is scoped to the given program.
func (u *User) BelongsToProgram(programID string) bool {
	return u.ProgramID != nil && *u.ProgramID == programID
}
