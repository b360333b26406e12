package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgramStatus string

const (
	ProgramActive   ProgramStatus = "active"
	ProgramInactive ProgramStatus = "inactive"
	ProgramExpired  ProgramStatus = "expired"
)

type Program struct {
	ID             string         `gorm:"type:uuid;primarykey" json:"id"`
	OrganizationID string         `gorm:"type:uuid;not null;index" json:"organization_id"`
	GroupHeadID    *string        `gorm:"type:uuid" json:"group_head_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Code           string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description    string         `gorm:"type:text" json:"description"`
	Logo           string         `gorm:"type:varchar(500)" json:"logo"`
	StartDate      *time.Time     `json:"start_date"`
	EndDate        *time.Time     `json:"end_date"`
	Status         ProgramStatus  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	IsMultilingual bool           `gorm:"not null;default:false" json:"is_multilingual"`
	Languages      []string       `gorm:"serializer:json" json:"languages"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Activities   []Activity    `gorm:"foreignKey:ProgramID" json:"activities,omitempty"`
	Participants []Participant `gorm:"foreignKey:ProgramID" json:"participants,omitempty"`
	Roles        []ProgramRole `gorm:"foreignKey:ProgramID" json:"roles,omitempty"`
}

func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsOverdue reports whether the program's end date has passed at the given time.
func (p *Program) IsOverdue(now time.Time) bool {
	return p.EndDate != nil && p.EndDate.Before(now)
}
