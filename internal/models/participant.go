package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Participant struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	ProgramID string         `gorm:"type:uuid;not null;index" json:"program_id"`
	Name      string         `gorm:"type:varchar(255)" json:"name"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	IsGuest   bool           `gorm:"not null;default:false" json:"is_guest"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
