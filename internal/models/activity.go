package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is a survey/poll/assessment instance within a program. In the
// role-assignment context activities are referred to as events.
type Activity struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	ProgramID string         `gorm:"type:uuid;not null;index" json:"program_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Type      string         `gorm:"type:varchar(50)" json:"type"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartDate *time.Time     `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
