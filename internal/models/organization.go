package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationStatus string

const (
	OrganizationActive   OrganizationStatus = "active"
	OrganizationInactive OrganizationStatus = "inactive"
)

type Organization struct {
	ID        string             `gorm:"type:uuid;primarykey" json:"id"`
	Name      string             `gorm:"type:varchar(255);not null" json:"name"`
	Status    OrganizationStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	DeletedAt gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relations
	Programs []Program `gorm:"foreignKey:OrganizationID" json:"programs,omitempty"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
