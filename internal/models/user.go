package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Mobile       *string   `gorm:"type:varchar(20)" json:"mobile"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Assignments []TaskAssignment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
