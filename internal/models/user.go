package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model // embeds ID, CreatedAt, UpdatedAt, DeletedAt
	FullName   string `json:"fullName" gorm:"column:full_name;not null"`
	Email      string `json:"email" gorm:"column:email;unique;not null"`
	// Written by the external auth service; the engine never reads it.
	PasswordHash string `json:"-" gorm:"column:password_hash"`
	PhoneNumber  string `json:"phoneNumber,omitempty" gorm:"column:phone_number"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
