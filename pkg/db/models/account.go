package models

import (
	"time"
)

// Account represents the canonical identity entity. Passwords live here only
// as their Argon2id encoding.
type Account struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;not null;uniqueIndex:uq_accounts_username"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Email        *string   `gorm:"column:email;uniqueIndex:uq_accounts_email"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	Products     []Product `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
