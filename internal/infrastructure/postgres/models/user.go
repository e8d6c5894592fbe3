package models

import "time"

type UserModel struct {
	ID         string `gorm:"primaryKey"`
	Role       string `gorm:"not null"`
	ReferrerID string `gorm:"index"`
	ManagerID  string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (UserModel) TableName() string { return "users" }
