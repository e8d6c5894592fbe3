package models

import "time"

type AuditEntryModel struct {
	ID         string `gorm:"primaryKey"`
	RequestID  string `gorm:"index;not null"`
	Action     string `gorm:"not null"`
	ActorID    string
	Note       string
	FromStatus string
	ToStatus   string
	At         time.Time
}

func (AuditEntryModel) TableName() string { return "audit_entries" }
