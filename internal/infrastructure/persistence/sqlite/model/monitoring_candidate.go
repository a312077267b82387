package model

import "time"

type MonitoringCandidate struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessNumber string     `gorm:"column:business_number;type:text;uniqueIndex;not null"`
	Title          string     `gorm:"column:title;type:text;not null;default:''"`
	Description    string     `gorm:"column:description;type:text;not null;default:''"`
	BusinessType   string     `gorm:"column:business_type;type:text;not null;default:''"`
	SubmissionDate *time.Time `gorm:"column:submission_date"`
	Decision       string     `gorm:"column:decision;type:text;not null;default:'pending';index"`
	DecidedBy      *uint64    `gorm:"column:decided_by"`
	DecidedAt      *time.Time `gorm:"column:decided_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (MonitoringCandidate) TableName() string {
	return "monitoring_candidates"
}
