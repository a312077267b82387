package model

import "time"

type Alert struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         uint64     `gorm:"column:user_id;not null;index"`
	BusinessNumber string     `gorm:"column:business_number;type:text;not null;index"`
	EventID        *uint64    `gorm:"column:event_id;index"`
	AlertType      string     `gorm:"column:alert_type;type:text;not null"`
	Message        string     `gorm:"column:message;type:text;not null"`
	EventDate      *time.Time `gorm:"column:event_date"`
	IsRead         bool       `gorm:"column:is_read;not null;default:false"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Alert) TableName() string {
	return "alerts"
}
