package model

import "time"

type User struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Email              string    `gorm:"column:email;type:text;uniqueIndex;not null"`
	DisplayName        string    `gorm:"column:display_name;type:text;not null;default:''"`
	EmailAlertsEnabled bool      `gorm:"column:email_alerts_enabled;not null;default:false"`
	EmailAlertTypes    string    `gorm:"column:email_alert_types;type:text;not null;default:''"`
	CreatedAt          time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
