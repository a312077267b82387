package model

import "time"

// JobState is the key-value table behind the persistent cache.
type JobState struct {
	Key       string     `gorm:"column:key;type:text;primaryKey"`
	Value     string     `gorm:"column:value;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (JobState) TableName() string {
	return "job_state"
}
