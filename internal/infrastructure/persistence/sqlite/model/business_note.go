package model

import "time"

// BusinessNote is free text a user attaches to one of their tracking rows.
type BusinessNote struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TrackedID uint64    `gorm:"column:tracked_id;not null;index"`
	UserID    uint64    `gorm:"column:user_id;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (BusinessNote) TableName() string {
	return "business_notes"
}
