package model

import "time"

type CachedBusiness struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessNumber string    `gorm:"column:business_number;type:text;uniqueIndex;not null"`
	Title          string    `gorm:"column:title;type:text;not null;default:''"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (CachedBusiness) TableName() string {
	return "cached_businesses"
}
