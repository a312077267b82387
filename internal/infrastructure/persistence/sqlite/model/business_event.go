package model

import (
	"time"

	"gorm.io/datatypes"
)

// BusinessEvent rows are append-only. DedupKey is NULL for status events, so
// the unique index only constrains schedule events.
type BusinessEvent struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessNumber string         `gorm:"column:business_number;type:text;not null;index:idx_business_events_lookup,priority:1"`
	EventType      string         `gorm:"column:event_type;type:text;not null;index:idx_business_events_lookup,priority:2"`
	EventDate      *time.Time     `gorm:"column:event_date;index"`
	Description    string         `gorm:"column:description;type:text;not null;default:''"`
	CommitteeName  string         `gorm:"column:committee_name;type:text;not null;default:''"`
	DedupKey       *string        `gorm:"column:dedup_key;type:text;uniqueIndex"`
	RawData        datatypes.JSON `gorm:"column:raw_data"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
}

func (BusinessEvent) TableName() string {
	return "business_events"
}
