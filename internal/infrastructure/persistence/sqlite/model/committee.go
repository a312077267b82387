package model

import "time"

type Committee struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	CommitteeNumber int64      `gorm:"column:committee_number;uniqueIndex;not null"`
	Name            string     `gorm:"column:committee_name;type:text;not null;default:''"`
	Abbreviation    string     `gorm:"column:committee_abbreviation;type:text;not null;default:''"`
	CouncilNumber   int64      `gorm:"column:council_number;not null;default:0"`
	CommitteeType   string     `gorm:"column:committee_type;type:text;not null;default:''"`
	IsActive        bool       `gorm:"column:is_active;not null"`
	LastSync        *time.Time `gorm:"column:last_sync"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Committee) TableName() string {
	return "committees"
}

type CommitteeMembership struct {
	ID                    uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	PersonNumber          int64      `gorm:"column:person_number;not null;uniqueIndex:uq_committee_membership,priority:1"`
	CommitteeNumber       int64      `gorm:"column:committee_number;not null;index;uniqueIndex:uq_committee_membership,priority:2"`
	StartDate             time.Time  `gorm:"column:start_date;not null;uniqueIndex:uq_committee_membership,priority:3"`
	EndDate               *time.Time `gorm:"column:end_date"`
	CommitteeName         string     `gorm:"column:committee_name;type:text;not null;default:''"`
	CommitteeAbbreviation string     `gorm:"column:committee_abbreviation;type:text;not null;default:''"`
	CouncilNumber         int64      `gorm:"column:council_number;not null;default:0"`
	Function              string     `gorm:"column:function;type:text;not null;default:''"`
	IsActive              bool       `gorm:"column:is_active;not null"`
	LastSync              *time.Time `gorm:"column:last_sync"`
	CreatedAt             time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (CommitteeMembership) TableName() string {
	return "committee_memberships"
}
