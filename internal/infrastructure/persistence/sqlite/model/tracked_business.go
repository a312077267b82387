package model

import "time"

type TrackedBusiness struct {
	ID                     uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID                 uint64     `gorm:"column:user_id;not null;uniqueIndex:uq_tracked_user_number,priority:1"`
	BusinessNumber         string     `gorm:"column:business_number;type:text;not null;index;uniqueIndex:uq_tracked_user_number,priority:2"`
	Title                  string     `gorm:"column:title;type:text;not null;default:''"`
	Description            string     `gorm:"column:description;type:text;not null;default:''"`
	Status                 string     `gorm:"column:status;type:text;not null;default:''"`
	BusinessType           string     `gorm:"column:business_type;type:text;not null;default:''"`
	Author                 string     `gorm:"column:author;type:text;not null;default:''"`
	AuthorFaction          string     `gorm:"column:author_faction;type:text;not null;default:''"`
	SubmittedText          string     `gorm:"column:submitted_text;type:text;not null;default:''"`
	Reasoning              string     `gorm:"column:reasoning;type:text;not null;default:''"`
	FederalCouncilResponse string     `gorm:"column:federal_council_response;type:text;not null;default:''"`
	FederalCouncilProposal string     `gorm:"column:federal_council_proposal;type:text;not null;default:''"`
	FirstCouncil           string     `gorm:"column:first_council;type:text;not null;default:''"`
	SubmissionDate         *time.Time `gorm:"column:submission_date"`
	Priority               *int       `gorm:"column:priority"`
	LastAPISync            *time.Time `gorm:"column:last_api_sync"`
	CreatedAt              time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (TrackedBusiness) TableName() string {
	return "tracked_businesses"
}
