package model

import (
	"time"

	"gorm.io/datatypes"
)

type Vote struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	VoteID         int64          `gorm:"column:vote_id;uniqueIndex;not null"`
	SessionID      int64          `gorm:"column:session_id;not null;index"`
	SessionName    string         `gorm:"column:session_name;type:text;not null;default:''"`
	CouncilNumber  int64          `gorm:"column:council_number;not null;default:0"`
	BusinessNumber string         `gorm:"column:business_number;type:text;not null;default:'';index"`
	BusinessTitle  string         `gorm:"column:business_title;type:text;not null;default:''"`
	Subject        string         `gorm:"column:subject;type:text;not null;default:''"`
	MeaningYes     string         `gorm:"column:meaning_yes;type:text;not null;default:''"`
	MeaningNo      string         `gorm:"column:meaning_no;type:text;not null;default:''"`
	VoteDate       *time.Time     `gorm:"column:vote_date"`
	TotalYes       int            `gorm:"column:total_yes;not null;default:0"`
	TotalNo        int            `gorm:"column:total_no;not null;default:0"`
	TotalAbstain   int            `gorm:"column:total_abstain;not null;default:0"`
	TotalNotVoted  int            `gorm:"column:total_not_voted;not null;default:0"`
	Result         string         `gorm:"column:result;type:text;not null;default:''"`
	RawData        datatypes.JSON `gorm:"column:raw_data"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Vote) TableName() string {
	return "votes"
}

type Voting struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	VoteID          int64     `gorm:"column:vote_id;not null;index;uniqueIndex:uq_voting,priority:1"`
	PersonNumber    int64     `gorm:"column:person_number;not null;index;uniqueIndex:uq_voting,priority:2"`
	Decision        string    `gorm:"column:decision;type:text;not null;index"`
	ParlGroupNumber int64     `gorm:"column:parl_group_number;not null;default:0;index"`
	CantonNumber    int64     `gorm:"column:canton_number;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Voting) TableName() string {
	return "votings"
}

type VotePrediction struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessNumber   string    `gorm:"column:business_number;type:text;not null;uniqueIndex:uq_vote_prediction,priority:1"`
	PersonNumber     int64     `gorm:"column:person_number;not null;uniqueIndex:uq_vote_prediction,priority:2"`
	ModelVersion     string    `gorm:"column:model_version;type:text;not null;uniqueIndex:uq_vote_prediction,priority:3"`
	PredictedYes     float64   `gorm:"column:predicted_yes;not null"`
	PredictedNo      float64   `gorm:"column:predicted_no;not null"`
	PredictedAbstain float64   `gorm:"column:predicted_abstain;not null"`
	Confidence       float64   `gorm:"column:confidence;not null"`
	PredictionDate   time.Time `gorm:"column:prediction_date;not null"`
}

func (VotePrediction) TableName() string {
	return "vote_predictions"
}
