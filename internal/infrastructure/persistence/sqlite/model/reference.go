package model

import "time"

type Canton struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	CantonNumber int64  `gorm:"column:canton_number;uniqueIndex;not null"`
	Name         string `gorm:"column:canton_name;type:text;not null;default:''"`
	Abbreviation string `gorm:"column:canton_abbreviation;type:text;not null;default:''"`
}

func (Canton) TableName() string {
	return "cantons"
}

type Party struct {
	ID           uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	PartyNumber  int64      `gorm:"column:party_number;uniqueIndex;not null"`
	Name         string     `gorm:"column:party_name;type:text;not null;default:''"`
	Abbreviation string     `gorm:"column:party_abbreviation;type:text;not null;default:''"`
	LastSync     *time.Time `gorm:"column:last_sync"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Party) TableName() string {
	return "parties"
}

type ParlGroup struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ParlGroupNumber int64      `gorm:"column:parl_group_number;uniqueIndex;not null"`
	Name            string     `gorm:"column:parl_group_name;type:text;not null;default:''"`
	Abbreviation    string     `gorm:"column:parl_group_abbreviation;type:text;not null;default:''"`
	LastSync        *time.Time `gorm:"column:last_sync"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (ParlGroup) TableName() string {
	return "parl_groups"
}

type Parliamentarian struct {
	ID                    uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	PersonNumber          int64      `gorm:"column:person_number;uniqueIndex;not null"`
	FirstName             string     `gorm:"column:first_name;type:text;not null;default:''"`
	LastName              string     `gorm:"column:last_name;type:text;not null;default:''"`
	Gender                string     `gorm:"column:gender;type:text;not null;default:''"`
	DateOfBirth           *time.Time `gorm:"column:date_of_birth"`
	CantonNumber          int64      `gorm:"column:canton_number;not null;default:0"`
	CantonName            string     `gorm:"column:canton_name;type:text;not null;default:''"`
	CantonAbbreviation    string     `gorm:"column:canton_abbreviation;type:text;not null;default:''"`
	CouncilNumber         int64      `gorm:"column:council_number;not null;default:0;index"`
	CouncilName           string     `gorm:"column:council_name;type:text;not null;default:''"`
	PartyNumber           int64      `gorm:"column:party_number;not null;default:0"`
	PartyName             string     `gorm:"column:party_name;type:text;not null;default:''"`
	PartyAbbreviation     string     `gorm:"column:party_abbreviation;type:text;not null;default:''"`
	ParlGroupNumber       int64      `gorm:"column:parl_group_number;not null;default:0;index"`
	ParlGroupName         string     `gorm:"column:parl_group_name;type:text;not null;default:''"`
	ParlGroupAbbreviation string     `gorm:"column:parl_group_abbreviation;type:text;not null;default:''"`
	MembershipStart       *time.Time `gorm:"column:membership_start"`
	MembershipEnd         *time.Time `gorm:"column:membership_end"`
	Active                bool       `gorm:"column:active;not null;index"`
	LastSync              *time.Time `gorm:"column:last_sync"`
	CreatedAt             time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (Parliamentarian) TableName() string {
	return "parliamentarians"
}
