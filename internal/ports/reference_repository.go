package ports

import (
	"context"
	"time"
)

type Canton struct {
	Number       int64
	Name         string
	Abbreviation string
}

type Party struct {
	Number       int64
	Name         string
	Abbreviation string
}

type ParlGroup struct {
	Number       int64
	Name         string
	Abbreviation string
}

// Parliamentarian embeds denormalized canton, party and group names so read
// paths do not need joins.
type Parliamentarian struct {
	PersonNumber          int64
	FirstName             string
	LastName              string
	Gender                string
	DateOfBirth           *time.Time
	CantonNumber          int64
	CantonName            string
	CantonAbbreviation    string
	CouncilNumber         int64
	CouncilName           string
	PartyNumber           int64
	PartyName             string
	PartyAbbreviation     string
	ParlGroupNumber       int64
	ParlGroupName         string
	ParlGroupAbbreviation string
	MembershipStart       *time.Time
	MembershipEnd         *time.Time
	Active                bool
	LastSync              *time.Time
}

type Committee struct {
	Number        int64
	Name          string
	Abbreviation  string
	CouncilNumber int64
	CommitteeType string
}

// CommitteeMembership is keyed by (PersonNumber, CommitteeNumber, StartDate).
type CommitteeMembership struct {
	PersonNumber          int64
	CommitteeNumber       int64
	CommitteeName         string
	CommitteeAbbreviation string
	CouncilNumber         int64
	Function              string
	StartDate             time.Time
	EndDate               *time.Time
}

// IsActive is derived: a membership without an end date is open.
func (m CommitteeMembership) IsActive() bool { return m.EndDate == nil }

type ReferenceRepository interface {
	UpsertCantons(ctx context.Context, rows []Canton) error
	UpsertParties(ctx context.Context, rows []Party, syncedAt time.Time) error
	UpsertParlGroups(ctx context.Context, rows []ParlGroup, syncedAt time.Time) error
	UpsertParliamentarians(ctx context.Context, rows []Parliamentarian, syncedAt time.Time) error
	// DeactivateMissing flags every active parliamentarian whose number is not
	// in present as inactive and returns how many rows changed.
	DeactivateMissing(ctx context.Context, present []int64) (int64, error)
	ListParliamentarians(ctx context.Context, personNumbers []int64) ([]Parliamentarian, error)
	ListActiveParliamentarians(ctx context.Context, councilNumber int64) ([]Parliamentarian, error)
	FindParlGroup(ctx context.Context, nameOrAbbreviation string) (ParlGroup, error)
}

type CommitteeRepository interface {
	UpsertCommittees(ctx context.Context, rows []Committee, syncedAt time.Time) error
	UpsertMemberships(ctx context.Context, rows []CommitteeMembership, syncedAt time.Time) error
	ListMemberships(ctx context.Context, committeeNumber int64, activeOnly bool) ([]CommitteeMembership, error)
	// FindCommittee matches the full name first, then the abbreviation.
	FindCommittee(ctx context.Context, name string, abbreviation string) (Committee, error)
}
