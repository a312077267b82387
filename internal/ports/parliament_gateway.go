package ports

import (
	"context"
	"time"

	"parlmonitor/internal/domain/parliament"
)

// BusinessInfo is the upstream view of one business.
type BusinessInfo struct {
	BusinessNumber string
	parliament.BusinessDetails
	SubmissionDate *time.Time
	RawData        []byte
}

// StatusEntry is one historical status of a business.
type StatusEntry struct {
	Status  string
	Date    *time.Time
	RawData []byte
}

// ParliamentGateway is the only network-facing dependency of the sync jobs.
//
// Every method retries transport failures internally. Once the budget is spent
// the error wraps ErrUpstreamUnavailable. FetchBusiness returns (nil, nil) when
// upstream has no such business.
type ParliamentGateway interface {
	FetchBusiness(ctx context.Context, businessNumber string) (*BusinessInfo, error)
	FetchBusinessEvents(ctx context.Context, businessNumber string) ([]StatusEntry, error)
	FetchNewBusinesses(ctx context.Context, since time.Time) ([]BusinessInfo, error)
	SearchBusinesses(ctx context.Context, text string) ([]BusinessInfo, error)
	FetchBusinessesByPrefix(ctx context.Context, prefix string) ([]BusinessInfo, error)
	FetchPreconsultations(ctx context.Context, businessNumber string) ([]parliament.Preconsultation, error)
	FetchSessionSchedule(ctx context.Context, businessNumber string) ([]parliament.SessionSlot, error)

	FetchMembers(ctx context.Context) ([]Parliamentarian, error)
	FetchParties(ctx context.Context) ([]Party, error)
	FetchParlGroups(ctx context.Context) ([]ParlGroup, error)
	FetchCantons(ctx context.Context) ([]Canton, error)
	FetchCommittees(ctx context.Context) ([]Committee, error)
	FetchMemberships(ctx context.Context) ([]CommitteeMembership, error)
	FetchSessions(ctx context.Context, minSessionID int64) ([]Session, error)
	FetchVotes(ctx context.Context, sessionID int64) ([]Vote, error)
	FetchBallots(ctx context.Context, voteID int64) ([]Voting, error)
}
