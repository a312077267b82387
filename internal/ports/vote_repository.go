package ports

import (
	"context"
	"time"

	"parlmonitor/internal/domain/prediction"
)

type Session struct {
	ID           int64
	Name         string
	Abbreviation string
	StartDate    *time.Time
}

// Vote is one roll call.
type Vote struct {
	VoteID         int64
	SessionID      int64
	SessionName    string
	CouncilNumber  int64
	BusinessNumber string
	BusinessTitle  string
	Subject        string
	MeaningYes     string
	MeaningNo      string
	VoteDate       *time.Time
	TotalYes       int
	TotalNo        int
	TotalAbstain   int
	TotalNotVoted  int
	Result         string
	RawData        []byte
}

// Voting is one person's ballot within a vote. Decision is normalized.
type Voting struct {
	VoteID          int64
	PersonNumber    int64
	Decision        string
	ParlGroupNumber int64
	CantonNumber    int64
}

type VotePrediction struct {
	BusinessNumber   string
	PersonNumber     int64
	PredictedYes     float64
	PredictedNo      float64
	PredictedAbstain float64
	Confidence       float64
	ModelVersion     string
	PredictionDate   time.Time
}

type VoteRepository interface {
	CountVotesInSession(ctx context.Context, sessionID int64) (int64, error)
	VoteExists(ctx context.Context, voteID int64) (bool, error)
	CreateVote(ctx context.Context, vote Vote) (bool, error)
	CreateVotings(ctx context.Context, rows []Voting) (int64, error)
	// SessionsMissingName lists session ids of votes stored without a session name.
	SessionsMissingName(ctx context.Context) ([]int64, error)
	SetSessionName(ctx context.Context, sessionID int64, name string) (int64, error)

	// GroupDecisionCounts counts a group's Yes and No ballots, optionally only
	// on votes tied to a business.
	GroupDecisionCounts(ctx context.Context, parlGroupNumber int64, businessVotesOnly bool) (yes int64, no int64, err error)
	MemberBallots(ctx context.Context, personNumber int64) ([]prediction.Ballot, error)
	GroupTallies(ctx context.Context, parlGroupNumber int64, voteIDs []int64) (map[int64]prediction.Tally, error)
}

type PredictionRepository interface {
	ListPredictions(ctx context.Context, businessNumber string, modelVersion string) ([]VotePrediction, error)
	UpsertPredictions(ctx context.Context, rows []VotePrediction) error
}
