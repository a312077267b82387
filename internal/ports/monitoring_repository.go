package ports

import (
	"context"
	"time"

	"parlmonitor/internal/domain/parliament"
)

type MonitoringCandidate struct {
	ID             uint64
	BusinessNumber string
	Title          string
	Description    string
	BusinessType   string
	SubmissionDate *time.Time
	Decision       parliament.CandidateDecision
	DecidedBy      *uint64
	DecidedAt      *time.Time
	CreatedAt      time.Time
}

type MonitoringRepository interface {
	// InsertCandidates skips numbers that already have a candidate row.
	InsertCandidates(ctx context.Context, rows []MonitoringCandidate) (int64, error)
	ListCandidates(ctx context.Context, decision parliament.CandidateDecision) ([]MonitoringCandidate, error)
	GetCandidate(ctx context.Context, candidateID uint64) (MonitoringCandidate, error)
	SetDecision(ctx context.Context, candidateID uint64, decision parliament.CandidateDecision, decidedBy uint64, decidedAt time.Time) error
}
