package prediction

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

const (
	councilNational = 1
	councilStates   = 2
)

// PredictForBusiness predicts the vote of the body that treats a tracked
// business next: the committee of its latest preconsultation, or the first
// council when no committee seats are known.
func (s *Service) PredictForBusiness(ctx context.Context, businessNumber string) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	number, err := parliament.ParseBusinessNumber(businessNumber)
	if err != nil {
		return Result{}, err
	}

	rows, err := s.tracking.ListByNumber(ctx, number)
	if err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, errs.Wrapf(ports.ErrNotFound, "business %s is not tracked", number)
	}
	details := rows[0].BusinessDetails

	committeeName, committeeAbbrev, members, err := s.treatingBody(ctx, number, details)
	if err != nil {
		return Result{}, err
	}

	var authorGroup int64
	if details.AuthorFaction != "" {
		group, err := s.reference.FindParlGroup(ctx, details.AuthorFaction)
		switch {
		case err == nil:
			authorGroup = group.Number
		case !errors.Is(err, ports.ErrNotFound):
			return Result{}, err
		}
	}

	result, err := s.Predict(ctx, Request{
		BusinessNumber:    number,
		BusinessType:      details.BusinessType,
		AuthorGroupNumber: authorGroup,
		PersonNumbers:     members,
	})
	if err != nil {
		return Result{}, err
	}
	result.CommitteeName = committeeName
	result.CommitteeAbbreviation = committeeAbbrev
	return result, nil
}

func (s *Service) treatingBody(ctx context.Context, number string, details parliament.BusinessDetails) (string, string, []int64, error) {
	logCtx := logging.WithComponent(ctx, "usecase.prediction")

	var committeeName, committeeAbbrev string
	if s.gateway != nil {
		preconsultations, err := s.gateway.FetchPreconsultations(ctx, number)
		if err != nil {
			logging.Warn(logCtx, "fetch preconsultations failed, falling back to council",
				slog.String("business_number", number),
				slog.Any("err", errs.Loggable(err)),
			)
		}
		if latest, ok := latestPreconsultation(preconsultations); ok {
			committeeName, committeeAbbrev = latest.CommitteeName, latest.CommitteeAbbrev
		}
	}

	if committeeName != "" {
		committee, err := s.committees.FindCommittee(ctx, committeeName, committeeAbbrev)
		switch {
		case err == nil:
			seats, err := s.committees.ListMemberships(ctx, committee.Number, true)
			if err != nil {
				return "", "", nil, err
			}
			if len(seats) > 0 {
				members := make([]int64, 0, len(seats))
				for _, seat := range seats {
					members = append(members, seat.PersonNumber)
				}
				return committeeName, committeeAbbrev, members, nil
			}
		case !errors.Is(err, ports.ErrNotFound):
			return "", "", nil, err
		}
	}

	council := councilFromName(details.FirstCouncil)
	if council == 0 {
		return committeeName, committeeAbbrev, nil, nil
	}
	roster, err := s.reference.ListActiveParliamentarians(ctx, council)
	if err != nil {
		return "", "", nil, err
	}
	members := make([]int64, 0, len(roster))
	for _, p := range roster {
		members = append(members, p.PersonNumber)
	}
	return committeeName, committeeAbbrev, members, nil
}

func latestPreconsultation(items []parliament.Preconsultation) (parliament.Preconsultation, bool) {
	if len(items) == 0 {
		return parliament.Preconsultation{}, false
	}
	sorted := append([]parliament.Preconsultation(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Time.After(sorted[j].Date.Time)
	})
	return sorted[0], true
}

func councilFromName(name string) int64 {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "national"):
		return councilNational
	case strings.Contains(lower, "ständ"), strings.Contains(lower, "staende"), strings.Contains(lower, "etats"):
		return councilStates
	default:
		return 0
	}
}
