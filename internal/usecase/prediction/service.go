// Package prediction estimates how the members of a committee or council are
// likely to vote on a business and memoizes the estimates per model version.
package prediction

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"parlmonitor/internal/bootstrap/logging"
	domainprediction "parlmonitor/internal/domain/prediction"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

const defaultCacheTTL = 24 * time.Hour

type Service struct {
	reference    ports.ReferenceRepository
	committees   ports.CommitteeRepository
	votes        ports.VoteRepository
	predictions  ports.PredictionRepository
	tracking     ports.TrackingRepository
	gateway      ports.ParliamentGateway
	uow          ports.UnitOfWork
	modelVersion string
	cacheTTL     time.Duration
	now          func() time.Time
}

type Dependencies struct {
	Reference   ports.ReferenceRepository
	Committees  ports.CommitteeRepository
	Votes       ports.VoteRepository
	Predictions ports.PredictionRepository
	Tracking    ports.TrackingRepository
	Gateway     ports.ParliamentGateway
	UoW         ports.UnitOfWork
}

func NewService(deps Dependencies, modelVersion string, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{
		reference:    deps.Reference,
		committees:   deps.Committees,
		votes:        deps.Votes,
		predictions:  deps.Predictions,
		tracking:     deps.Tracking,
		gateway:      deps.Gateway,
		uow:          deps.UoW,
		modelVersion: modelVersion,
		cacheTTL:     cacheTTL,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Request describes one prediction. AuthorGroupNumber is zero when the
// author's group is unknown. A non-empty BusinessType restricts the faction
// tendency to roll calls tied to a business.
type Request struct {
	BusinessNumber    string
	BusinessType      string
	AuthorGroupNumber int64
	PersonNumbers     []int64
}

type MemberPrediction struct {
	PersonNumber          int64
	FirstName             string
	LastName              string
	PartyAbbreviation     string
	ParlGroupAbbreviation string
	CantonAbbreviation    string
	Yes                   float64
	No                    float64
	Abstain               float64
	Confidence            float64
	PredictionDate        time.Time
}

type Result struct {
	BusinessNumber string
	ModelVersion   string
	FromCache      bool
	OverallYes     float64
	Outcome        domainprediction.Outcome
	Factions       []domainprediction.FactionSummary
	Members        []MemberPrediction

	// Set by PredictForBusiness.
	CommitteeName         string
	CommitteeAbbreviation string
}

// Predict returns cached estimates when every requested member has one
// younger than the cache TTL; otherwise the whole set is recomputed.
// Members unknown to the roster are dropped before either check.
func (s *Service) Predict(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, errs.Wrap(err, "check context")
	}
	if s.uow == nil {
		return Result{}, errors.New("unit of work is required")
	}
	req.BusinessNumber = strings.TrimSpace(req.BusinessNumber)
	if req.BusinessNumber == "" {
		return Result{}, errors.New("business number is required")
	}
	people := uniquePersons(req.PersonNumbers)

	result := Result{BusinessNumber: req.BusinessNumber, ModelVersion: s.modelVersion}
	if len(people) == 0 {
		result.OverallYes = 0.5
		result.Outcome = domainprediction.Label(result.OverallYes)
		return result, nil
	}

	roster, err := s.reference.ListParliamentarians(ctx, people)
	if err != nil {
		return Result{}, err
	}
	byPerson := make(map[int64]ports.Parliamentarian, len(roster))
	for _, p := range roster {
		byPerson[p.PersonNumber] = p
	}
	known := people[:0]
	for _, person := range people {
		if _, ok := byPerson[person]; ok {
			known = append(known, person)
		}
	}
	people = known
	if len(people) == 0 {
		result.OverallYes = 0.5
		result.Outcome = domainprediction.Label(result.OverallYes)
		return result, nil
	}

	cached, err := s.predictions.ListPredictions(ctx, req.BusinessNumber, s.modelVersion)
	if err != nil {
		return Result{}, err
	}
	estimates, fresh := s.usableCache(cached, people)
	if fresh {
		result.FromCache = true
	} else {
		estimates, err = s.compute(ctx, req, people, byPerson)
		if err != nil {
			return Result{}, err
		}
	}

	s.assemble(&result, people, byPerson, estimates)
	logging.Debug(logging.WithComponent(ctx, "usecase.prediction"), "prediction served",
		slog.String("business_number", req.BusinessNumber),
		slog.Int("members", len(result.Members)),
		slog.Bool("from_cache", result.FromCache),
	)
	return result, nil
}

// usableCache reports whether cached rows cover every person and the oldest
// one is still within the TTL.
func (s *Service) usableCache(cached []ports.VotePrediction, people []int64) (map[int64]ports.VotePrediction, bool) {
	if len(cached) == 0 {
		return nil, false
	}
	byPerson := make(map[int64]ports.VotePrediction, len(cached))
	for _, row := range cached {
		byPerson[row.PersonNumber] = row
	}

	cutoff := s.now().Add(-s.cacheTTL)
	for _, person := range people {
		row, ok := byPerson[person]
		if !ok || !row.PredictionDate.After(cutoff) {
			return nil, false
		}
	}
	return byPerson, true
}

func (s *Service) compute(ctx context.Context, req Request, people []int64, byPerson map[int64]ports.Parliamentarian) (map[int64]ports.VotePrediction, error) {
	now := s.now()
	businessVotesOnly := strings.TrimSpace(req.BusinessType) != ""
	tendencies := make(map[int64]domainprediction.Tendency)

	out := make(map[int64]ports.VotePrediction, len(people))
	rows := make([]ports.VotePrediction, 0, len(people))
	for _, person := range people {
		member, ok := byPerson[person]
		if !ok {
			continue
		}
		group := member.ParlGroupNumber

		tendency := domainprediction.NeutralTendency
		loyalty := 0.0
		if group != 0 {
			cachedTendency, ok := tendencies[group]
			if !ok {
				yes, no, err := s.votes.GroupDecisionCounts(ctx, group, businessVotesOnly)
				if err != nil {
					return nil, err
				}
				cachedTendency = domainprediction.TendencyFromCounts(yes, no)
				tendencies[group] = cachedTendency
			}
			tendency = cachedTendency

			var err error
			loyalty, err = s.loyalty(ctx, person, group)
			if err != nil {
				return nil, err
			}
		}

		sameGroup := req.AuthorGroupNumber != 0 && group == req.AuthorGroupNumber
		estimate := domainprediction.Blend(tendency, loyalty, sameGroup)
		row := ports.VotePrediction{
			BusinessNumber:   req.BusinessNumber,
			PersonNumber:     person,
			PredictedYes:     estimate.Yes,
			PredictedNo:      estimate.No,
			PredictedAbstain: estimate.Abstain,
			Confidence:       estimate.Confidence,
			ModelVersion:     s.modelVersion,
			PredictionDate:   now,
		}
		rows = append(rows, row)
		out[person] = row
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.predictions.UpsertPredictions(txCtx, rows)
	}); err != nil {
		return nil, errs.Wrap(err, "store predictions")
	}
	return out, nil
}

func (s *Service) loyalty(ctx context.Context, person int64, group int64) (float64, error) {
	ballots, err := s.votes.MemberBallots(ctx, person)
	if err != nil {
		return 0, err
	}
	if len(ballots) == 0 {
		return 0, nil
	}
	voteIDs := make([]int64, 0, len(ballots))
	for _, b := range ballots {
		voteIDs = append(voteIDs, b.VoteID)
	}
	tallies, err := s.votes.GroupTallies(ctx, group, voteIDs)
	if err != nil {
		return 0, err
	}
	return domainprediction.Loyalty(ballots, tallies), nil
}

func (s *Service) assemble(result *Result, people []int64, byPerson map[int64]ports.Parliamentarian, estimates map[int64]ports.VotePrediction) {
	var summaries []domainprediction.MemberEstimate
	for _, person := range people {
		row, ok := estimates[person]
		if !ok {
			continue
		}
		member := byPerson[person]
		result.Members = append(result.Members, MemberPrediction{
			PersonNumber:          person,
			FirstName:             member.FirstName,
			LastName:              member.LastName,
			PartyAbbreviation:     member.PartyAbbreviation,
			ParlGroupAbbreviation: member.ParlGroupAbbreviation,
			CantonAbbreviation:    member.CantonAbbreviation,
			Yes:                   row.PredictedYes,
			No:                    row.PredictedNo,
			Abstain:               row.PredictedAbstain,
			Confidence:            row.Confidence,
			PredictionDate:        row.PredictionDate,
		})
		summaries = append(summaries, domainprediction.MemberEstimate{
			PersonNumber:      person,
			GroupAbbreviation: member.ParlGroupAbbreviation,
			GroupName:         member.ParlGroupName,
			Estimate: domainprediction.Estimate{
				Yes:        row.PredictedYes,
				No:         row.PredictedNo,
				Abstain:    row.PredictedAbstain,
				Confidence: row.Confidence,
			},
		})
	}

	summary := domainprediction.Summarize(summaries)
	result.OverallYes = summary.OverallYes
	result.Outcome = summary.Outcome
	result.Factions = summary.Factions
}

func uniquePersons(in []int64) []int64 {
	seen := make(map[int64]struct{}, len(in))
	out := make([]int64, 0, len(in))
	for _, p := range in {
		if p == 0 {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
