package monitor

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

// DiscoverCandidates stores businesses submitted within the lookback window
// as pending monitoring candidates. Numbers already seen are left alone.
func (s *Service) DiscoverCandidates(ctx context.Context) (int64, error) {
	if err := s.checkRun(ctx); err != nil {
		return 0, err
	}

	since := s.now().Add(-s.opts.DiscoveryLookback)
	businesses, err := s.gateway.FetchNewBusinesses(ctx, since)
	if err != nil {
		return 0, errs.Wrap(err, "fetch new businesses")
	}

	candidates := make([]ports.MonitoringCandidate, 0, len(businesses))
	for _, b := range businesses {
		if strings.TrimSpace(b.BusinessNumber) == "" {
			continue
		}
		candidates = append(candidates, ports.MonitoringCandidate{
			BusinessNumber: b.BusinessNumber,
			Title:          b.Title,
			Description:    b.Description,
			BusinessType:   b.BusinessType,
			SubmissionDate: b.SubmissionDate,
			Decision:       parliament.CandidatePending,
		})
	}

	var added int64
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		added, err = s.monitoring.InsertCandidates(txCtx, candidates)
		return err
	}); err != nil {
		return 0, errs.Wrap(err, "store monitoring candidates")
	}

	logging.Info(logging.WithComponent(ctx, "usecase.monitor.discovery"), "monitoring candidates discovered",
		slog.Int("fetched", len(businesses)),
		slog.Int64("added", added),
	)
	return added, nil
}

// DecideCandidate moves a pending candidate to accepted or rejected. The
// transition is one-way.
func (s *Service) DecideCandidate(ctx context.Context, candidateID uint64, decision string, decidedBy uint64) (ports.MonitoringCandidate, error) {
	if ctx == nil {
		return ports.MonitoringCandidate{}, errors.New("context is required")
	}
	if s.monitoring == nil {
		return ports.MonitoringCandidate{}, errors.New("monitoring repository is required")
	}

	var out ports.MonitoringCandidate
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		candidate, err := s.monitoring.GetCandidate(txCtx, candidateID)
		if err != nil {
			return err
		}
		next, err := parliament.Decide(candidate.Decision, decision)
		if err != nil {
			return err
		}
		decidedAt := s.now()
		if err := s.monitoring.SetDecision(txCtx, candidateID, next, decidedBy, decidedAt); err != nil {
			return err
		}
		candidate.Decision = next
		candidate.DecidedBy = &decidedBy
		candidate.DecidedAt = &decidedAt
		out = candidate
		return nil
	})
	if err != nil {
		return ports.MonitoringCandidate{}, err
	}
	return out, nil
}

// ListCandidates returns candidates with the given decision; an empty
// decision lists pending ones.
func (s *Service) ListCandidates(ctx context.Context, decision string) ([]ports.MonitoringCandidate, error) {
	if s.monitoring == nil {
		return nil, errors.New("monitoring repository is required")
	}
	filter := parliament.CandidateDecision(strings.TrimSpace(decision))
	if filter == "" {
		filter = parliament.CandidatePending
	}
	return s.monitoring.ListCandidates(ctx, filter)
}

// SyncBusinessCache pages the upstream business list per year prefix and
// stores unseen (number, title) pairs for instant prefill on tracking.
func (s *Service) SyncBusinessCache(ctx context.Context) (int64, error) {
	if err := s.checkRun(ctx); err != nil {
		return 0, err
	}
	logCtx := logging.WithComponent(ctx, "usecase.monitor.business_cache")

	var added int64
	for _, prefix := range s.cachePrefixes() {
		businesses, err := s.gateway.FetchBusinessesByPrefix(ctx, prefix)
		if err != nil {
			logging.Warn(logCtx, "fetch business list failed, skipping prefix",
				slog.String("prefix", prefix),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}

		items := make([]ports.CachedBusiness, 0, len(businesses))
		for _, b := range businesses {
			items = append(items, ports.CachedBusiness{BusinessNumber: b.BusinessNumber, Title: b.Title})
		}

		var n int64
		if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
			var err error
			n, err = s.businessCache.InsertMissing(txCtx, items)
			return err
		}); err != nil {
			return added, errs.Wrapf(err, "store business cache for %s", prefix)
		}
		added += n
		logging.Info(logCtx, "business cache refreshed",
			slog.String("prefix", prefix),
			slog.Int("fetched", len(businesses)),
			slog.Int64("added", n),
		)
	}
	return added, nil
}

func (s *Service) cachePrefixes() []string {
	if len(s.opts.BusinessCacheYears) == 0 {
		year := s.now().Year()
		return []string{parliament.YearPrefix(year), parliament.YearPrefix(year - 1)}
	}

	out := make([]string, 0, len(s.opts.BusinessCacheYears))
	for _, raw := range s.opts.BusinessCacheYears {
		raw = strings.TrimSuffix(strings.TrimSpace(raw), ".")
		if year, err := strconv.Atoi(raw); err == nil {
			out = append(out, parliament.YearPrefix(year))
		}
	}
	return out
}
