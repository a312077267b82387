package monitor

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

type ReferenceReport struct {
	Cantons          int
	Parties          int
	ParlGroups       int
	Parliamentarians int
	Deactivated      int64
}

// SyncParliamentarians fetches the four rosters concurrently, then writes
// cantons, parties, groups and members in that order. Members missing from
// the fresh roster are deactivated, never deleted.
func (s *Service) SyncParliamentarians(ctx context.Context) (ReferenceReport, error) {
	var report ReferenceReport
	if err := s.checkRun(ctx); err != nil {
		return report, err
	}
	logCtx := logging.WithComponent(ctx, "usecase.monitor.reference")

	var (
		members    []ports.Parliamentarian
		parties    []ports.Party
		parlGroups []ports.ParlGroup
		cantons    []ports.Canton
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.gateway.FetchMembers(gctx)
		return errs.Wrap(err, "fetch members")
	})
	g.Go(func() error {
		var err error
		parties, err = s.gateway.FetchParties(gctx)
		return errs.Wrap(err, "fetch parties")
	})
	g.Go(func() error {
		var err error
		parlGroups, err = s.gateway.FetchParlGroups(gctx)
		return errs.Wrap(err, "fetch parliamentary groups")
	})
	g.Go(func() error {
		var err error
		cantons, err = s.gateway.FetchCantons(gctx)
		return errs.Wrap(err, "fetch cantons")
	})
	if err := g.Wait(); err != nil {
		return report, err
	}

	syncedAt := s.now()
	present := make([]int64, 0, len(members))
	for _, m := range members {
		present = append(present, m.PersonNumber)
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.reference.UpsertCantons(txCtx, cantons); err != nil {
			return err
		}
		if err := s.reference.UpsertParties(txCtx, parties, syncedAt); err != nil {
			return err
		}
		if err := s.reference.UpsertParlGroups(txCtx, parlGroups, syncedAt); err != nil {
			return err
		}
		if err := s.reference.UpsertParliamentarians(txCtx, members, syncedAt); err != nil {
			return err
		}
		deactivated, err := s.reference.DeactivateMissing(txCtx, present)
		if err != nil {
			return err
		}
		report.Deactivated = deactivated
		return nil
	}); err != nil {
		return ReferenceReport{}, errs.Wrap(err, "apply reference sync")
	}

	report.Cantons = len(cantons)
	report.Parties = len(parties)
	report.ParlGroups = len(parlGroups)
	report.Parliamentarians = len(members)
	logging.Info(logCtx, "reference sync complete",
		slog.Int("cantons", report.Cantons),
		slog.Int("parties", report.Parties),
		slog.Int("parl_groups", report.ParlGroups),
		slog.Int("parliamentarians", report.Parliamentarians),
		slog.Int64("deactivated", report.Deactivated),
	)
	return report, nil
}

type CommitteeReport struct {
	Committees  int
	Memberships int
}

// SyncCommittees upserts committees by number and seats by
// (person, committee, start date).
func (s *Service) SyncCommittees(ctx context.Context) (CommitteeReport, error) {
	var report CommitteeReport
	if err := s.checkRun(ctx); err != nil {
		return report, err
	}

	var (
		committees  []ports.Committee
		memberships []ports.CommitteeMembership
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		committees, err = s.gateway.FetchCommittees(gctx)
		return errs.Wrap(err, "fetch committees")
	})
	g.Go(func() error {
		var err error
		memberships, err = s.gateway.FetchMemberships(gctx)
		return errs.Wrap(err, "fetch committee memberships")
	})
	if err := g.Wait(); err != nil {
		return report, err
	}

	syncedAt := s.now()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.committees.UpsertCommittees(txCtx, committees, syncedAt); err != nil {
			return err
		}
		return s.committees.UpsertMemberships(txCtx, memberships, syncedAt)
	}); err != nil {
		return report, errs.Wrap(err, "apply committee sync")
	}

	report.Committees = len(committees)
	report.Memberships = len(memberships)
	logging.Info(logging.WithComponent(ctx, "usecase.monitor.committee"), "committee sync complete",
		slog.Int("committees", report.Committees),
		slog.Int("memberships", report.Memberships),
	)
	return report, nil
}
