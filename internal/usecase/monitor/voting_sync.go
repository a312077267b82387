package monitor

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

type VotingReport struct {
	Sessions        int
	SkippedSessions int
	Votes           int
	Ballots         int64
	SessionNames    int64
}

func newThrottle(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// SyncVotes backfills roll calls session by session from MinSessionID upward.
// A session whose stored vote count already equals upstream is skipped, so an
// interrupted run resumes where it stopped. Each session commits on its own.
func (s *Service) SyncVotes(ctx context.Context) (VotingReport, error) {
	var report VotingReport
	if err := s.checkRun(ctx); err != nil {
		return report, err
	}
	logCtx := logging.WithComponent(ctx, "usecase.monitor.voting")

	sessions, err := s.gateway.FetchSessions(ctx, s.opts.MinSessionID)
	if err != nil {
		return report, errs.Wrap(err, "fetch sessions")
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })

	sessionThrottle := newThrottle(s.opts.SessionDelay)
	voteThrottle := newThrottle(s.opts.VoteDelay)

	for _, session := range sessions {
		if session.ID < s.opts.MinSessionID {
			continue
		}
		if err := sessionThrottle.Wait(ctx); err != nil {
			return report, errs.Wrap(err, "wait for session throttle")
		}
		report.Sessions++

		votes, err := s.gateway.FetchVotes(ctx, session.ID)
		if err != nil {
			report.SkippedSessions++
			logging.Warn(logCtx, "fetch votes failed, skipping session",
				slog.Int64("session_id", session.ID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		stored, err := s.votes.CountVotesInSession(ctx, session.ID)
		if err != nil {
			return report, err
		}
		if stored == int64(len(votes)) {
			report.SkippedSessions++
			continue
		}

		added, ballots, err := s.syncSession(ctx, session, votes, voteThrottle)
		if err != nil {
			return report, errs.Wrapf(err, "sync session %d", session.ID)
		}
		report.Votes += added
		report.Ballots += ballots
		logging.Info(logCtx, "session synced",
			slog.Int64("session_id", session.ID),
			slog.Int("votes", added),
			slog.Int64("ballots", ballots),
		)
	}

	named, err := s.backfillSessionNames(ctx, sessions)
	if err != nil {
		return report, err
	}
	report.SessionNames = named

	logging.Info(logCtx, "voting sync complete",
		slog.Int("sessions", report.Sessions),
		slog.Int("skipped_sessions", report.SkippedSessions),
		slog.Int("votes", report.Votes),
		slog.Int64("ballots", report.Ballots),
	)
	return report, nil
}

type voteWithBallots struct {
	vote    ports.Vote
	ballots []ports.Voting
}

// syncSession fetches ballots for the votes not stored yet and writes each
// vote together with its ballots. A vote whose ballots cannot be fetched is
// left out so the next run picks it up again.
func (s *Service) syncSession(ctx context.Context, session ports.Session, votes []ports.Vote, throttle *rate.Limiter) (int, int64, error) {
	logCtx := logging.WithComponent(ctx, "usecase.monitor.voting")

	pending := make([]voteWithBallots, 0, len(votes))
	for _, vote := range votes {
		exists, err := s.votes.VoteExists(ctx, vote.VoteID)
		if err != nil {
			return 0, 0, err
		}
		if exists {
			continue
		}
		if err := throttle.Wait(ctx); err != nil {
			return 0, 0, errs.Wrap(err, "wait for vote throttle")
		}

		ballots, err := s.gateway.FetchBallots(ctx, vote.VoteID)
		if err != nil {
			logging.Warn(logCtx, "fetch ballots failed, skipping vote",
				slog.Int64("vote_id", vote.VoteID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		for i := range ballots {
			ballots[i].VoteID = vote.VoteID
			ballots[i].Decision = parliament.NormalizeDecision(ballots[i].Decision)
		}

		if vote.SessionID == 0 {
			vote.SessionID = session.ID
		}
		if vote.SessionName == "" {
			vote.SessionName = session.Name
		}
		pending = append(pending, voteWithBallots{vote: vote, ballots: ballots})
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	added := 0
	var ballotCount int64
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		added, ballotCount = 0, 0
		for _, item := range pending {
			inserted, err := s.votes.CreateVote(txCtx, item.vote)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			n, err := s.votes.CreateVotings(txCtx, item.ballots)
			if err != nil {
				return err
			}
			added++
			ballotCount += n
		}
		return nil
	}); err != nil {
		return 0, 0, err
	}
	return added, ballotCount, nil
}

// backfillSessionNames copies names from the session roster onto stored
// votes that were written without one.
func (s *Service) backfillSessionNames(ctx context.Context, sessions []ports.Session) (int64, error) {
	missing, err := s.votes.SessionsMissingName(ctx)
	if err != nil {
		return 0, err
	}
	if len(missing) == 0 {
		return 0, nil
	}

	names := make(map[int64]string, len(sessions))
	for _, session := range sessions {
		if session.Name != "" {
			names[session.ID] = session.Name
		}
	}

	var updated int64
	for _, sessionID := range missing {
		name, ok := names[sessionID]
		if !ok {
			continue
		}
		n, err := s.votes.SetSessionName(ctx, sessionID, name)
		if err != nil {
			return updated, err
		}
		updated += n
	}
	return updated, nil
}
