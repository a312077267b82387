package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/domain/prediction"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

type VoteRepository struct {
	baseRepository
}

var _ ports.VoteRepository = (*VoteRepository)(nil)

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{baseRepository{db: db}}
}

var yesNo = []string{parliament.DecisionYes, parliament.DecisionNo}

func (r *VoteRepository) CountVotesInSession(ctx context.Context, sessionID int64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Vote{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count session votes")
	}
	return count, nil
}

func (r *VoteRepository) VoteExists(ctx context.Context, voteID int64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.Vote{}).Where("vote_id = ?", voteID).Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count vote")
	}
	return count > 0, nil
}

func (r *VoteRepository) CreateVote(ctx context.Context, vote ports.Vote) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.Vote{
		VoteID:         vote.VoteID,
		SessionID:      vote.SessionID,
		SessionName:    vote.SessionName,
		CouncilNumber:  vote.CouncilNumber,
		BusinessNumber: vote.BusinessNumber,
		BusinessTitle:  vote.BusinessTitle,
		Subject:        vote.Subject,
		MeaningYes:     vote.MeaningYes,
		MeaningNo:      vote.MeaningNo,
		VoteDate:       utcPtr(vote.VoteDate),
		TotalYes:       vote.TotalYes,
		TotalNo:        vote.TotalNo,
		TotalAbstain:   vote.TotalAbstain,
		TotalNotVoted:  vote.TotalNotVoted,
		Result:         vote.Result,
	}
	if len(vote.RawData) > 0 {
		row.RawData = datatypes.JSON(vote.RawData)
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vote_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert vote")
	}
	return result.RowsAffected > 0, nil
}

func (r *VoteRepository) CreateVotings(ctx context.Context, rows []ports.Voting) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	records := make([]model.Voting, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.Voting{
			VoteID:          row.VoteID,
			PersonNumber:    row.PersonNumber,
			Decision:        row.Decision,
			ParlGroupNumber: row.ParlGroupNumber,
			CantonNumber:    row.CantonNumber,
		})
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vote_id"}, {Name: "person_number"}},
		DoNothing: true,
	}).CreateInBatches(&records, batchSize)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "insert votings")
	}
	return result.RowsAffected, nil
}

func (r *VoteRepository) SessionsMissingName(ctx context.Context) ([]int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := db.Model(&model.Vote{}).
		Where("session_name = ?", "").
		Distinct("session_id").
		Order("session_id asc").
		Pluck("session_id", &ids).Error; err != nil {
		return nil, errs.Wrap(err, "query sessions missing name")
	}
	return ids, nil
}

func (r *VoteRepository) SetSessionName(ctx context.Context, sessionID int64, name string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Model(&model.Vote{}).
		Where("session_id = ? AND session_name = ?", sessionID, "").
		Update("session_name", name)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "update session name")
	}
	return result.RowsAffected, nil
}

type decisionCount struct {
	VoteID   int64
	Decision string
	Total    int64
}

func (r *VoteRepository) GroupDecisionCounts(ctx context.Context, parlGroupNumber int64, businessVotesOnly bool) (int64, int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, 0, err
	}

	query := db.Model(&model.Voting{}).
		Select("decision, COUNT(*) AS total").
		Where("parl_group_number = ? AND decision IN ?", parlGroupNumber, yesNo)
	if businessVotesOnly {
		sub := db.Model(&model.Vote{}).Select("vote_id").Where("business_number <> ?", "")
		query = query.Where("vote_id IN (?)", sub)
	}

	var rows []decisionCount
	if err := query.Group("decision").Scan(&rows).Error; err != nil {
		return 0, 0, errs.Wrap(err, "count group decisions")
	}

	var yes, no int64
	for _, row := range rows {
		switch row.Decision {
		case parliament.DecisionYes:
			yes = row.Total
		case parliament.DecisionNo:
			no = row.Total
		}
	}
	return yes, no, nil
}

func (r *VoteRepository) MemberBallots(ctx context.Context, personNumber int64) ([]prediction.Ballot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Voting
	if err := db.Select("vote_id", "decision").
		Where("person_number = ? AND decision IN ?", personNumber, yesNo).
		Order("vote_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query member ballots")
	}

	ballots := make([]prediction.Ballot, 0, len(rows))
	for _, row := range rows {
		ballots = append(ballots, prediction.Ballot{VoteID: row.VoteID, Decision: row.Decision})
	}
	return ballots, nil
}

func (r *VoteRepository) GroupTallies(ctx context.Context, parlGroupNumber int64, voteIDs []int64) (map[int64]prediction.Tally, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tallies := make(map[int64]prediction.Tally, len(voteIDs))
	for _, chunk := range chunkInt64(voteIDs, 500) {
		var rows []decisionCount
		if err := db.Model(&model.Voting{}).
			Select("vote_id, decision, COUNT(*) AS total").
			Where("parl_group_number = ? AND decision IN ? AND vote_id IN ?", parlGroupNumber, yesNo, chunk).
			Group("vote_id, decision").
			Scan(&rows).Error; err != nil {
			return nil, errs.Wrap(err, "count group tallies")
		}
		for _, row := range rows {
			tally := tallies[row.VoteID]
			switch row.Decision {
			case parliament.DecisionYes:
				tally.Yes = row.Total
			case parliament.DecisionNo:
				tally.No = row.Total
			}
			tallies[row.VoteID] = tally
		}
	}
	return tallies, nil
}
