package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

type MonitoringRepository struct {
	baseRepository
}

var _ ports.MonitoringRepository = (*MonitoringRepository)(nil)

func NewMonitoringRepository(db *gorm.DB) *MonitoringRepository {
	return &MonitoringRepository{baseRepository{db: db}}
}

func (r *MonitoringRepository) InsertCandidates(ctx context.Context, rows []ports.MonitoringCandidate) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	records := make([]model.MonitoringCandidate, 0, len(rows))
	for _, row := range rows {
		decision := row.Decision
		if decision == "" {
			decision = parliament.CandidatePending
		}
		records = append(records, model.MonitoringCandidate{
			BusinessNumber: row.BusinessNumber,
			Title:          row.Title,
			Description:    row.Description,
			BusinessType:   row.BusinessType,
			SubmissionDate: utcPtr(row.SubmissionDate),
			Decision:       string(decision),
		})
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "business_number"}},
		DoNothing: true,
	}).CreateInBatches(&records, batchSize)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "insert monitoring candidates")
	}
	return result.RowsAffected, nil
}

func (r *MonitoringRepository) ListCandidates(ctx context.Context, decision parliament.CandidateDecision) ([]ports.MonitoringCandidate, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.MonitoringCandidate{})
	if decision != "" {
		query = query.Where("decision = ?", string(decision))
	}

	var rows []model.MonitoringCandidate
	if err := query.Order("created_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query monitoring candidates")
	}

	items := make([]ports.MonitoringCandidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCandidate(row))
	}
	return items, nil
}

func (r *MonitoringRepository) GetCandidate(ctx context.Context, candidateID uint64) (ports.MonitoringCandidate, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.MonitoringCandidate{}, err
	}

	var row model.MonitoringCandidate
	if err := db.Where("id = ?", candidateID).Take(&row).Error; err != nil {
		if notFound(err) {
			return ports.MonitoringCandidate{}, ports.ErrNotFound
		}
		return ports.MonitoringCandidate{}, errs.Wrap(err, "query monitoring candidate")
	}
	return mapCandidate(row), nil
}

// SetDecision only moves a pending candidate; a decided one yields ErrDecisionFinal.
func (r *MonitoringRepository) SetDecision(ctx context.Context, candidateID uint64, decision parliament.CandidateDecision, decidedBy uint64, decidedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.MonitoringCandidate{}).
		Where("id = ? AND decision = ?", candidateID, string(parliament.CandidatePending)).
		Updates(map[string]any{
			"decision":   string(decision),
			"decided_by": decidedBy,
			"decided_at": decidedAt.UTC(),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update candidate decision")
	}
	if result.RowsAffected == 0 {
		return parliament.ErrDecisionFinal
	}
	return nil
}

func mapCandidate(row model.MonitoringCandidate) ports.MonitoringCandidate {
	return ports.MonitoringCandidate{
		ID:             row.ID,
		BusinessNumber: row.BusinessNumber,
		Title:          row.Title,
		Description:    row.Description,
		BusinessType:   row.BusinessType,
		SubmissionDate: row.SubmissionDate,
		Decision:       parliament.CandidateDecision(row.Decision),
		DecidedBy:      row.DecidedBy,
		DecidedAt:      row.DecidedAt,
		CreatedAt:      row.CreatedAt,
	}
}
