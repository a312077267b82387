package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

type PredictionRepository struct {
	baseRepository
}

var _ ports.PredictionRepository = (*PredictionRepository)(nil)

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{baseRepository{db: db}}
}

func (r *PredictionRepository) ListPredictions(ctx context.Context, businessNumber string, modelVersion string) ([]ports.VotePrediction, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.VotePrediction
	if err := db.Where("business_number = ? AND model_version = ?", businessNumber, modelVersion).
		Order("person_number asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query vote predictions")
	}

	items := make([]ports.VotePrediction, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.VotePrediction{
			BusinessNumber:   row.BusinessNumber,
			PersonNumber:     row.PersonNumber,
			PredictedYes:     row.PredictedYes,
			PredictedNo:      row.PredictedNo,
			PredictedAbstain: row.PredictedAbstain,
			Confidence:       row.Confidence,
			ModelVersion:     row.ModelVersion,
			PredictionDate:   row.PredictionDate,
		})
	}
	return items, nil
}

func (r *PredictionRepository) UpsertPredictions(ctx context.Context, rows []ports.VotePrediction) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]model.VotePrediction, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.VotePrediction{
			BusinessNumber:   row.BusinessNumber,
			PersonNumber:     row.PersonNumber,
			ModelVersion:     row.ModelVersion,
			PredictedYes:     row.PredictedYes,
			PredictedNo:      row.PredictedNo,
			PredictedAbstain: row.PredictedAbstain,
			Confidence:       row.Confidence,
			PredictionDate:   row.PredictionDate.UTC(),
		})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "business_number"}, {Name: "person_number"}, {Name: "model_version"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"predicted_yes", "predicted_no", "predicted_abstain", "confidence", "prediction_date",
		}),
	}).CreateInBatches(&records, batchSize).Error; err != nil {
		return errs.Wrap(err, "upsert vote predictions")
	}
	return nil
}
