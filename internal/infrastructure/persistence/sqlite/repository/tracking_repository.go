package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

type TrackingRepository struct {
	baseRepository
}

var _ ports.TrackingRepository = (*TrackingRepository)(nil)

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{baseRepository{db: db}}
}

func (r *TrackingRepository) ListTrackedNumbers(ctx context.Context) ([]string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var numbers []string
	if err := db.Model(&model.TrackedBusiness{}).
		Distinct("business_number").
		Order("business_number asc").
		Pluck("business_number", &numbers).Error; err != nil {
		return nil, errs.Wrap(err, "query tracked numbers")
	}
	return numbers, nil
}

func (r *TrackingRepository) ListByNumber(ctx context.Context, businessNumber string) ([]ports.TrackedBusiness, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.TrackedBusiness
	if err := db.Where("business_number = ?", businessNumber).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query tracked businesses by number")
	}
	return mapTrackedRows(rows), nil
}

func (r *TrackingRepository) ListByUser(ctx context.Context, userID uint64) ([]ports.TrackedBusiness, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.TrackedBusiness
	if err := db.Where("user_id = ?", userID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "created_at"}, Desc: true},
			{Column: clause.Column{Name: "id"}, Desc: true},
		}}).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query tracked businesses by user")
	}
	return mapTrackedRows(rows), nil
}

func (r *TrackingRepository) Exists(ctx context.Context, userID uint64, businessNumber string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.TrackedBusiness{}).
		Where("user_id = ? AND business_number = ?", userID, strings.TrimSpace(businessNumber)).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count tracked business")
	}
	return count > 0, nil
}

func (r *TrackingRepository) Create(ctx context.Context, tracked ports.TrackedBusiness) (ports.TrackedBusiness, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.TrackedBusiness{}, err
	}

	row := model.TrackedBusiness{
		UserID:         tracked.UserID,
		BusinessNumber: tracked.BusinessNumber,
		SubmissionDate: utcPtr(tracked.SubmissionDate),
		Priority:       tracked.Priority,
		LastAPISync:    utcPtr(tracked.LastAPISync),
	}
	applyDetails(&row, tracked.BusinessDetails)
	if err := db.Create(&row).Error; err != nil {
		return ports.TrackedBusiness{}, errs.Wrap(err, "insert tracked business")
	}
	return mapTracked(row), nil
}

func (r *TrackingRepository) Delete(ctx context.Context, userID uint64, businessNumber string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var row model.TrackedBusiness
	if err := db.Select("id").Where("user_id = ? AND business_number = ?", userID, businessNumber).Take(&row).Error; err != nil {
		if notFound(err) {
			return ports.ErrNotFound
		}
		return errs.Wrap(err, "query tracked business")
	}
	if err := db.Where("tracked_id = ?", row.ID).Delete(&model.BusinessNote{}).Error; err != nil {
		return errs.Wrap(err, "delete business notes")
	}
	if err := db.Delete(&model.TrackedBusiness{}, row.ID).Error; err != nil {
		return errs.Wrap(err, "delete tracked business")
	}
	return nil
}

func (r *TrackingRepository) Get(ctx context.Context, userID uint64, businessNumber string) (ports.TrackedBusiness, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.TrackedBusiness{}, err
	}

	var row model.TrackedBusiness
	if err := db.Where("user_id = ? AND business_number = ?", userID, businessNumber).Take(&row).Error; err != nil {
		if notFound(err) {
			return ports.TrackedBusiness{}, ports.ErrNotFound
		}
		return ports.TrackedBusiness{}, errs.Wrap(err, "query tracked business")
	}
	return mapTracked(row), nil
}

func (r *TrackingRepository) AddNote(ctx context.Context, note ports.BusinessNote) (ports.BusinessNote, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.BusinessNote{}, err
	}

	row := model.BusinessNote{TrackedID: note.TrackedID, UserID: note.UserID, Content: note.Content}
	if err := db.Create(&row).Error; err != nil {
		return ports.BusinessNote{}, errs.Wrap(err, "insert business note")
	}
	return ports.BusinessNote{
		ID:         row.ID,
		TrackedID:  row.TrackedID,
		UserID:     row.UserID,
		AuthorName: note.AuthorName,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func (r *TrackingRepository) ListNotes(ctx context.Context, trackedID uint64) ([]ports.BusinessNote, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		model.BusinessNote
		AuthorName string `gorm:"column:author_name"`
	}
	if err := db.Table("business_notes AS n").
		Select("n.*, COALESCE(u.display_name, '') AS author_name").
		Joins("LEFT JOIN users AS u ON u.id = n.user_id").
		Where("n.tracked_id = ?", trackedID).
		Order("n.created_at desc").Order("n.id desc").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query business notes")
	}

	items := make([]ports.BusinessNote, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.BusinessNote{
			ID:         row.ID,
			TrackedID:  row.TrackedID,
			UserID:     row.UserID,
			AuthorName: row.AuthorName,
			Content:    row.Content,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

func (r *TrackingRepository) SetPriority(ctx context.Context, userID uint64, businessNumber string, priority *int) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var value any
	if priority != nil {
		value = *priority
	}
	result := db.Model(&model.TrackedBusiness{}).
		Where("user_id = ? AND business_number = ?", userID, businessNumber).
		Update("priority", value)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update priority")
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *TrackingRepository) UpdateDetails(ctx context.Context, trackedID uint64, update ports.TrackedUpdate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	d := update.Details
	values := map[string]any{
		"title":                    d.Title,
		"description":              d.Description,
		"status":                   d.Status,
		"business_type":            d.BusinessType,
		"author":                   d.Author,
		"author_faction":           d.AuthorFaction,
		"submitted_text":           d.SubmittedText,
		"reasoning":                d.Reasoning,
		"federal_council_response": d.FederalCouncilResponse,
		"federal_council_proposal": d.FederalCouncilProposal,
		"first_council":            d.FirstCouncil,
	}
	if update.SubmissionDate != nil {
		values["submission_date"] = update.SubmissionDate.UTC()
	}
	if update.LastAPISync != nil {
		values["last_api_sync"] = update.LastAPISync.UTC()
	}

	result := db.Model(&model.TrackedBusiness{}).Where("id = ?", trackedID).Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update tracked business details")
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func applyDetails(row *model.TrackedBusiness, d parliament.BusinessDetails) {
	row.Title = d.Title
	row.Description = d.Description
	row.Status = d.Status
	row.BusinessType = d.BusinessType
	row.Author = d.Author
	row.AuthorFaction = d.AuthorFaction
	row.SubmittedText = d.SubmittedText
	row.Reasoning = d.Reasoning
	row.FederalCouncilResponse = d.FederalCouncilResponse
	row.FederalCouncilProposal = d.FederalCouncilProposal
	row.FirstCouncil = d.FirstCouncil
}

func mapTrackedRows(rows []model.TrackedBusiness) []ports.TrackedBusiness {
	items := make([]ports.TrackedBusiness, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTracked(row))
	}
	return items
}

func mapTracked(row model.TrackedBusiness) ports.TrackedBusiness {
	return ports.TrackedBusiness{
		ID:             row.ID,
		UserID:         row.UserID,
		BusinessNumber: row.BusinessNumber,
		BusinessDetails: parliament.BusinessDetails{
			Title:                  row.Title,
			Description:            row.Description,
			Status:                 row.Status,
			BusinessType:           row.BusinessType,
			Author:                 row.Author,
			AuthorFaction:          row.AuthorFaction,
			SubmittedText:          row.SubmittedText,
			Reasoning:              row.Reasoning,
			FederalCouncilResponse: row.FederalCouncilResponse,
			FederalCouncilProposal: row.FederalCouncilProposal,
			FirstCouncil:           row.FirstCouncil,
		},
		SubmissionDate: row.SubmissionDate,
		Priority:       row.Priority,
		LastAPISync:    row.LastAPISync,
		CreatedAt:      row.CreatedAt,
	}
}
