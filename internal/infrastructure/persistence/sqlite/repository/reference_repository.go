package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

// ReferenceRepository owns the slowly changing dimensions: cantons, parties,
// parliamentary groups and parliamentarians.
type ReferenceRepository struct {
	baseRepository
}

var _ ports.ReferenceRepository = (*ReferenceRepository)(nil)

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{baseRepository{db: db}}
}

func (r *ReferenceRepository) UpsertCantons(ctx context.Context, rows []ports.Canton) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]model.Canton, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.Canton{CantonNumber: row.Number, Name: row.Name, Abbreviation: row.Abbreviation})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "canton_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"canton_name", "canton_abbreviation"}),
	}).CreateInBatches(&records, batchSize).Error; err != nil {
		return errs.Wrap(err, "upsert cantons")
	}
	return nil
}

func (r *ReferenceRepository) UpsertParties(ctx context.Context, rows []ports.Party, syncedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	synced := syncedAt.UTC()
	records := make([]model.Party, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.Party{PartyNumber: row.Number, Name: row.Name, Abbreviation: row.Abbreviation, LastSync: &synced})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "party_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"party_name", "party_abbreviation", "last_sync"}),
	}).CreateInBatches(&records, batchSize).Error; err != nil {
		return errs.Wrap(err, "upsert parties")
	}
	return nil
}

func (r *ReferenceRepository) UpsertParlGroups(ctx context.Context, rows []ports.ParlGroup, syncedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	synced := syncedAt.UTC()
	records := make([]model.ParlGroup, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.ParlGroup{ParlGroupNumber: row.Number, Name: row.Name, Abbreviation: row.Abbreviation, LastSync: &synced})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "parl_group_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"parl_group_name", "parl_group_abbreviation", "last_sync"}),
	}).CreateInBatches(&records, batchSize).Error; err != nil {
		return errs.Wrap(err, "upsert parliamentary groups")
	}
	return nil
}

func (r *ReferenceRepository) UpsertParliamentarians(ctx context.Context, rows []ports.Parliamentarian, syncedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	synced := syncedAt.UTC()
	records := make([]model.Parliamentarian, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.Parliamentarian{
			PersonNumber:          row.PersonNumber,
			FirstName:             row.FirstName,
			LastName:              row.LastName,
			Gender:                row.Gender,
			DateOfBirth:           utcPtr(row.DateOfBirth),
			CantonNumber:          row.CantonNumber,
			CantonName:            row.CantonName,
			CantonAbbreviation:    row.CantonAbbreviation,
			CouncilNumber:         row.CouncilNumber,
			CouncilName:           row.CouncilName,
			PartyNumber:           row.PartyNumber,
			PartyName:             row.PartyName,
			PartyAbbreviation:     row.PartyAbbreviation,
			ParlGroupNumber:       row.ParlGroupNumber,
			ParlGroupName:         row.ParlGroupName,
			ParlGroupAbbreviation: row.ParlGroupAbbreviation,
			MembershipStart:       utcPtr(row.MembershipStart),
			MembershipEnd:         utcPtr(row.MembershipEnd),
			Active:                row.Active,
			LastSync:              &synced,
		})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "person_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "gender", "date_of_birth",
			"canton_number", "canton_name", "canton_abbreviation",
			"council_number", "council_name",
			"party_number", "party_name", "party_abbreviation",
			"parl_group_number", "parl_group_name", "parl_group_abbreviation",
			"membership_start", "membership_end", "active", "last_sync", "updated_at",
		}),
	}).CreateInBatches(&records, batchSize).Error; err != nil {
		return errs.Wrap(err, "upsert parliamentarians")
	}
	return nil
}

func (r *ReferenceRepository) DeactivateMissing(ctx context.Context, present []int64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}
	// An empty roster is treated as "no data", never as "everyone left".
	if len(present) == 0 {
		return 0, nil
	}

	result := db.Model(&model.Parliamentarian{}).
		Where("active = ? AND person_number NOT IN ?", true, present).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "deactivate missing parliamentarians")
	}
	return result.RowsAffected, nil
}

func (r *ReferenceRepository) ListParliamentarians(ctx context.Context, personNumbers []int64) ([]ports.Parliamentarian, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(personNumbers) == 0 {
		return nil, nil
	}

	var rows []model.Parliamentarian
	for _, chunk := range chunkInt64(personNumbers, 500) {
		var part []model.Parliamentarian
		if err := db.Where("person_number IN ?", chunk).Order("person_number asc").Find(&part).Error; err != nil {
			return nil, errs.Wrap(err, "query parliamentarians")
		}
		rows = append(rows, part...)
	}
	return mapParliamentarians(rows), nil
}

func (r *ReferenceRepository) ListActiveParliamentarians(ctx context.Context, councilNumber int64) ([]ports.Parliamentarian, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Where("active = ?", true)
	if councilNumber > 0 {
		query = query.Where("council_number = ?", councilNumber)
	}

	var rows []model.Parliamentarian
	if err := query.Order("last_name asc").Order("first_name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query active parliamentarians")
	}
	return mapParliamentarians(rows), nil
}

func (r *ReferenceRepository) FindParlGroup(ctx context.Context, nameOrAbbreviation string) (ports.ParlGroup, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ParlGroup{}, err
	}

	needle := strings.TrimSpace(nameOrAbbreviation)
	if needle == "" {
		return ports.ParlGroup{}, ports.ErrNotFound
	}

	var row model.ParlGroup
	if err := db.Where("parl_group_name = ? OR parl_group_abbreviation = ?", needle, needle).
		Order("parl_group_number asc").
		Take(&row).Error; err != nil {
		if notFound(err) {
			return ports.ParlGroup{}, ports.ErrNotFound
		}
		return ports.ParlGroup{}, errs.Wrap(err, "query parliamentary group")
	}
	return ports.ParlGroup{Number: row.ParlGroupNumber, Name: row.Name, Abbreviation: row.Abbreviation}, nil
}

func mapParliamentarians(rows []model.Parliamentarian) []ports.Parliamentarian {
	items := make([]ports.Parliamentarian, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Parliamentarian{
			PersonNumber:          row.PersonNumber,
			FirstName:             row.FirstName,
			LastName:              row.LastName,
			Gender:                row.Gender,
			DateOfBirth:           row.DateOfBirth,
			CantonNumber:          row.CantonNumber,
			CantonName:            row.CantonName,
			CantonAbbreviation:    row.CantonAbbreviation,
			CouncilNumber:         row.CouncilNumber,
			CouncilName:           row.CouncilName,
			PartyNumber:           row.PartyNumber,
			PartyName:             row.PartyName,
			PartyAbbreviation:     row.PartyAbbreviation,
			ParlGroupNumber:       row.ParlGroupNumber,
			ParlGroupName:         row.ParlGroupName,
			ParlGroupAbbreviation: row.ParlGroupAbbreviation,
			MembershipStart:       row.MembershipStart,
			MembershipEnd:         row.MembershipEnd,
			Active:                row.Active,
			LastSync:              row.LastSync,
		})
	}
	return items
}
