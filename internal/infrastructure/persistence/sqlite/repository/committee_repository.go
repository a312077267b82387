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

type CommitteeRepository struct {
	baseRepository
}

var _ ports.CommitteeRepository = (*CommitteeRepository)(nil)

func NewCommitteeRepository(db *gorm.DB) *CommitteeRepository {
	return &CommitteeRepository{baseRepository{db: db}}
}

func (r *CommitteeRepository) UpsertCommittees(ctx context.Context, rows []ports.Committee, syncedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	synced := syncedAt.UTC()
	records := make([]model.Committee, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.Committee{
			CommitteeNumber: row.Number,
			Name:            row.Name,
			Abbreviation:    row.Abbreviation,
			CouncilNumber:   row.CouncilNumber,
			CommitteeType:   row.CommitteeType,
			IsActive:        true,
			LastSync:        &synced,
		})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "committee_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"committee_name", "committee_abbreviation", "council_number", "committee_type", "is_active", "last_sync",
		}),
	}).CreateInBatches(&records, batchSize).Error; err != nil {
		return errs.Wrap(err, "upsert committees")
	}
	return nil
}

func (r *CommitteeRepository) UpsertMemberships(ctx context.Context, rows []ports.CommitteeMembership, syncedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	synced := syncedAt.UTC()
	records := make([]model.CommitteeMembership, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.CommitteeMembership{
			PersonNumber:          row.PersonNumber,
			CommitteeNumber:       row.CommitteeNumber,
			StartDate:             row.StartDate.UTC(),
			EndDate:               utcPtr(row.EndDate),
			CommitteeName:         row.CommitteeName,
			CommitteeAbbreviation: row.CommitteeAbbreviation,
			CouncilNumber:         row.CouncilNumber,
			Function:              row.Function,
			IsActive:              row.IsActive(),
			LastSync:              &synced,
		})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "person_number"}, {Name: "committee_number"}, {Name: "start_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"end_date", "committee_name", "committee_abbreviation", "council_number", "function", "is_active", "last_sync",
		}),
	}).CreateInBatches(&records, batchSize).Error; err != nil {
		return errs.Wrap(err, "upsert committee memberships")
	}
	return nil
}

func (r *CommitteeRepository) ListMemberships(ctx context.Context, committeeNumber int64, activeOnly bool) ([]ports.CommitteeMembership, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Where("committee_number = ?", committeeNumber)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []model.CommitteeMembership
	if err := query.Order("person_number asc").Order("start_date asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query committee memberships")
	}

	items := make([]ports.CommitteeMembership, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.CommitteeMembership{
			PersonNumber:          row.PersonNumber,
			CommitteeNumber:       row.CommitteeNumber,
			CommitteeName:         row.CommitteeName,
			CommitteeAbbreviation: row.CommitteeAbbreviation,
			CouncilNumber:         row.CouncilNumber,
			Function:              row.Function,
			StartDate:             row.StartDate,
			EndDate:               row.EndDate,
		})
	}
	return items, nil
}

func (r *CommitteeRepository) FindCommittee(ctx context.Context, name string, abbreviation string) (ports.Committee, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Committee{}, err
	}

	for _, lookup := range []struct {
		column string
		value  string
	}{
		{"committee_name", strings.TrimSpace(name)},
		{"committee_abbreviation", strings.TrimSpace(abbreviation)},
	} {
		if lookup.value == "" {
			continue
		}
		var row model.Committee
		err := db.Where(lookup.column+" = ?", lookup.value).Order("committee_number asc").Take(&row).Error
		if err == nil {
			return ports.Committee{
				Number:        row.CommitteeNumber,
				Name:          row.Name,
				Abbreviation:  row.Abbreviation,
				CouncilNumber: row.CouncilNumber,
				CommitteeType: row.CommitteeType,
			}, nil
		}
		if !notFound(err) {
			return ports.Committee{}, errs.Wrap(err, "query committee")
		}
	}
	return ports.Committee{}, ports.ErrNotFound
}
