package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

type EventRepository struct {
	baseRepository
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{baseRepository{db: db}}
}

func (r *EventRepository) EventExists(ctx context.Context, key ports.EventKey) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.BusinessEvent{}).
		Where("business_number = ? AND event_type = ? AND description = ? AND committee_name = ?",
			key.BusinessNumber, string(key.EventType), key.Description, key.CommitteeName).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count business events")
	}
	return count > 0, nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event ports.BusinessEvent) (ports.BusinessEvent, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.BusinessEvent{}, false, err
	}

	row := model.BusinessEvent{
		BusinessNumber: event.BusinessNumber,
		EventType:      string(event.EventType),
		EventDate:      utcPtr(event.EventDate),
		Description:    event.Description,
		CommitteeName:  event.CommitteeName,
		DedupKey:       event.DedupKey,
	}
	if len(event.RawData) > 0 {
		row.RawData = datatypes.JSON(event.RawData)
	}

	query := db
	if row.DedupKey != nil {
		query = query.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		})
	}
	result := query.Create(&row)
	if result.Error != nil {
		return ports.BusinessEvent{}, false, errs.Wrap(result.Error, "insert business event")
	}
	if result.RowsAffected == 0 {
		return ports.BusinessEvent{}, false, nil
	}
	return mapEvent(row), true, nil
}

func (r *EventRepository) ListEvents(ctx context.Context, businessNumber string) ([]ports.BusinessEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.BusinessEvent
	if err := db.Where("business_number = ?", businessNumber).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query business events")
	}

	items := make([]ports.BusinessEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEvent(row))
	}
	return items, nil
}

func (r *EventRepository) CountEvents(ctx context.Context, businessNumber string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.BusinessEvent{}).Where("business_number = ?", businessNumber).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count business events")
	}
	return count, nil
}

func (r *EventRepository) NextEventDates(ctx context.Context, businessNumbers []string, after time.Time) (map[string]time.Time, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(businessNumbers))
	if len(businessNumbers) == 0 {
		return out, nil
	}

	var rows []model.BusinessEvent
	if err := db.Select("business_number", "event_date").
		Where("business_number IN ? AND event_date IS NOT NULL AND event_date > ?", businessNumbers, after.UTC()).
		Order("event_date asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query upcoming events")
	}

	for _, row := range rows {
		if row.EventDate == nil {
			continue
		}
		if _, ok := out[row.BusinessNumber]; !ok {
			out[row.BusinessNumber] = row.EventDate.UTC()
		}
	}
	return out, nil
}

type AlertRepository struct {
	baseRepository
}

var _ ports.AlertRepository = (*AlertRepository)(nil)

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{baseRepository{db: db}}
}

func (r *AlertRepository) CreateAlerts(ctx context.Context, alerts []ports.Alert) ([]ports.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	rows := make([]model.Alert, 0, len(alerts))
	for _, alert := range alerts {
		rows = append(rows, model.Alert{
			UserID:         alert.UserID,
			BusinessNumber: alert.BusinessNumber,
			EventID:        alert.EventID,
			AlertType:      string(alert.AlertType),
			Message:        alert.Message,
			EventDate:      utcPtr(alert.EventDate),
			IsRead:         alert.IsRead,
		})
	}
	if err := db.CreateInBatches(&rows, batchSize).Error; err != nil {
		return nil, errs.Wrap(err, "insert alerts")
	}

	items := make([]ports.Alert, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAlert(row))
	}
	return items, nil
}

func (r *AlertRepository) ListAlerts(ctx context.Context, filter ports.AlertFilter) ([]ports.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Alert{}).Where("user_id = ?", filter.UserID)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filter.VisibleFrom != nil {
		scheduled := []string{string(parliament.AlertCommitteeScheduled), string(parliament.AlertDebateScheduled)}
		query = query.Where("(alert_type NOT IN ? OR event_date IS NULL OR event_date >= ?)", scheduled, filter.VisibleFrom.UTC())
	}
	query = query.Order("created_at desc").Order("id desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.Alert
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query alerts")
	}

	items := make([]ports.Alert, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAlert(row))
	}
	return items, nil
}

func (r *AlertRepository) MarkAlertRead(ctx context.Context, userID uint64, alertID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Alert{}).Where("id = ? AND user_id = ?", alertID, userID).Update("is_read", true)
	if result.Error != nil {
		return errs.Wrap(result.Error, "mark alert read")
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func mapEvent(row model.BusinessEvent) ports.BusinessEvent {
	return ports.BusinessEvent{
		ID:             row.ID,
		BusinessNumber: row.BusinessNumber,
		EventType:      parliament.EventType(row.EventType),
		EventDate:      row.EventDate,
		Description:    row.Description,
		CommitteeName:  row.CommitteeName,
		DedupKey:       row.DedupKey,
		RawData:        []byte(row.RawData),
		CreatedAt:      row.CreatedAt,
	}
}

func mapAlert(row model.Alert) ports.Alert {
	return ports.Alert{
		ID:             row.ID,
		UserID:         row.UserID,
		BusinessNumber: row.BusinessNumber,
		EventID:        row.EventID,
		AlertType:      parliament.AlertType(row.AlertType),
		Message:        row.Message,
		EventDate:      row.EventDate,
		IsRead:         row.IsRead,
		CreatedAt:      row.CreatedAt,
	}
}
