package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

type UserRepository struct {
	baseRepository
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{baseRepository{db: db}}
}

func (r *UserRepository) CreateUser(ctx context.Context, user ports.User) (ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.User{}, err
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		return ports.User{}, errors.New("email is required")
	}
	alertTypes := user.AlertTypes
	if alertTypes == "" {
		alertTypes = parliament.FormatAlertTypeSet(parliament.DefaultNotifyAlertTypes)
	}

	row := model.User{
		Email:              email,
		DisplayName:        strings.TrimSpace(user.DisplayName),
		EmailAlertsEnabled: user.EmailAlertsEnabled,
		EmailAlertTypes:    alertTypes,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.User{}, errs.Wrap(err, "insert user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) GetUser(ctx context.Context, userID uint64) (ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.User{}, err
	}

	var row model.User
	if err := db.Where("id = ?", userID).Take(&row).Error; err != nil {
		if notFound(err) {
			return ports.User{}, ports.ErrNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) ListUsers(ctx context.Context, userIDs []uint64) ([]ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	var rows []model.User
	if err := db.Where("id IN ?", userIDs).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query users")
	}

	items := make([]ports.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUser(row))
	}
	return items, nil
}

func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, userID uint64, enabled bool, alertTypes string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"email_alerts_enabled": enabled,
			"email_alert_types":    alertTypes,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update notification settings")
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func mapUser(row model.User) ports.User {
	return ports.User{
		ID:                 row.ID,
		Email:              row.Email,
		DisplayName:        row.DisplayName,
		EmailAlertsEnabled: row.EmailAlertsEnabled,
		AlertTypes:         row.EmailAlertTypes,
		CreatedAt:          row.CreatedAt,
	}
}
