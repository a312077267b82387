package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parlmonitor/internal/errs"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	"parlmonitor/internal/ports"
)

type BusinessCacheRepository struct {
	baseRepository
}

var _ ports.BusinessCacheRepository = (*BusinessCacheRepository)(nil)

func NewBusinessCacheRepository(db *gorm.DB) *BusinessCacheRepository {
	return &BusinessCacheRepository{baseRepository{db: db}}
}

func (r *BusinessCacheRepository) InsertMissing(ctx context.Context, items []ports.CachedBusiness) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(items))
	rows := make([]model.CachedBusiness, 0, len(items))
	for _, item := range items {
		number := strings.TrimSpace(item.BusinessNumber)
		if number == "" {
			continue
		}
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}
		rows = append(rows, model.CachedBusiness{BusinessNumber: number, Title: item.Title})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "business_number"}},
		DoNothing: true,
	}).CreateInBatches(&rows, batchSize)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "insert cached businesses")
	}
	return result.RowsAffected, nil
}

func (r *BusinessCacheRepository) GetCached(ctx context.Context, businessNumber string) (ports.CachedBusiness, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CachedBusiness{}, err
	}

	var row model.CachedBusiness
	if err := db.Where("business_number = ?", businessNumber).Take(&row).Error; err != nil {
		if notFound(err) {
			return ports.CachedBusiness{}, ports.ErrNotFound
		}
		return ports.CachedBusiness{}, errs.Wrap(err, "query cached business")
	}
	return ports.CachedBusiness{BusinessNumber: row.BusinessNumber, Title: row.Title, CreatedAt: row.CreatedAt}, nil
}

func (r *BusinessCacheRepository) SearchCached(ctx context.Context, text string, limit int) ([]ports.CachedBusiness, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
	query := db.Where("(business_number LIKE ? OR LOWER(title) LIKE ?)", pattern, pattern).Order("business_number desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.CachedBusiness
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "search cached businesses")
	}

	items := make([]ports.CachedBusiness, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.CachedBusiness{BusinessNumber: row.BusinessNumber, Title: row.Title, CreatedAt: row.CreatedAt})
	}
	return items, nil
}
