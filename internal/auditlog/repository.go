package auditlog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func byFilter(filter AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("organization_id = ?", filter.OrganizationID)
		if filter.EventID > 0 {
			db = db.Where("event_id = ?", filter.EventID)
		}
		if filter.Action != "" {
			db = db.Where("action ILIKE ?", "%"+filter.Action+"%")
		}
		if filter.FromDate != nil {
			db = db.Where("created_at >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			db = db.Where("created_at <= ?", *filter.ToDate)
		}
		return db
	}
}

// GetByFilter returns one page of entries, newest first, plus the total.
func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&AuditLog{}).
		Scopes(byFilter(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var logs []AuditLog
	err = r.db.WithContext(ctx).
		Scopes(byFilter(filter)).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
