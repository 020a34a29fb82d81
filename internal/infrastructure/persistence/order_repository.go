package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements ledger.OrderReader using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// SumPaidRevenue sums totals of paid orders created in [from, to)
func (r *GormOrderRepository) SumPaidRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("is_paid = ? AND created_at >= ? AND created_at < ?", true, from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, translateError(err, "sum paid revenue")
	}
	return result.Total, nil
}

// EarliestCreatedAt returns the timestamp of the first order
func (r *GormOrderRepository) EarliestCreatedAt(ctx context.Context) (*time.Time, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).Order("created_at ASC").Limit(1).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "find earliest order")
	}
	return &model.CreatedAt, nil
}

// FindAll lists orders, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter ledger.OrderFilter) ([]ledger.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.PaidOnly {
		query = query.Where("is_paid = ?", true)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", ledger.Date(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", ledger.Date(*filter.To).AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count orders")
	}

	page := filter.Pagination.Normalize()
	var rows []models.OrderModel
	if err := query.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list orders")
	}

	orders := make([]ledger.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

var _ ledger.OrderReader = (*GormOrderRepository)(nil)
