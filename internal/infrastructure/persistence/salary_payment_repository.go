package persistence

import (
	"context"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalaryPaymentRepository implements ledger.SalaryPaymentReader using GORM
type GormSalaryPaymentRepository struct {
	db *gorm.DB
}

// NewGormSalaryPaymentRepository creates a new GormSalaryPaymentRepository
func NewGormSalaryPaymentRepository(db *gorm.DB) *GormSalaryPaymentRepository {
	return &GormSalaryPaymentRepository{db: db}
}

// SumPaid sums paid salary dated within rng
func (r *GormSalaryPaymentRepository) SumPaid(ctx context.Context, rng ledger.DateRange) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.SalaryPaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("is_paid = ?", true)
	query = applyDateRange(query, "date", rng)

	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, translateError(err, "sum paid salary")
	}
	return result.Total, nil
}

// FindAll lists salary payments, newest first
func (r *GormSalaryPaymentRepository) FindAll(ctx context.Context, filter ledger.SalaryPaymentFilter) ([]ledger.SalaryPayment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SalaryPaymentModel{})
	if filter.EmployeeID != "" {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	query = applyDateRange(query, "date", filter.DateRange)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count salary payments")
	}

	page := filter.Pagination.Normalize()
	var rows []models.SalaryPaymentModel
	if err := query.Order("date DESC").
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list salary payments")
	}

	payments := make([]ledger.SalaryPayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, total, nil
}

// applyDateRange filters a date column by an inclusive range
func applyDateRange(query *gorm.DB, column string, rng ledger.DateRange) *gorm.DB {
	if rng.From != nil {
		query = query.Where(column+" >= ?", ledger.Date(*rng.From))
	}
	if rng.To != nil {
		query = query.Where(column+" <= ?", ledger.Date(*rng.To))
	}
	return query
}

var _ ledger.SalaryPaymentReader = (*GormSalaryPaymentRepository)(nil)
