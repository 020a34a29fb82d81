package persistence

import (
	"context"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBankSavingsRepository implements ledger.BankSavingsRepository using GORM.
// It only ever inserts; there is no update or delete path.
type GormBankSavingsRepository struct {
	db *gorm.DB
}

// NewGormBankSavingsRepository creates a new GormBankSavingsRepository
func NewGormBankSavingsRepository(db *gorm.DB) *GormBankSavingsRepository {
	return &GormBankSavingsRepository{db: db}
}

// Append inserts a new ledger line
func (r *GormBankSavingsRepository) Append(ctx context.Context, entry *ledger.BankSavingsEntry) error {
	model := models.BankSavingsEntryModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, "append bank savings entry")
	}
	return nil
}

// SumForKey sums entries whose period key matches exactly
func (r *GormBankSavingsRepository) SumForKey(ctx context.Context, key ledger.PeriodKey) (decimal.Decimal, error) {
	return r.sum(ctx, r.forKey(ctx, key))
}

// SumByType sums all entries of a period type regardless of dates
func (r *GormBankSavingsRepository) SumByType(ctx context.Context, periodType ledger.PeriodType) (decimal.Decimal, error) {
	return r.sum(ctx, r.db.WithContext(ctx).Model(&models.BankSavingsEntryModel{}).
		Where("period_type = ?", periodType))
}

// FindForKey lists the entries of one period key, oldest first
func (r *GormBankSavingsRepository) FindForKey(ctx context.Context, key ledger.PeriodKey) ([]ledger.BankSavingsEntry, error) {
	return r.find(r.forKey(ctx, key))
}

// FindByType lists all entries of a period type, oldest first
func (r *GormBankSavingsRepository) FindByType(ctx context.Context, periodType ledger.PeriodType) ([]ledger.BankSavingsEntry, error) {
	return r.find(r.db.WithContext(ctx).Model(&models.BankSavingsEntryModel{}).
		Where("period_type = ?", periodType))
}

func (r *GormBankSavingsRepository) forKey(ctx context.Context, key ledger.PeriodKey) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.BankSavingsEntryModel{}).
		Where("period_type = ? AND period_start = ? AND period_end = ?", key.Type, key.Start, key.End)
}

func (r *GormBankSavingsRepository) sum(_ context.Context, query *gorm.DB) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(amount), 0) as total").Scan(&result).Error; err != nil {
		return decimal.Zero, translateError(err, "sum bank savings")
	}
	return result.Total, nil
}

func (r *GormBankSavingsRepository) find(query *gorm.DB) ([]ledger.BankSavingsEntry, error) {
	var rows []models.BankSavingsEntryModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list bank savings")
	}
	entries := make([]ledger.BankSavingsEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

var _ ledger.BankSavingsRepository = (*GormBankSavingsRepository)(nil)
