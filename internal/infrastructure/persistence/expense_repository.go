package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ledger.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create inserts a new expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *ledger.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, "create expense")
	}
	return nil
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "find expense")
	}
	return model.ToDomain(), nil
}

// FindByIDs loads the given expenses. Missing ids are simply absent from the result.
func (r *GormExpenseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Expense, error) {
	if len(ids) == 0 {
		return []ledger.Expense{}, nil
	}
	var rows []models.ExpenseModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translateError(err, "find expenses")
	}
	expenses := make([]ledger.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, nil
}

// FindAll lists expenses, most recently incurred first unless the filter
// names a whitelisted sort field
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter ledger.ExpenseFilter) ([]ledger.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{})
	if filter.ExpenseFor != "" {
		query = query.Where("expense_for = ?", filter.ExpenseFor)
	}
	if filter.Status != "" {
		query = query.Where("reimbursement_status = ?", filter.Status)
	}
	query = applyDateRange(query, "incurred_on", filter.DateRange)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count expenses")
	}

	page := filter.Pagination.Normalize()
	var rows []models.ExpenseModel
	if err := query.Order(expenseOrder(filter.SortBy, filter.SortOrder)).
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list expenses")
	}

	expenses := make([]ledger.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, total, nil
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "delete expense")
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumBusinessExpense sums expenses tagged Business or already reimbursed
func (r *GormExpenseRepository) SumBusinessExpense(ctx context.Context, rng ledger.DateRange) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("expense_for = ? OR reimbursement_status = ?", ledger.BusinessTag, ledger.ReimbursementReimbursed)
	query = applyDateRange(query, "incurred_on", rng)

	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, translateError(err, "sum business expense")
	}
	return result.Total, nil
}

// SumPendingByOwner sums every outstanding pending expense per owner
func (r *GormExpenseRepository) SumPendingByOwner(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []struct {
		ExpenseFor string
		Total      decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Select("expense_for, COALESCE(SUM(amount), 0) as total").
		Where("reimbursement_status = ?", ledger.ReimbursementPending).
		Group("expense_for").
		Scan(&rows).Error; err != nil {
		return nil, translateError(err, "sum pending expenses")
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.ExpenseFor] = row.Total
	}
	return totals, nil
}

// MarkReimbursed flips pending rows among ids in one transaction. The update
// is guarded by the pending status so concurrent or repeated batches never
// touch a row twice.
func (r *GormExpenseRepository) MarkReimbursed(ctx context.Context, ids []uuid.UUID, actor string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ExpenseModel{}).
			Where("id IN ? AND reimbursement_status = ?", ids, ledger.ReimbursementPending).
			Updates(map[string]any{
				"reimbursement_status": ledger.ReimbursementReimbursed,
				"reimbursed_at":        at,
				"reimbursed_by":        actor,
				"updated_at":           at,
			})
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected

		var found, settled int64
		if err := tx.Model(&models.ExpenseModel{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(ids)) {
			return shared.NewConflictError(
				fmt.Sprintf("%d of %d expenses disappeared during reimbursement", int64(len(ids))-found, len(ids)), nil)
		}
		if err := tx.Model(&models.ExpenseModel{}).
			Where("id IN ? AND reimbursement_status = ?", ids, ledger.ReimbursementReimbursed).
			Count(&settled).Error; err != nil {
			return err
		}
		if settled != found {
			return shared.NewConflictError(
				fmt.Sprintf("%d of %d expenses could not be reimbursed", found-settled, found), nil)
		}
		return nil
	})
	if err != nil {
		return 0, translateError(err, "mark expenses reimbursed")
	}
	return updated, nil
}

var _ ledger.ExpenseRepository = (*GormExpenseRepository)(nil)
