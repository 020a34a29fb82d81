package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateRange bounds a query by calendar date, both ends inclusive.
// A nil end leaves that side open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// OrderReader reads the orders table. Orders belong to the ordering front end.
type OrderReader interface {
	// SumPaidRevenue sums totals of paid orders created in [from, to).
	SumPaidRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	// EarliestCreatedAt returns the first order timestamp, or nil with no orders.
	EarliestCreatedAt(ctx context.Context) (*time.Time, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	shared.Pagination
	DateRange
	PaidOnly bool
}

// SalaryPaymentReader reads the payroll table
type SalaryPaymentReader interface {
	// SumPaid sums paid salary dated within r.
	SumPaid(ctx context.Context, r DateRange) (decimal.Decimal, error)
	FindAll(ctx context.Context, filter SalaryPaymentFilter) ([]SalaryPayment, int64, error)
}

// SalaryPaymentFilter narrows a payroll listing
type SalaryPaymentFilter struct {
	shared.Pagination
	DateRange
	EmployeeID string
}

// ExpenseFilter narrows an expense listing
type ExpenseFilter struct {
	shared.Pagination
	DateRange
	ExpenseFor string
	Status     ReimbursementStatus
	SortBy     string
	SortOrder  string
}

// ExpenseRepository persists expenses and their reimbursement transitions
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Expense, error)
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SumBusinessExpense sums expenses tagged Business or already reimbursed,
	// incurred within r.
	SumBusinessExpense(ctx context.Context, r DateRange) (decimal.Decimal, error)
	// SumPendingByOwner sums every outstanding pending expense per owner.
	SumPendingByOwner(ctx context.Context) (map[string]decimal.Decimal, error)

	// MarkReimbursed flips the pending expenses among ids to reimbursed in one
	// transaction. Rows that are already reimbursed are left untouched. If any
	// id is not reimbursed afterwards nothing is committed.
	MarkReimbursed(ctx context.Context, ids []uuid.UUID, actor string, at time.Time) (int64, error)
}

// BankSavingsRepository is the append-only savings ledger
type BankSavingsRepository interface {
	Append(ctx context.Context, entry *BankSavingsEntry) error
	// SumForKey sums entries whose period key matches exactly.
	SumForKey(ctx context.Context, key PeriodKey) (decimal.Decimal, error)
	// SumByType sums every entry of a period type regardless of dates.
	SumByType(ctx context.Context, periodType PeriodType) (decimal.Decimal, error)
	FindForKey(ctx context.Context, key PeriodKey) ([]BankSavingsEntry, error)
	FindByType(ctx context.Context, periodType PeriodType) ([]BankSavingsEntry, error)
}

// DistributionRecordRepository stores claim snapshots
type DistributionRecordRepository interface {
	// FindForPeriod returns the records of a period keyed by owner name.
	FindForPeriod(ctx context.Context, key PeriodKey) (map[string]*DistributionRecord, error)
	// UpsertClaim atomically inserts the record or marks the existing record
	// of the same owner and period claimed, keeping any earlier claim data.
	// It returns the stored row.
	UpsertClaim(ctx context.Context, record *DistributionRecord) (*DistributionRecord, error)
}
