package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock repositories
// =============================================================================

type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) SumPaidRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderReader) EarliestCreatedAt(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockOrderReader) FindAll(ctx context.Context, filter ledger.OrderFilter) ([]ledger.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Order), args.Get(1).(int64), args.Error(2)
}

type MockSalaryPaymentReader struct {
	mock.Mock
}

func (m *MockSalaryPaymentReader) SumPaid(ctx context.Context, r ledger.DateRange) (decimal.Decimal, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSalaryPaymentReader) FindAll(ctx context.Context, filter ledger.SalaryPaymentFilter) ([]ledger.SalaryPayment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.SalaryPayment), args.Get(1).(int64), args.Error(2)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *ledger.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Expense, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]ledger.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter ledger.ExpenseFilter) ([]ledger.Expense, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) SumBusinessExpense(ctx context.Context, r ledger.DateRange) (decimal.Decimal, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRepository) SumPendingByOwner(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRepository) MarkReimbursed(ctx context.Context, ids []uuid.UUID, actor string, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, actor, at)
	return args.Get(0).(int64), args.Error(1)
}

type MockBankSavingsRepository struct {
	mock.Mock
}

func (m *MockBankSavingsRepository) Append(ctx context.Context, entry *ledger.BankSavingsEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBankSavingsRepository) SumForKey(ctx context.Context, key ledger.PeriodKey) (decimal.Decimal, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBankSavingsRepository) SumByType(ctx context.Context, periodType ledger.PeriodType) (decimal.Decimal, error) {
	args := m.Called(ctx, periodType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBankSavingsRepository) FindForKey(ctx context.Context, key ledger.PeriodKey) ([]ledger.BankSavingsEntry, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]ledger.BankSavingsEntry), args.Error(1)
}

func (m *MockBankSavingsRepository) FindByType(ctx context.Context, periodType ledger.PeriodType) ([]ledger.BankSavingsEntry, error) {
	args := m.Called(ctx, periodType)
	return args.Get(0).([]ledger.BankSavingsEntry), args.Error(1)
}

type MockDistributionRecordRepository struct {
	mock.Mock
}

func (m *MockDistributionRecordRepository) FindForPeriod(ctx context.Context, key ledger.PeriodKey) (map[string]*ledger.DistributionRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*ledger.DistributionRecord), args.Error(1)
}

func (m *MockDistributionRecordRepository) UpsertClaim(ctx context.Context, record *ledger.DistributionRecord) (*ledger.DistributionRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(*ledger.DistributionRecord) *ledger.DistributionRecord); ok {
		return fn(record), args.Error(1)
	}
	return args.Get(0).(*ledger.DistributionRecord), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

// fixedNow is 2024-03-20 10:00 UTC
var fixedNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestPool() *ledger.OwnerPool {
	pool, err := ledger.NewOwnerPool([]string{"Alice", "Bob", "Carol"}, []string{"Carol"})
	if err != nil {
		panic(err)
	}
	return pool
}

func pendingExpense(owner, amount string) ledger.Expense {
	e, err := ledger.NewExpense("Supplies", dec(amount), "office", owner, fixedNow, "tester")
	if err != nil {
		panic(err)
	}
	return *e
}

// marchKey is the monthly key of fixedNow
var marchKey = ledger.PeriodKey{
	Type:  ledger.PeriodTypeMonthly,
	Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
}
