package persistence

import (
	"context"
	"testing"
	"time"

	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAggregationOverDB(db *gorm.DB, now time.Time) *ledgerapp.AggregationService {
	return ledgerapp.NewAggregationService(
		NewGormOrderRepository(db),
		NewGormSalaryPaymentRepository(db),
		NewGormExpenseRepository(db),
		ledgerapp.WithClock(func() time.Time { return now }),
	)
}

func TestAggregationService_AllTimeOverStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

	t.Run("expense and payroll before the first order count", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		expenses := NewGormExpenseRepository(db)
		newExpense(t, expenses, 300, ledger.BusinessTag, day(2024, time.January, 10))
		seedSalary(t, db, 200, true, day(2024, time.February, 1))
		seedOrder(t, db, 1000, true, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC))

		resp, err := newAggregationOverDB(db, now).GetSummary(ctx, ledgerapp.PeriodQuery{Granularity: "all_time"})
		require.NoError(t, err)

		assert.Equal(t, "2024-03-01", resp.Period.Start)
		assert.True(t, resp.BusinessExpense.Equal(decimal.NewFromInt(300)), "got %s", resp.BusinessExpense)
		assert.True(t, resp.PayrollExpense.Equal(decimal.NewFromInt(200)), "got %s", resp.PayrollExpense)
		assert.True(t, resp.TotalExpense.Equal(decimal.NewFromInt(500)), "got %s", resp.TotalExpense)
		assert.True(t, resp.NetIncome.Equal(decimal.NewFromInt(500)), "got %s", resp.NetIncome)
	})

	t.Run("no orders still counts every expense", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		expenses := NewGormExpenseRepository(db)
		newExpense(t, expenses, 300, ledger.BusinessTag, day(2024, time.May, 10))
		newExpense(t, expenses, 40, ledger.BusinessTag, day(2024, time.July, 2))

		resp, err := newAggregationOverDB(db, now).GetSummary(ctx, ledgerapp.PeriodQuery{Granularity: "all_time"})
		require.NoError(t, err)

		assert.True(t, resp.TotalRevenue.IsZero())
		assert.True(t, resp.TotalExpense.Equal(decimal.NewFromInt(340)), "got %s", resp.TotalExpense)
		assert.True(t, resp.NetIncome.Equal(decimal.NewFromInt(-340)), "got %s", resp.NetIncome)
	})

	t.Run("monthly stays bounded", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		expenses := NewGormExpenseRepository(db)
		newExpense(t, expenses, 300, ledger.BusinessTag, day(2024, time.May, 10))
		newExpense(t, expenses, 70, ledger.BusinessTag, day(2024, time.June, 3))

		resp, err := newAggregationOverDB(db, now).GetSummary(ctx, ledgerapp.PeriodQuery{Granularity: "monthly"})
		require.NoError(t, err)

		assert.True(t, resp.TotalExpense.Equal(decimal.NewFromInt(70)), "got %s", resp.TotalExpense)
	})
}
