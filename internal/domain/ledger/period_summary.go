package ledger

import "github.com/shopspring/decimal"

// PeriodSummary holds the revenue and expense figures of one period
type PeriodSummary struct {
	Period          Period
	TotalRevenue    decimal.Decimal
	BusinessExpense decimal.Decimal
	PayrollExpense  decimal.Decimal
	TotalExpense    decimal.Decimal
	NetIncome       decimal.Decimal
}

// NewPeriodSummary derives totals. Net income may be negative.
func NewPeriodSummary(period Period, revenue, businessExpense, payrollExpense decimal.Decimal) PeriodSummary {
	total := businessExpense.Add(payrollExpense)
	return PeriodSummary{
		Period:          period,
		TotalRevenue:    revenue,
		BusinessExpense: businessExpense,
		PayrollExpense:  payrollExpense,
		TotalExpense:    total,
		NetIncome:       revenue.Sub(total),
	}
}
