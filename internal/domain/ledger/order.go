package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a sales order written by the ordering front end. The ledger only
// reads it; paid orders are the revenue source.
type Order struct {
	ID        uuid.UUID
	Total     decimal.Decimal
	IsPaid    bool
	CreatedAt time.Time
}

// SalaryPayment is a payroll row written by the payroll front end.
// Only paid rows count as expense.
type SalaryPayment struct {
	ID         uuid.UUID
	EmployeeID string
	Amount     decimal.Decimal
	IsPaid     bool
	Date       time.Time
}
