package ledger

import (
	"strings"

	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BankSavingsEntry is one append-only line of the savings reserve. Positive
// amounts are deposits, negative amounts are withdrawals. Entries are never
// updated; a correction is a new offsetting entry.
type BankSavingsEntry struct {
	shared.BaseEntity
	Period    PeriodKey
	Amount    decimal.Decimal
	Notes     string
	CreatedBy string
}

// NewDeposit creates a deposit entry of +amount
func NewDeposit(amount decimal.Decimal, key PeriodKey, actor, note string) (*BankSavingsEntry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError(shared.CodeInvalidAmount, "deposit amount must be positive")
	}
	return newEntry(amount, key, actor, note), nil
}

// NewWithdrawal creates a withdrawal entry of -amount
func NewWithdrawal(amount decimal.Decimal, key PeriodKey, actor, reason string) (*BankSavingsEntry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError(shared.CodeInvalidAmount, "withdrawal amount must be positive")
	}
	return newEntry(amount.Neg(), key, actor, reason), nil
}

func newEntry(amount decimal.Decimal, key PeriodKey, actor, note string) *BankSavingsEntry {
	return &BankSavingsEntry{
		BaseEntity: shared.NewBaseEntity(),
		Period:     key,
		Amount:     amount,
		Notes:      strings.TrimSpace(note),
		CreatedBy:  actor,
	}
}

// IsDeposit reports whether the entry adds to the reserve
func (e *BankSavingsEntry) IsDeposit() bool {
	return e.Amount.IsPositive()
}

// SumEntries returns the balance of a set of entries
func SumEntries(entries []BankSavingsEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
