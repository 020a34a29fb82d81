package ledger

import (
	"strings"
	"time"

	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReimbursementStatus tracks who ultimately pays an owner-fronted expense
type ReimbursementStatus string

const (
	ReimbursementNone       ReimbursementStatus = "none"       // business expense, nothing to pay back
	ReimbursementPending    ReimbursementStatus = "pending"    // owner paid, business owes the owner
	ReimbursementReimbursed ReimbursementStatus = "reimbursed" // business paid the owner back
)

// IsValid checks if the status is a valid ReimbursementStatus
func (s ReimbursementStatus) IsValid() bool {
	switch s {
	case ReimbursementNone, ReimbursementPending, ReimbursementReimbursed:
		return true
	}
	return false
}

// Expense is a cost incurred either by the business or by an owner on the
// business's behalf. Owner-tagged expenses start pending and move to
// reimbursed once; the owner tag is kept after reimbursement for audit.
type Expense struct {
	shared.BaseEntity
	Title               string
	Amount              decimal.Decimal
	Category            string
	ExpenseFor          string
	ReimbursementStatus ReimbursementStatus
	IncurredOn          time.Time
	ReimbursedAt        *time.Time
	ReimbursedBy        *string
	CreatedBy           string
}

// NewExpense creates an expense. Business-tagged expenses carry no
// reimbursement state; owner-tagged ones start pending.
func NewExpense(title string, amount decimal.Decimal, category, expenseFor string, incurredOn time.Time, createdBy string) (*Expense, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError(shared.CodeValidation, "title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewValidationError(shared.CodeValidation, "title cannot exceed 200 characters")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError(shared.CodeInvalidAmount, "amount must be positive")
	}
	if strings.TrimSpace(expenseFor) == "" {
		return nil, shared.NewValidationError(shared.CodeValidation, "expense_for is required")
	}
	if incurredOn.IsZero() {
		return nil, shared.NewValidationError(shared.CodeValidation, "incurred_on is required")
	}

	status := ReimbursementPending
	if expenseFor == BusinessTag {
		status = ReimbursementNone
	}

	return &Expense{
		BaseEntity:          shared.NewBaseEntity(),
		Title:               title,
		Amount:              amount,
		Category:            strings.TrimSpace(category),
		ExpenseFor:          expenseFor,
		ReimbursementStatus: status,
		IncurredOn:          Date(incurredOn),
		CreatedBy:           createdBy,
	}, nil
}

// IsBusiness reports whether the business paid directly
func (e *Expense) IsBusiness() bool {
	return e.ExpenseFor == BusinessTag
}

// IsPending reports whether the business still owes the owner
func (e *Expense) IsPending() bool {
	return e.ReimbursementStatus == ReimbursementPending
}

// IsReimbursed reports whether the owner was paid back
func (e *Expense) IsReimbursed() bool {
	return e.ReimbursementStatus == ReimbursementReimbursed
}

// CountsAsBusinessExpense reports whether the amount is part of the period's
// business expense: business-tagged or already reimbursed.
func (e *Expense) CountsAsBusinessExpense() bool {
	return e.IsBusiness() || e.IsReimbursed()
}

// MarkReimbursed moves a pending expense to reimbursed. It is a no-op for an
// expense that is already reimbursed.
func (e *Expense) MarkReimbursed(actor string, at time.Time) error {
	if e.IsBusiness() {
		return shared.NewValidationError(shared.CodeNotReimbursable, "business expenses cannot be reimbursed")
	}
	if e.IsReimbursed() {
		return nil
	}
	at = at.UTC()
	e.ReimbursementStatus = ReimbursementReimbursed
	e.ReimbursedAt = &at
	e.ReimbursedBy = &actor
	e.UpdatedAt = at
	return nil
}

// CheckDeletable guards deletion. A reimbursed expense already moved money
// and can only be removed with explicit confirmation.
func (e *Expense) CheckDeletable(confirm bool) error {
	if e.IsReimbursed() && !confirm {
		return shared.NewValidationError(shared.CodeConfirmationRequired,
			"expense was already reimbursed; deleting it requires confirmation")
	}
	return nil
}
