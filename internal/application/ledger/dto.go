package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ==================== Expense DTOs ====================

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Title      string          `json:"title" binding:"required,min=1,max=200"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Category   string          `json:"category" binding:"max=100"`
	ExpenseFor string          `json:"expense_for" binding:"required"`
	IncurredOn string          `json:"incurred_on" binding:"required"` // YYYY-MM-DD
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	ExpenseFor string `form:"expense_for"`
	Status     string `form:"status" binding:"omitempty,oneof=none pending reimbursed"`
	From       string `form:"from"`
	To         string `form:"to"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Title               string          `json:"title"`
	Amount              decimal.Decimal `json:"amount"`
	Category            string          `json:"category,omitempty"`
	ExpenseFor          string          `json:"expense_for"`
	ReimbursementStatus string          `json:"reimbursement_status"`
	CountsAsBusiness    bool            `json:"counts_as_business"`
	IncurredOn          string          `json:"incurred_on"`
	ReimbursedAt        *time.Time      `json:"reimbursed_at,omitempty"`
	ReimbursedBy        *string         `json:"reimbursed_by,omitempty"`
	CreatedBy           string          `json:"created_by,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ReimburseRequest represents a batch reimbursement request
type ReimburseRequest struct {
	ExpenseIDs []uuid.UUID `json:"expense_ids" binding:"required,min=1,max=500"`
}

// ReimbursementResult reports what a batch reimbursement changed
type ReimbursementResult struct {
	Owner             string          `json:"owner"`
	Reimbursed        []uuid.UUID     `json:"reimbursed"`
	AlreadyReimbursed []uuid.UUID     `json:"already_reimbursed"`
	Amount            decimal.Decimal `json:"amount"`
	ReimbursedAt      *time.Time      `json:"reimbursed_at,omitempty"`
}

// PersonalPendingResponse is the outstanding reimbursement total of one owner
type PersonalPendingResponse struct {
	Owner   string          `json:"owner"`
	Pending decimal.Decimal `json:"pending"`
}

// ==================== Read-only source DTOs ====================

// OrderListFilter defines filtering options for the order listing
type OrderListFilter struct {
	From     string `form:"from"`
	To       string `form:"to"`
	PaidOnly bool   `form:"paid_only"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID        uuid.UUID       `json:"id"`
	Total     decimal.Decimal `json:"total"`
	IsPaid    bool            `json:"is_paid"`
	CreatedAt time.Time       `json:"created_at"`
}

// SalaryPaymentListFilter defines filtering options for the payroll listing
type SalaryPaymentListFilter struct {
	EmployeeID string `form:"employee_id"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// SalaryPaymentResponse represents a payroll row in API responses
type SalaryPaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	IsPaid     bool            `json:"is_paid"`
	Date       string          `json:"date"`
}

// ==================== Period DTOs ====================

// PeriodQuery selects a period by granularity and reference date
type PeriodQuery struct {
	Granularity string `form:"granularity" binding:"omitempty,oneof=monthly yearly all_time"`
	AsOf        string `form:"as_of"` // YYYY-MM-DD, defaults to today
}

// PeriodResponse describes a resolved period
type PeriodResponse struct {
	Granularity string `json:"granularity"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// PeriodSummaryResponse represents the aggregated figures of a period
type PeriodSummaryResponse struct {
	Period          PeriodResponse  `json:"period"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	BusinessExpense decimal.Decimal `json:"business_expense"`
	PayrollExpense  decimal.Decimal `json:"payroll_expense"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	NetIncome       decimal.Decimal `json:"net_income"`
}

// ==================== Bank savings DTOs ====================

// SavingsEntryRequest represents a deposit or withdrawal
type SavingsEntryRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Granularity string          `json:"granularity" binding:"omitempty,oneof=monthly yearly all_time"`
	AsOf        string          `json:"as_of"`
	Notes       string          `json:"notes" binding:"max=500"`
}

// BankSavingsEntryResponse represents one ledger line
type BankSavingsEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	PeriodType  string          `json:"period_type"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Kind        string          `json:"kind"` // deposit, withdrawal
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BankSavingsResponse is the reserve balance of a period with its entries
type BankSavingsResponse struct {
	Period  PeriodResponse             `json:"period"`
	Balance decimal.Decimal            `json:"balance"`
	Entries []BankSavingsEntryResponse `json:"entries"`
}

// ==================== Distribution DTOs ====================

// DistributionQuery selects the period and owners of a distribution
type DistributionQuery struct {
	PeriodQuery
	Owners []string `form:"owners"`
}

// OwnerShareResponse is one owner's line of a distribution
type OwnerShareResponse struct {
	Owner           string          `json:"owner"`
	Eligible        bool            `json:"eligible"`
	Selected        bool            `json:"selected"`
	Percentage      decimal.Decimal `json:"percentage"`
	GrossShare      decimal.Decimal `json:"gross_share"`
	PersonalPending decimal.Decimal `json:"personal_pending"`
	NetShare        decimal.Decimal `json:"net_share"`
	Claimed         bool            `json:"claimed"`
	ClaimedAt       *time.Time      `json:"claimed_at,omitempty"`
	CanClaim        bool            `json:"can_claim"`
}

// DistributionResponse represents a computed distribution
type DistributionResponse struct {
	Summary     PeriodSummaryResponse `json:"summary"`
	BankBalance decimal.Decimal       `json:"bank_balance"`
	Available   decimal.Decimal       `json:"available"`
	Selected    []string              `json:"selected"`
	Shares      []OwnerShareResponse  `json:"shares"`
}

// ClaimRequest represents an owner claiming their share
type ClaimRequest struct {
	Owner           string   `json:"owner" binding:"required"`
	Granularity     string   `json:"granularity" binding:"omitempty,oneof=monthly yearly all_time"`
	AsOf            string   `json:"as_of"`
	SelectedOwners  []string `json:"selected_owners" binding:"required,min=1"`
	DrawFromSavings bool     `json:"draw_from_savings"`
}

// DistributionRecordResponse represents a stored claim snapshot
type DistributionRecordResponse struct {
	ID               uuid.UUID       `json:"id"`
	OwnerName        string          `json:"owner_name"`
	PeriodType       string          `json:"period_type"`
	PeriodStart      string          `json:"period_start"`
	PeriodEnd        string          `json:"period_end"`
	ShareAmount      decimal.Decimal `json:"share_amount"`
	PersonalExpenses decimal.Decimal `json:"personal_expenses"`
	NetShare         decimal.Decimal `json:"net_share"`
	IsClaimed        bool            `json:"is_claimed"`
	ClaimedAt        *time.Time      `json:"claimed_at,omitempty"`
	ClaimedBy        *string         `json:"claimed_by,omitempty"`
}

// ClaimResult reports the outcome of a claim
type ClaimResult struct {
	Record          DistributionRecordResponse `json:"record"`
	AlreadyClaimed  bool                       `json:"already_claimed"`
	SavingsWithdraw *BankSavingsEntryResponse  `json:"savings_withdrawal,omitempty"`
}

// ==================== Converters ====================

func toExpenseResponse(e *ledger.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:                  e.ID,
		Title:               e.Title,
		Amount:              e.Amount,
		Category:            e.Category,
		ExpenseFor:          e.ExpenseFor,
		ReimbursementStatus: string(e.ReimbursementStatus),
		CountsAsBusiness:    e.CountsAsBusinessExpense(),
		IncurredOn:          e.IncurredOn.Format(ledger.DateLayout),
		ReimbursedAt:        e.ReimbursedAt,
		ReimbursedBy:        e.ReimbursedBy,
		CreatedBy:           e.CreatedBy,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func toPeriodResponse(p ledger.Period) PeriodResponse {
	return PeriodResponse{
		Granularity: string(p.Granularity),
		Start:       p.Start.Format(ledger.DateLayout),
		End:         p.End.Format(ledger.DateLayout),
	}
}

func toPeriodSummaryResponse(s ledger.PeriodSummary) PeriodSummaryResponse {
	return PeriodSummaryResponse{
		Period:          toPeriodResponse(s.Period),
		TotalRevenue:    s.TotalRevenue,
		BusinessExpense: s.BusinessExpense,
		PayrollExpense:  s.PayrollExpense,
		TotalExpense:    s.TotalExpense,
		NetIncome:       s.NetIncome,
	}
}

func toBankSavingsEntryResponse(e *ledger.BankSavingsEntry) BankSavingsEntryResponse {
	kind := "withdrawal"
	if e.IsDeposit() {
		kind = "deposit"
	}
	return BankSavingsEntryResponse{
		ID:          e.ID,
		PeriodType:  string(e.Period.Type),
		PeriodStart: e.Period.Start.Format(ledger.DateLayout),
		PeriodEnd:   e.Period.End.Format(ledger.DateLayout),
		Kind:        kind,
		Amount:      e.Amount,
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// ToDistributionRecordResponse converts a stored claim snapshot
func ToDistributionRecordResponse(r *ledger.DistributionRecord) DistributionRecordResponse {
	return DistributionRecordResponse{
		ID:               r.ID,
		OwnerName:        r.OwnerName,
		PeriodType:       string(r.Period.Type),
		PeriodStart:      r.Period.Start.Format(ledger.DateLayout),
		PeriodEnd:        r.Period.End.Format(ledger.DateLayout),
		ShareAmount:      r.ShareAmount,
		PersonalExpenses: r.PersonalExpenses,
		NetShare:         r.NetShare,
		IsClaimed:        r.IsClaimed,
		ClaimedAt:        r.ClaimedAt,
		ClaimedBy:        r.ClaimedBy,
	}
}

// toDistributionResponse rounds percentages to two decimals; money stays exact.
func toDistributionResponse(d ledger.Distribution) DistributionResponse {
	shares := make([]OwnerShareResponse, 0, len(d.Shares))
	for _, s := range d.Shares {
		shares = append(shares, OwnerShareResponse{
			Owner:           s.Owner,
			Eligible:        s.Eligible,
			Selected:        s.Selected,
			Percentage:      s.Percentage.Round(2),
			GrossShare:      s.GrossShare,
			PersonalPending: s.PersonalPending,
			NetShare:        s.NetShare,
			Claimed:         s.Claimed,
			ClaimedAt:       s.ClaimedAt,
			CanClaim:        s.CanClaim(),
		})
	}
	selected := d.Selected
	if selected == nil {
		selected = []string{}
	}
	return DistributionResponse{
		Summary:     toPeriodSummaryResponse(d.Summary),
		BankBalance: d.BankBalance,
		Available:   d.Available,
		Selected:    selected,
		Shares:      shares,
	}
}
