package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for orders. Rows are written by the
// ordering front end; the ledger only reads them.
type OrderModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsPaid    bool            `gorm:"not null;default:false;index:idx_orders_paid_created,priority:1"`
	CreatedAt time.Time       `gorm:"not null;index:idx_orders_paid_created,priority:2"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model to a domain Order
func (m *OrderModel) ToDomain() *ledger.Order {
	return &ledger.Order{
		ID:        m.ID,
		Total:     m.Total,
		IsPaid:    m.IsPaid,
		CreatedAt: m.CreatedAt,
	}
}

// SalaryPaymentModel is the persistence model for payroll rows
type SalaryPaymentModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	EmployeeID string          `gorm:"type:varchar(64);not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsPaid     bool            `gorm:"not null;default:false"`
	Date       time.Time       `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (SalaryPaymentModel) TableName() string {
	return "salary_payments"
}

// ToDomain converts the model to a domain SalaryPayment
func (m *SalaryPaymentModel) ToDomain() *ledger.SalaryPayment {
	return &ledger.SalaryPayment{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Amount:     m.Amount,
		IsPaid:     m.IsPaid,
		Date:       m.Date,
	}
}

// ExpenseModel is the persistence model for expenses
type ExpenseModel struct {
	BaseModel
	Title               string          `gorm:"type:varchar(200);not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Category            string          `gorm:"type:varchar(50)"`
	ExpenseFor          string          `gorm:"type:varchar(100);not null;index"`
	ReimbursementStatus string          `gorm:"type:varchar(20);not null;default:'none';index"`
	IncurredOn          time.Time       `gorm:"type:date;not null;index"`
	ReimbursedAt        *time.Time
	ReimbursedBy        *string `gorm:"type:varchar(100)"`
	CreatedBy           string  `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the model to a domain Expense
func (m *ExpenseModel) ToDomain() *ledger.Expense {
	return &ledger.Expense{
		BaseEntity:          m.BaseModel.ToDomain(),
		Title:               m.Title,
		Amount:              m.Amount,
		Category:            m.Category,
		ExpenseFor:          m.ExpenseFor,
		ReimbursementStatus: ledger.ReimbursementStatus(m.ReimbursementStatus),
		IncurredOn:          m.IncurredOn,
		ReimbursedAt:        m.ReimbursedAt,
		ReimbursedBy:        m.ReimbursedBy,
		CreatedBy:           m.CreatedBy,
	}
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense
func ExpenseModelFromDomain(e *ledger.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Title:               e.Title,
		Amount:              e.Amount,
		Category:            e.Category,
		ExpenseFor:          e.ExpenseFor,
		ReimbursementStatus: string(e.ReimbursementStatus),
		IncurredOn:          e.IncurredOn,
		ReimbursedAt:        e.ReimbursedAt,
		ReimbursedBy:        e.ReimbursedBy,
		CreatedBy:           e.CreatedBy,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// BankSavingsEntryModel is the persistence model for the append-only savings ledger
type BankSavingsEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	PeriodType  string          `gorm:"type:varchar(20);not null;index:idx_bank_savings_period,priority:1"`
	PeriodStart time.Time       `gorm:"type:date;not null;index:idx_bank_savings_period,priority:2"`
	PeriodEnd   time.Time       `gorm:"type:date;not null;index:idx_bank_savings_period,priority:3"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes       string          `gorm:"type:text"`
	CreatedBy   string          `gorm:"type:varchar(100);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BankSavingsEntryModel) TableName() string {
	return "bank_savings_entries"
}

// ToDomain converts the model to a domain BankSavingsEntry
func (m *BankSavingsEntryModel) ToDomain() *ledger.BankSavingsEntry {
	e := &ledger.BankSavingsEntry{
		Period: ledger.PeriodKey{
			Type:  ledger.PeriodType(m.PeriodType),
			Start: m.PeriodStart,
			End:   m.PeriodEnd,
		},
		Amount:    m.Amount,
		Notes:     m.Notes,
		CreatedBy: m.CreatedBy,
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	e.UpdatedAt = m.CreatedAt
	return e
}

// BankSavingsEntryModelFromDomain creates a persistence model from a domain entry
func BankSavingsEntryModelFromDomain(e *ledger.BankSavingsEntry) *BankSavingsEntryModel {
	return &BankSavingsEntryModel{
		ID:          e.ID,
		PeriodType:  string(e.Period.Type),
		PeriodStart: e.Period.Start,
		PeriodEnd:   e.Period.End,
		Amount:      e.Amount,
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// DistributionRecordModel is the persistence model for claim snapshots.
// The composite unique index backs the claim upsert.
type DistributionRecordModel struct {
	BaseModel
	OwnerName        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_distribution_owner_period,priority:1"`
	PeriodType       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_distribution_owner_period,priority:2"`
	PeriodStart      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_distribution_owner_period,priority:3"`
	PeriodEnd        time.Time       `gorm:"type:date;not null;uniqueIndex:idx_distribution_owner_period,priority:4"`
	ShareAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PersonalExpenses decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NetShare         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsClaimed        bool            `gorm:"not null;default:false"`
	ClaimedAt        *time.Time
	ClaimedBy        *string   `gorm:"type:varchar(100)"`
	ClaimToken       uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DistributionRecordModel) TableName() string {
	return "distribution_records"
}

// ToDomain converts the model to a domain DistributionRecord
func (m *DistributionRecordModel) ToDomain() *ledger.DistributionRecord {
	return &ledger.DistributionRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		OwnerName:  m.OwnerName,
		Period: ledger.PeriodKey{
			Type:  ledger.PeriodType(m.PeriodType),
			Start: m.PeriodStart,
			End:   m.PeriodEnd,
		},
		ShareAmount:      m.ShareAmount,
		PersonalExpenses: m.PersonalExpenses,
		NetShare:         m.NetShare,
		IsClaimed:        m.IsClaimed,
		ClaimedAt:        m.ClaimedAt,
		ClaimedBy:        m.ClaimedBy,
		ClaimToken:       m.ClaimToken,
	}
}

// DistributionRecordModelFromDomain creates a persistence model from a domain record
func DistributionRecordModelFromDomain(r *ledger.DistributionRecord) *DistributionRecordModel {
	m := &DistributionRecordModel{
		OwnerName:        r.OwnerName,
		PeriodType:       string(r.Period.Type),
		PeriodStart:      r.Period.Start,
		PeriodEnd:        r.Period.End,
		ShareAmount:      r.ShareAmount,
		PersonalExpenses: r.PersonalExpenses,
		NetShare:         r.NetShare,
		IsClaimed:        r.IsClaimed,
		ClaimedAt:        r.ClaimedAt,
		ClaimedBy:        r.ClaimedBy,
		ClaimToken:       r.ClaimToken,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// LedgerModels returns every model the ledger persists, for AutoMigrate in tests
func LedgerModels() []any {
	return []any{
		&OrderModel{},
		&SalaryPaymentModel{},
		&ExpenseModel{},
		&BankSavingsEntryModel{},
		&DistributionRecordModel{},
	}
}
