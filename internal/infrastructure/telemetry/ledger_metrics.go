package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor receives no meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// ClaimOutcome labels the result of a distribution claim.
type ClaimOutcome string

const (
	ClaimOutcomeClaimed        ClaimOutcome = "claimed"
	ClaimOutcomeAlreadyClaimed ClaimOutcome = "already_claimed"
	ClaimOutcomeRejected       ClaimOutcome = "rejected"
	ClaimOutcomePartial        ClaimOutcome = "partial"
)

// SavingsEntryKind labels a bank savings movement.
type SavingsEntryKind string

const (
	SavingsEntryDeposit    SavingsEntryKind = "deposit"
	SavingsEntryWithdrawal SavingsEntryKind = "withdrawal"
)

// LedgerMetrics records ledger activity. A nil *LedgerMetrics is valid and
// records nothing, so services can be built without a meter.
type LedgerMetrics struct {
	claimsTotal         *Counter
	claimedAmount       *FloatCounter
	reimbursedExpenses  *Counter
	reimbursedAmount    *FloatCounter
	savingsEntriesTotal *Counter
	savingsAmount       *FloatCounter
	operationDuration   *Histogram
}

// LedgerMetricsConfig configures NewLedgerMetrics.
type LedgerMetricsConfig struct {
	Meter metric.Meter
}

// NewLedgerMetrics registers the ledger instruments on cfg.Meter.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	m := &LedgerMetrics{}
	var err error

	if m.claimsTotal, err = NewCounter(cfg.Meter,
		"ledger_distribution_claims_total", "Distribution claim attempts by outcome", "{claims}"); err != nil {
		return nil, err
	}
	if m.claimedAmount, err = NewFloatCounter(cfg.Meter,
		"ledger_distribution_claimed_amount", "Net share amount claimed by owners", "{currency}"); err != nil {
		return nil, err
	}
	if m.reimbursedExpenses, err = NewCounter(cfg.Meter,
		"ledger_expenses_reimbursed_total", "Personal expenses transitioned to reimbursed", "{expenses}"); err != nil {
		return nil, err
	}
	if m.reimbursedAmount, err = NewFloatCounter(cfg.Meter,
		"ledger_expenses_reimbursed_amount", "Amount of personal expenses reimbursed", "{currency}"); err != nil {
		return nil, err
	}
	if m.savingsEntriesTotal, err = NewCounter(cfg.Meter,
		"ledger_bank_savings_entries_total", "Bank savings entries appended by kind", "{entries}"); err != nil {
		return nil, err
	}
	if m.savingsAmount, err = NewFloatCounter(cfg.Meter,
		"ledger_bank_savings_amount", "Absolute amount moved through bank savings by kind", "{currency}"); err != nil {
		return nil, err
	}
	if m.operationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_operation_duration_seconds",
		Description: "Duration of ledger service operations",
		Unit:        "s",
		Boundaries:  OperationDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordClaim counts a claim attempt. The amount is added only for claimed and partial outcomes.
func (m *LedgerMetrics) RecordClaim(ctx context.Context, owner string, outcome ClaimOutcome, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.claimsTotal.Inc(ctx, AttrOwner.String(owner), AttrOutcome.String(string(outcome)))
	if outcome == ClaimOutcomeClaimed || outcome == ClaimOutcomePartial {
		m.claimedAmount.Add(ctx, amount.InexactFloat64(), AttrOwner.String(owner))
	}
}

// RecordReimbursement counts expenses settled by one batch.
func (m *LedgerMetrics) RecordReimbursement(ctx context.Context, owner string, count int, amount decimal.Decimal) {
	if m == nil || count <= 0 {
		return
	}
	m.reimbursedExpenses.Add(ctx, int64(count), AttrOwner.String(owner))
	m.reimbursedAmount.Add(ctx, amount.InexactFloat64(), AttrOwner.String(owner))
}

// RecordSavingsEntry counts an appended bank savings entry.
func (m *LedgerMetrics) RecordSavingsEntry(ctx context.Context, kind SavingsEntryKind, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.savingsEntriesTotal.Inc(ctx, AttrEntryKind.String(string(kind)))
	m.savingsAmount.Add(ctx, amount.Abs().InexactFloat64(), AttrEntryKind.String(string(kind)))
}

// ObserveOperation records how long op took, labelled by whether it failed.
func (m *LedgerMetrics) ObserveOperation(ctx context.Context, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operationDuration.RecordDuration(ctx, time.Since(started),
		AttrOperation.String(op), AttrOutcome.String(outcome))
}
