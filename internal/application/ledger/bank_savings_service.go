package ledger

import (
	"context"
	"fmt"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BankSavingsService appends to and reads the savings reserve ledger
type BankSavingsService struct {
	entries ledger.BankSavingsRepository
	periods *AggregationService
	serviceOptions
}

// NewBankSavingsService creates a new BankSavingsService
func NewBankSavingsService(entries ledger.BankSavingsRepository, periods *AggregationService, opts ...Option) *BankSavingsService {
	return &BankSavingsService{
		entries:        entries,
		periods:        periods,
		serviceOptions: applyOptions(opts),
	}
}

// Deposit appends a positive entry to the period's reserve
func (s *BankSavingsService) Deposit(ctx context.Context, req SavingsEntryRequest, actor string) (*BankSavingsEntryResponse, error) {
	period, err := s.periods.resolveQuery(ctx, req.Granularity, req.AsOf)
	if err != nil {
		return nil, err
	}
	entry, err := ledger.NewDeposit(req.Amount, period.Key(s.now()), actor, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.append(ctx, entry, telemetry.SavingsEntryDeposit); err != nil {
		return nil, err
	}
	resp := toBankSavingsEntryResponse(entry)
	return &resp, nil
}

// Withdraw appends a negative entry to the period's reserve
func (s *BankSavingsService) Withdraw(ctx context.Context, req SavingsEntryRequest, actor string) (*BankSavingsEntryResponse, error) {
	period, err := s.periods.resolveQuery(ctx, req.Granularity, req.AsOf)
	if err != nil {
		return nil, err
	}
	entry, err := s.withdraw(ctx, req.Amount, period.Key(s.now()), actor, req.Notes)
	if err != nil {
		return nil, err
	}
	resp := toBankSavingsEntryResponse(entry)
	return &resp, nil
}

// withdraw appends -amount under key. The claim workflow calls it directly.
func (s *BankSavingsService) withdraw(ctx context.Context, amount decimal.Decimal, key ledger.PeriodKey, actor, reason string) (*ledger.BankSavingsEntry, error) {
	entry, err := ledger.NewWithdrawal(amount, key, actor, reason)
	if err != nil {
		return nil, err
	}
	if err := s.append(ctx, entry, telemetry.SavingsEntryWithdrawal); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *BankSavingsService) append(ctx context.Context, entry *ledger.BankSavingsEntry, kind telemetry.SavingsEntryKind) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "bank_savings", string(kind))
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriod, entry.Period.String(),
		telemetry.SpanAttrAmount, entry.Amount.String(),
		telemetry.SpanAttrActor, entry.CreatedBy,
	)

	if err := s.entries.Append(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Bank savings append failed",
			zap.String("kind", string(kind)),
			zap.String("period", entry.Period.String()),
			zap.Error(err))
		return err
	}

	s.metrics.RecordSavingsEntry(ctx, kind, entry.Amount)
	s.logger.Info("Bank savings entry appended",
		zap.String("entry_id", entry.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("period", entry.Period.String()),
		zap.String("amount", entry.Amount.String()),
		zap.String("actor", entry.CreatedBy),
	)
	return nil
}

// BalanceFor returns the reserve of period. Monthly and yearly balances sum
// the entries of the exact key; the all-time balance sums every custom entry.
func (s *BankSavingsService) BalanceFor(ctx context.Context, period ledger.Period) (decimal.Decimal, error) {
	if period.IsAllTime() {
		balance, err := s.entries.SumByType(ctx, ledger.PeriodTypeCustom)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to sum all-time savings: %w", err)
		}
		return balance, nil
	}

	key := period.Key(period.Start)
	balance, err := s.entries.SumForKey(ctx, key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum savings for %s: %w", key, err)
	}
	return balance, nil
}

// ListEntries returns the entries that make up BalanceFor(period)
func (s *BankSavingsService) ListEntries(ctx context.Context, period ledger.Period) ([]ledger.BankSavingsEntry, error) {
	if period.IsAllTime() {
		return s.entries.FindByType(ctx, ledger.PeriodTypeCustom)
	}
	return s.entries.FindForKey(ctx, period.Key(period.Start))
}

// GetSavings returns the balance and entries of the queried period
func (s *BankSavingsService) GetSavings(ctx context.Context, q PeriodQuery) (*BankSavingsResponse, error) {
	period, err := s.periods.resolveQuery(ctx, q.Granularity, q.AsOf)
	if err != nil {
		return nil, err
	}
	balance, err := s.BalanceFor(ctx, period)
	if err != nil {
		return nil, err
	}
	entries, err := s.ListEntries(ctx, period)
	if err != nil {
		return nil, err
	}

	resp := &BankSavingsResponse{
		Period:  toPeriodResponse(period),
		Balance: balance,
		Entries: make([]BankSavingsEntryResponse, 0, len(entries)),
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, toBankSavingsEntryResponse(&entries[i]))
	}
	return resp, nil
}
