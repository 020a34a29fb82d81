package ledger

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StatementRenderer writes a printable statement of a distribution
type StatementRenderer interface {
	Render(w io.Writer, d ledger.Distribution, generatedAt time.Time) error
}

// DistributionService splits a period's net income among owners and records claims
type DistributionService struct {
	periods  *AggregationService
	savings  *BankSavingsService
	expenses ledger.ExpenseRepository
	records  ledger.DistributionRecordRepository
	pool     *ledger.OwnerPool
	renderer StatementRenderer
	serviceOptions
}

// NewDistributionService creates a new DistributionService. renderer may be
// nil, in which case StatementPDF is unavailable.
func NewDistributionService(
	periods *AggregationService,
	savings *BankSavingsService,
	expenses ledger.ExpenseRepository,
	records ledger.DistributionRecordRepository,
	pool *ledger.OwnerPool,
	renderer StatementRenderer,
	opts ...Option,
) *DistributionService {
	return &DistributionService{
		periods:        periods,
		savings:        savings,
		expenses:       expenses,
		records:        records,
		pool:           pool,
		renderer:       renderer,
		serviceOptions: applyOptions(opts),
	}
}

// selection validates the chosen owners. No owners means every eligible one.
func (s *DistributionService) selection(owners []string) (ledger.Selection, error) {
	names := splitOwners(owners)
	if len(names) == 0 {
		for _, o := range s.pool.Owners() {
			if o.Eligible {
				names = append(names, o.Name)
			}
		}
	}
	return s.pool.Select(names)
}

// compute assembles the distribution of period for sel
func (s *DistributionService) compute(ctx context.Context, period ledger.Period, sel ledger.Selection) (ledger.Distribution, error) {
	summary, err := s.periods.Aggregate(ctx, period)
	if err != nil {
		return ledger.Distribution{}, err
	}
	balance, err := s.savings.BalanceFor(ctx, period)
	if err != nil {
		return ledger.Distribution{}, err
	}
	pending, err := s.expenses.SumPendingByOwner(ctx)
	if err != nil {
		return ledger.Distribution{}, fmt.Errorf("failed to sum pending expenses: %w", err)
	}
	claims, err := s.records.FindForPeriod(ctx, period.Key(s.now()))
	if err != nil {
		return ledger.Distribution{}, fmt.Errorf("failed to load distribution records: %w", err)
	}
	return ledger.ComputeDistribution(s.pool, sel, summary, balance, pending, claims), nil
}

// Distribution computes the split for a query without changing anything
func (s *DistributionService) Distribution(ctx context.Context, q DistributionQuery) (ledger.Distribution, error) {
	started := s.now()
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "compute")
	defer span.End()

	sel, err := s.selection(q.Owners)
	if err != nil {
		return ledger.Distribution{}, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOwners, strings.Join(sel.Names(), ","))

	period, err := s.periods.resolveQuery(ctx, q.Granularity, q.AsOf)
	if err != nil {
		return ledger.Distribution{}, err
	}
	dist, err := s.compute(ctx, period, sel)
	s.metrics.ObserveOperation(ctx, "distribution", started, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return ledger.Distribution{}, err
	}
	return dist, nil
}

// GetDistribution returns the computed split in its wire form
func (s *DistributionService) GetDistribution(ctx context.Context, q DistributionQuery) (*DistributionResponse, error) {
	dist, err := s.Distribution(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := toDistributionResponse(dist)
	return &resp, nil
}

// Claim records the owner's share of the period as claimed.
//
// Claiming twice is a no-op that returns the stored record. When
// DrawFromSavings is set and this call won the claim, the net share is
// withdrawn from the reserve afterwards; a failed withdrawal leaves the claim
// in place and returns a *ledger.PartialApplicationError.
func (s *DistributionService) Claim(ctx context.Context, req ClaimRequest, actor string) (result *ClaimResult, err error) {
	started := s.now()
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "claim")
	defer span.End()
	defer func() { s.metrics.ObserveOperation(ctx, "claim", started, err) }()

	owner := strings.TrimSpace(req.Owner)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOwner, owner,
		telemetry.SpanAttrActor, actor,
	)
	if _, ok := s.pool.Lookup(owner); !ok {
		return nil, shared.NewValidationError(shared.CodeUnknownOwner, fmt.Sprintf("unknown owner %q", owner))
	}
	sel, err := s.selection(req.SelectedOwners)
	if err != nil {
		return nil, err
	}
	period, err := s.periods.resolveQuery(ctx, req.Granularity, req.AsOf)
	if err != nil {
		return nil, err
	}
	dist, err := s.compute(ctx, period, sel)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	share, _ := dist.Share(owner)
	if share.Claimed && share.Record != nil {
		s.metrics.RecordClaim(ctx, owner, telemetry.ClaimOutcomeAlreadyClaimed, share.Record.NetShare)
		return &ClaimResult{Record: ToDistributionRecordResponse(share.Record), AlreadyClaimed: true}, nil
	}
	if err := share.CheckClaimable(); err != nil {
		s.metrics.RecordClaim(ctx, owner, telemetry.ClaimOutcomeRejected, share.NetShare)
		return nil, err
	}

	key := period.Key(s.now())
	record := ledger.NewClaimRecord(share, key, actor, s.now())
	stored, err := s.records.UpsertClaim(ctx, record)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Claim upsert failed",
			zap.String("owner", owner),
			zap.String("period", key.String()),
			zap.Error(err))
		return nil, err
	}
	if !stored.ClaimedWith(record.ClaimToken) {
		s.logger.Info("Claim already recorded by another request",
			zap.String("owner", owner),
			zap.String("period", key.String()))
		s.metrics.RecordClaim(ctx, owner, telemetry.ClaimOutcomeAlreadyClaimed, stored.NetShare)
		return &ClaimResult{Record: ToDistributionRecordResponse(stored), AlreadyClaimed: true}, nil
	}

	result = &ClaimResult{Record: ToDistributionRecordResponse(stored)}
	if req.DrawFromSavings {
		reason := fmt.Sprintf("claim: %s %s", owner, key)
		entry, werr := s.savings.withdraw(ctx, stored.NetShare, key, actor, reason)
		if werr != nil {
			telemetry.AddEvent(span, "savings_withdrawal_failed",
				telemetry.SpanAttrOwner, owner,
				telemetry.SpanAttrAmount, stored.NetShare.String(),
			)
			telemetry.RecordError(span, werr)
			s.logger.Error("Claim recorded but savings withdrawal failed",
				zap.String("owner", owner),
				zap.String("period", key.String()),
				zap.String("net_share", stored.NetShare.String()),
				zap.Error(werr))
			s.metrics.RecordClaim(ctx, owner, telemetry.ClaimOutcomePartial, stored.NetShare)
			return nil, &ledger.PartialApplicationError{Record: stored, Cause: werr}
		}
		withdrawal := toBankSavingsEntryResponse(entry)
		result.SavingsWithdraw = &withdrawal
	}

	s.metrics.RecordClaim(ctx, owner, telemetry.ClaimOutcomeClaimed, stored.NetShare)
	s.logger.Info("Distribution claimed",
		zap.String("owner", owner),
		zap.String("period", key.String()),
		zap.String("net_share", stored.NetShare.String()),
		zap.Bool("draw_from_savings", req.DrawFromSavings),
		zap.String("actor", actor),
	)
	telemetry.SetOK(span)
	return result, nil
}

// StatementPDF renders the distribution of q to w
func (s *DistributionService) StatementPDF(ctx context.Context, q DistributionQuery, w io.Writer) error {
	if s.renderer == nil {
		return shared.NewDomainError(shared.CodeStatementUnavailable, "statement rendering is not configured")
	}
	dist, err := s.Distribution(ctx, q)
	if err != nil {
		return err
	}
	if err := s.renderer.Render(w, dist, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to render statement: %w", err)
	}
	return nil
}

// splitOwners accepts both repeated and comma separated owner parameters
func splitOwners(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if name := strings.TrimSpace(part); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
