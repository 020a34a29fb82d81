package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AggregationService computes period figures from orders, expenses and payroll
type AggregationService struct {
	orders   ledger.OrderReader
	salaries ledger.SalaryPaymentReader
	expenses ledger.ExpenseRepository
	serviceOptions
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(
	orders ledger.OrderReader,
	salaries ledger.SalaryPaymentReader,
	expenses ledger.ExpenseRepository,
	opts ...Option,
) *AggregationService {
	return &AggregationService{
		orders:         orders,
		salaries:       salaries,
		expenses:       expenses,
		serviceOptions: applyOptions(opts),
	}
}

// ResolvePeriod turns a granularity and reference date into bounds. The
// all-time window starts at the first order, so it costs one extra query.
func (s *AggregationService) ResolvePeriod(ctx context.Context, g ledger.Granularity, asOf time.Time) (ledger.Period, error) {
	var earliest *time.Time
	if g == ledger.GranularityAllTime {
		var err error
		earliest, err = s.orders.EarliestCreatedAt(ctx)
		if err != nil {
			return ledger.Period{}, fmt.Errorf("failed to find earliest order: %w", err)
		}
	}
	return ledger.ResolvePeriod(g, asOf, earliest)
}

// resolveQuery parses the wire form of a period selection
func (s *AggregationService) resolveQuery(ctx context.Context, granularity, asOf string) (ledger.Period, error) {
	g, err := ledger.ParseGranularity(granularity)
	if err != nil {
		return ledger.Period{}, err
	}
	ref, err := parseDate("as_of", asOf, s.now())
	if err != nil {
		return ledger.Period{}, err
	}
	return s.ResolvePeriod(ctx, g, ref)
}

// Aggregate sums revenue, business expense and payroll over period.
func (s *AggregationService) Aggregate(ctx context.Context, period ledger.Period) (ledger.PeriodSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "aggregate",
		telemetry.WithAttribute(telemetry.SpanAttrGranularity, string(period.Granularity)))
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriod, period.Start.Format(ledger.DateLayout)+".."+period.End.Format(ledger.DateLayout),
	)

	revenue, err := s.orders.SumPaidRevenue(ctx, period.Start, period.EndExclusive())
	if err != nil {
		telemetry.RecordError(span, err)
		return ledger.PeriodSummary{}, fmt.Errorf("failed to sum revenue: %w", err)
	}

	// Revenue alone is anchored on the first order; all-time expense and
	// payroll are unbounded.
	var dates ledger.DateRange
	if !period.IsAllTime() {
		dates = ledger.DateRange{From: &period.Start, To: &period.End}
	}
	business, err := s.expenses.SumBusinessExpense(ctx, dates)
	if err != nil {
		telemetry.RecordError(span, err)
		return ledger.PeriodSummary{}, fmt.Errorf("failed to sum business expense: %w", err)
	}

	payroll, err := s.salaries.SumPaid(ctx, dates)
	if err != nil {
		telemetry.RecordError(span, err)
		return ledger.PeriodSummary{}, fmt.Errorf("failed to sum payroll: %w", err)
	}

	return ledger.NewPeriodSummary(period, revenue, business, payroll), nil
}

// GetSummary resolves the query and aggregates it
func (s *AggregationService) GetSummary(ctx context.Context, q PeriodQuery) (*PeriodSummaryResponse, error) {
	started := s.now()
	period, err := s.resolveQuery(ctx, q.Granularity, q.AsOf)
	if err != nil {
		return nil, err
	}
	summary, err := s.Aggregate(ctx, period)
	s.metrics.ObserveOperation(ctx, "aggregate", started, err)
	if err != nil {
		s.logger.Error("Aggregation failed",
			zap.String("granularity", string(period.Granularity)),
			zap.Error(err))
		return nil, err
	}
	resp := toPeriodSummaryResponse(summary)
	return &resp, nil
}

// ListOrders lists the orders the aggregator reads, for reconciliation
func (s *AggregationService) ListOrders(ctx context.Context, f OrderListFilter) (shared.Paginated[OrderResponse], error) {
	dates, err := parseDateRange(f.From, f.To)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	window := shared.Pagination{Page: f.Page, PageSize: f.PageSize}
	orders, total, err := s.orders.FindAll(ctx, ledger.OrderFilter{
		Pagination: window,
		DateRange:  dates,
		PaidOnly:   f.PaidOnly,
	})
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderResponse{ID: o.ID, Total: o.Total, IsPaid: o.IsPaid, CreatedAt: o.CreatedAt})
	}
	return shared.NewPaginated(out, total, window), nil
}

// ListSalaryPayments lists payroll rows, for reconciliation
func (s *AggregationService) ListSalaryPayments(ctx context.Context, f SalaryPaymentListFilter) (shared.Paginated[SalaryPaymentResponse], error) {
	dates, err := parseDateRange(f.From, f.To)
	if err != nil {
		return shared.Paginated[SalaryPaymentResponse]{}, err
	}
	window := shared.Pagination{Page: f.Page, PageSize: f.PageSize}
	payments, total, err := s.salaries.FindAll(ctx, ledger.SalaryPaymentFilter{
		Pagination: window,
		DateRange:  dates,
		EmployeeID: f.EmployeeID,
	})
	if err != nil {
		return shared.Paginated[SalaryPaymentResponse]{}, err
	}

	out := make([]SalaryPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, SalaryPaymentResponse{
			ID:         p.ID,
			EmployeeID: p.EmployeeID,
			Amount:     p.Amount,
			IsPaid:     p.IsPaid,
			Date:       p.Date.Format(ledger.DateLayout),
		})
	}
	return shared.NewPaginated(out, total, window), nil
}
