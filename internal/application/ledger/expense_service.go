package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExpenseService records expenses and runs the reimbursement workflow
type ExpenseService struct {
	expenses ledger.ExpenseRepository
	pool     *ledger.OwnerPool
	serviceOptions
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenses ledger.ExpenseRepository, pool *ledger.OwnerPool, opts ...Option) *ExpenseService {
	return &ExpenseService{
		expenses:       expenses,
		pool:           pool,
		serviceOptions: applyOptions(opts),
	}
}

// CreateExpense records a business expense or an owner-fronted one
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest, actor string) (*ExpenseResponse, error) {
	expenseFor := strings.TrimSpace(req.ExpenseFor)
	if err := s.pool.ValidateExpenseTag(expenseFor); err != nil {
		return nil, err
	}
	incurredOn, err := parseDate("incurred_on", req.IncurredOn, s.now())
	if err != nil {
		return nil, err
	}

	expense, err := ledger.NewExpense(req.Title, req.Amount, req.Category, expenseFor, incurredOn, actor)
	if err != nil {
		return nil, err
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.logger.Info("Expense recorded",
		zap.String("expense_id", expense.ID.String()),
		zap.String("expense_for", expense.ExpenseFor),
		zap.String("amount", expense.Amount.String()),
		zap.String("actor", actor),
	)
	resp := toExpenseResponse(expense)
	return &resp, nil
}

// GetExpense gets an expense by ID
func (s *ExpenseService) GetExpense(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toExpenseResponse(expense)
	return &resp, nil
}

// ListExpenses lists expenses with filtering and pagination
func (s *ExpenseService) ListExpenses(ctx context.Context, f ExpenseListFilter) (shared.Paginated[ExpenseResponse], error) {
	var page shared.Paginated[ExpenseResponse]
	dates, err := parseDateRange(f.From, f.To)
	if err != nil {
		return page, err
	}
	status := ledger.ReimbursementStatus(f.Status)
	if f.Status != "" && !status.IsValid() {
		return page, shared.NewValidationError(shared.CodeValidation,
			fmt.Sprintf("unknown reimbursement status %q", f.Status))
	}

	window := shared.Pagination{Page: f.Page, PageSize: f.PageSize}
	expenses, total, err := s.expenses.FindAll(ctx, ledger.ExpenseFilter{
		Pagination: window,
		DateRange:  dates,
		ExpenseFor: strings.TrimSpace(f.ExpenseFor),
		Status:     status,
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
	})
	if err != nil {
		return page, err
	}

	out := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, toExpenseResponse(&expenses[i]))
	}
	return shared.NewPaginated(out, total, window), nil
}

// DeleteExpense removes an expense. A reimbursed expense needs confirm=true.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id uuid.UUID, confirm bool, actor string) error {
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := expense.CheckDeletable(confirm); err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, id); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("expense_id", id.String()),
		zap.String("status", string(expense.ReimbursementStatus)),
		zap.String("actor", actor),
	}
	if expense.IsReimbursed() {
		s.logger.Warn("Reimbursed expense deleted", fields...)
	} else {
		s.logger.Info("Expense deleted", fields...)
	}
	return nil
}

// ReimburseBatch marks the owner-fronted expenses in ids as reimbursed.
//
// Every id must exist and all expenses must belong to the same owner.
// Expenses that are already reimbursed are reported and left untouched; the
// rest flip together in one transaction or not at all.
func (s *ExpenseService) ReimburseBatch(ctx context.Context, ids []uuid.UUID, actor string) (result *ReimbursementResult, err error) {
	started := s.now()
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "reimburse_batch")
	defer span.End()
	defer func() { s.metrics.ObserveOperation(ctx, "reimburse_batch", started, err) }()

	unique := dedupeIDs(ids)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchSize, len(unique),
		telemetry.SpanAttrActor, actor,
	)
	if len(unique) == 0 {
		return nil, shared.NewValidationError(shared.CodeValidation, "at least one expense id is required")
	}

	expenses, err := s.expenses.FindByIDs(ctx, unique)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if missing := missingIDs(unique, expenses); len(missing) > 0 {
		return nil, shared.NewNotFoundError(fmt.Sprintf("expenses not found: %s", joinIDs(missing)))
	}

	owner, err := batchOwner(expenses)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOwner, owner)

	result = &ReimbursementResult{
		Owner:             owner,
		Reimbursed:        []uuid.UUID{},
		AlreadyReimbursed: []uuid.UUID{},
		Amount:            decimal.Zero,
	}
	for _, e := range expenses {
		if e.IsReimbursed() {
			result.AlreadyReimbursed = append(result.AlreadyReimbursed, e.ID)
			continue
		}
		result.Reimbursed = append(result.Reimbursed, e.ID)
		result.Amount = result.Amount.Add(e.Amount)
	}
	if len(result.Reimbursed) == 0 {
		s.logger.Info("Reimbursement batch was a no-op",
			zap.String("owner", owner),
			zap.Int("already_reimbursed", len(result.AlreadyReimbursed)))
		return result, nil
	}

	// Microsecond precision survives a round trip through the store, so the
	// stamp can identify this batch's rows on re-read.
	at := s.now().UTC().Truncate(time.Microsecond)
	updated, err := s.expenses.MarkReimbursed(ctx, unique, actor, at)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Reimbursement batch failed",
			zap.String("owner", owner),
			zap.Int("batch_size", len(unique)),
			zap.Error(err))
		return nil, err
	}
	if updated != int64(len(result.Reimbursed)) {
		// Another caller settled some of the same rows between our read and write.
		s.logger.Warn("Reimbursement batch raced with another settlement",
			zap.String("owner", owner),
			zap.Int64("updated", updated),
			zap.Int("expected", len(result.Reimbursed)))
		if err := s.attributeSettlement(ctx, result, actor, at); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if len(result.Reimbursed) == 0 {
			return result, nil
		}
	}
	result.ReimbursedAt = &at

	s.metrics.RecordReimbursement(ctx, owner, len(result.Reimbursed), result.Amount)
	s.logger.Info("Expenses reimbursed",
		zap.String("owner", owner),
		zap.Int("count", len(result.Reimbursed)),
		zap.String("amount", result.Amount.String()),
		zap.String("actor", actor),
	)
	telemetry.SetOK(span)
	return result, nil
}

// attributeSettlement re-reads the rows this call expected to settle and
// moves the ones stamped by another settlement into AlreadyReimbursed.
func (s *ExpenseService) attributeSettlement(ctx context.Context, result *ReimbursementResult, actor string, at time.Time) error {
	rows, err := s.expenses.FindByIDs(ctx, result.Reimbursed)
	if err != nil {
		return fmt.Errorf("failed to re-read reimbursed expenses: %w", err)
	}
	result.Reimbursed = []uuid.UUID{}
	result.Amount = decimal.Zero
	for i := range rows {
		e := &rows[i]
		if settledBy(e, actor, at) {
			result.Reimbursed = append(result.Reimbursed, e.ID)
			result.Amount = result.Amount.Add(e.Amount)
			continue
		}
		result.AlreadyReimbursed = append(result.AlreadyReimbursed, e.ID)
	}
	return nil
}

func settledBy(e *ledger.Expense, actor string, at time.Time) bool {
	return e.IsReimbursed() &&
		e.ReimbursedAt != nil && e.ReimbursedAt.Equal(at) &&
		e.ReimbursedBy != nil && *e.ReimbursedBy == actor
}

// PersonalPending returns the outstanding reimbursement total of every pool owner
func (s *ExpenseService) PersonalPending(ctx context.Context) ([]PersonalPendingResponse, error) {
	sums, err := s.expenses.SumPendingByOwner(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PersonalPendingResponse, 0, len(sums))
	for _, name := range s.pool.Names() {
		pending, ok := sums[name]
		if !ok {
			pending = decimal.Zero
		}
		out = append(out, PersonalPendingResponse{Owner: name, Pending: pending})
	}
	return out, nil
}

// batchOwner checks that the batch is owner-fronted and single-owner
func batchOwner(expenses []ledger.Expense) (string, error) {
	owners := make(map[string]struct{})
	for _, e := range expenses {
		if e.IsBusiness() {
			return "", shared.NewValidationError(shared.CodeNotReimbursable,
				fmt.Sprintf("expense %s is a business expense and cannot be reimbursed", e.ID))
		}
		owners[e.ExpenseFor] = struct{}{}
	}
	if len(owners) > 1 {
		names := make([]string, 0, len(owners))
		for n := range owners {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", shared.NewValidationError(shared.CodeMixedOwnerBatch,
			fmt.Sprintf("a reimbursement batch must belong to one owner, got %s", strings.Join(names, ", ")))
	}
	return expenses[0].ExpenseFor, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(want []uuid.UUID, found []ledger.Expense) []uuid.UUID {
	have := make(map[uuid.UUID]struct{}, len(found))
	for _, e := range found {
		have[e.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
