package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
)

// ExpenseHandler handles expense intake and the reimbursement workflow
type ExpenseHandler struct {
	BaseHandler
	service *ledgerapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service *ledgerapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Create godoc
// @ID           createExpense
// @Summary      Record an expense
// @Description  Records a business or personal expense. Personal expenses start pending reimbursement.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param        request body ledgerapp.CreateExpenseRequest true "Expense"
// @Success      201 {object} dto.Response{data=ledgerapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     ActorID
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	expense, err := h.service.CreateExpense(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// List godoc
// @ID           listExpenses
// @Summary      List expenses
// @Description  Pages through expenses, newest incurred first unless sort_by and sort_order say otherwise
// @Tags         expenses
// @Produce      json
// @Param        expense_for query string false "Owner name or business"
// @Param        status query string false "Reimbursement status" Enums(none, pending, reimbursed)
// @Param        from query string false "Incurred on or after (YYYY-MM-DD)"
// @Param        to query string false "Incurred on or before (YYYY-MM-DD)"
// @Param        sort_by query string false "Sort field" Enums(incurred_on, amount, title, created_at, expense_for)
// @Param        sort_order query string false "Sort direction" Enums(asc, desc)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ledgerapp.ExpenseResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var f ledgerapp.ExpenseListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.ListExpenses(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get godoc
// @ID           getExpense
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := h.expenseID(c)
	if !ok {
		return
	}

	expense, err := h.service.GetExpense(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete godoc
// @ID           deleteExpense
// @Summary      Delete an expense
// @Description  Removes an expense. Deleting a reimbursed expense requires confirm=true.
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Param        confirm query bool false "Confirm deletion of a reimbursed expense"
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     ActorID
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := h.expenseID(c)
	if !ok {
		return
	}
	confirm := false
	if raw := c.Query("confirm"); raw != "" {
		var err error
		if confirm, err = strconv.ParseBool(raw); err != nil {
			h.BadRequest(c, dto.ErrCodeBadRequest, "confirm must be true or false")
			return
		}
	}

	if err := h.service.DeleteExpense(c.Request.Context(), id, confirm, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PersonalPending godoc
// @ID           personalPending
// @Summary      Pending personal expenses per owner
// @Description  Totals the personal expenses still awaiting reimbursement, one row per owner
// @Tags         expenses
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ledgerapp.PersonalPendingResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /expenses/personal-pending [get]
func (h *ExpenseHandler) PersonalPending(c *gin.Context) {
	pending, err := h.service.PersonalPending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pending)
}

// Reimburse godoc
// @ID           reimburseExpenses
// @Summary      Reimburse a batch of personal expenses
// @Description  Settles the pending expenses of one owner. Rows already settled are reported, not reprocessed.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param        request body ledgerapp.ReimburseRequest true "Expense IDs"
// @Success      200 {object} dto.Response{data=ledgerapp.ReimbursementResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     ActorID
// @Router       /expenses/reimburse [post]
func (h *ExpenseHandler) Reimburse(c *gin.Context) {
	var req ledgerapp.ReimburseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.ReimburseBatch(c.Request.Context(), req.ExpenseIDs, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *ExpenseHandler) expenseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeBadRequest, "Invalid expense ID")
		return uuid.Nil, false
	}
	return id, true
}
