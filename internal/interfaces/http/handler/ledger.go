package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
)

// LedgerHandler serves period summaries and the read-only source listings
type LedgerHandler struct {
	BaseHandler
	aggregation *ledgerapp.AggregationService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(aggregation *ledgerapp.AggregationService) *LedgerHandler {
	return &LedgerHandler{aggregation: aggregation}
}

// GetSummary godoc
// @ID           getLedgerSummary
// @Summary      Period summary
// @Description  Revenue, business and payroll expense and net income of the period containing as_of
// @Tags         ledger
// @Produce      json
// @Param        granularity query string false "Period granularity" Enums(monthly, yearly, all_time) default(monthly)
// @Param        as_of query string false "Any day in the period (YYYY-MM-DD), defaults to today"
// @Success      200 {object} dto.Response{data=ledgerapp.PeriodSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/summary [get]
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	var q ledgerapp.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	summary, err := h.aggregation.GetSummary(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListOrders godoc
// @ID           listOrders
// @Summary      List orders
// @Tags         ledger
// @Produce      json
// @Param        from query string false "Created on or after (YYYY-MM-DD)"
// @Param        to query string false "Created on or before (YYYY-MM-DD)"
// @Param        paid_only query bool false "Only paid orders"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ledgerapp.OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders [get]
func (h *LedgerHandler) ListOrders(c *gin.Context) {
	var f ledgerapp.OrderListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.aggregation.ListOrders(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// ListSalaryPayments godoc
// @ID           listSalaryPayments
// @Summary      List salary payments
// @Tags         ledger
// @Produce      json
// @Param        employee_id query string false "Employee"
// @Param        from query string false "Paid on or after (YYYY-MM-DD)"
// @Param        to query string false "Paid on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ledgerapp.SalaryPaymentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /salary-payments [get]
func (h *LedgerHandler) ListSalaryPayments(c *gin.Context) {
	var f ledgerapp.SalaryPaymentListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.aggregation.ListSalaryPayments(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}
