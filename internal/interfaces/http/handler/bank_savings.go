package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
)

// BankSavingsHandler handles the reserve ledger
type BankSavingsHandler struct {
	BaseHandler
	service *ledgerapp.BankSavingsService
}

// NewBankSavingsHandler creates a new BankSavingsHandler
func NewBankSavingsHandler(service *ledgerapp.BankSavingsService) *BankSavingsHandler {
	return &BankSavingsHandler{service: service}
}

// Get godoc
// @ID           getBankSavings
// @Summary      Bank reserve of a period
// @Description  Balance and entries of the reserve for the period containing as_of
// @Tags         bank-savings
// @Produce      json
// @Param        granularity query string false "Period granularity" Enums(monthly, yearly, all_time) default(monthly)
// @Param        as_of query string false "Any day in the period (YYYY-MM-DD), defaults to today"
// @Success      200 {object} dto.Response{data=ledgerapp.BankSavingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bank-savings [get]
func (h *BankSavingsHandler) Get(c *gin.Context) {
	var q ledgerapp.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	savings, err := h.service.GetSavings(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, savings)
}

// Deposit godoc
// @ID           depositSavings
// @Summary      Deposit into the reserve
// @Tags         bank-savings
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param        request body ledgerapp.SavingsEntryRequest true "Deposit"
// @Success      201 {object} dto.Response{data=ledgerapp.BankSavingsEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     ActorID
// @Router       /bank-savings/deposits [post]
func (h *BankSavingsHandler) Deposit(c *gin.Context) {
	h.appendEntry(c, h.service.Deposit)
}

// Withdraw godoc
// @ID           withdrawSavings
// @Summary      Withdraw from the reserve
// @Tags         bank-savings
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param        request body ledgerapp.SavingsEntryRequest true "Withdrawal"
// @Success      201 {object} dto.Response{data=ledgerapp.BankSavingsEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     ActorID
// @Router       /bank-savings/withdrawals [post]
func (h *BankSavingsHandler) Withdraw(c *gin.Context) {
	h.appendEntry(c, h.service.Withdraw)
}

type savingsAppender func(ctx context.Context, req ledgerapp.SavingsEntryRequest, actor string) (*ledgerapp.BankSavingsEntryResponse, error)

func (h *BankSavingsHandler) appendEntry(c *gin.Context, apply savingsAppender) {
	var req ledgerapp.SavingsEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entry, err := apply(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}
