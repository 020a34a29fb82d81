package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
)

// DistributionHandler serves owner distributions, claims and statements
type DistributionHandler struct {
	BaseHandler
	service *ledgerapp.DistributionService
}

// NewDistributionHandler creates a new DistributionHandler
func NewDistributionHandler(service *ledgerapp.DistributionService) *DistributionHandler {
	return &DistributionHandler{service: service}
}

// Get godoc
// @ID           getDistribution
// @Summary      Owner distribution
// @Description  Splits the period's net income over the selected owners after the bank reserve. owners may be repeated or comma separated; omitted means every eligible owner.
// @Tags         distributions
// @Produce      json
// @Param        granularity query string false "Period granularity" Enums(monthly, yearly, all_time) default(monthly)
// @Param        as_of query string false "Any day in the period (YYYY-MM-DD), defaults to today"
// @Param        owners query []string false "Selected owners" collectionFormat(multi)
// @Success      200 {object} dto.Response{data=ledgerapp.DistributionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /distributions [get]
func (h *DistributionHandler) Get(c *gin.Context) {
	var q ledgerapp.DistributionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	dist, err := h.service.GetDistribution(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dist)
}

// Claim godoc
// @ID           claimDistribution
// @Summary      Claim an owner's share
// @Description  Records the owner's share for the period as claimed. A repeated claim answers 200 with already_claimed set; a claim whose savings withdrawal failed answers 207.
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param        request body ledgerapp.ClaimRequest true "Claim"
// @Success      201 {object} dto.Response{data=ledgerapp.ClaimResult}
// @Success      200 {object} dto.Response{data=ledgerapp.ClaimResult}
// @Success      207 {object} dto.Response{data=ledgerapp.ClaimResult,error=dto.ErrorInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     ActorID
// @Router       /distributions/claims [post]
func (h *DistributionHandler) Claim(c *gin.Context) {
	var req ledgerapp.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Claim(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.AlreadyClaimed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Statement godoc
// @ID           distributionStatement
// @Summary      Distribution statement
// @Description  Renders the distribution of the period as a PDF attachment
// @Tags         distributions
// @Produce      application/pdf
// @Produce      json
// @Param        granularity query string false "Period granularity" Enums(monthly, yearly, all_time) default(monthly)
// @Param        as_of query string false "Any day in the period (YYYY-MM-DD), defaults to today"
// @Param        owners query []string false "Selected owners" collectionFormat(multi)
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /distributions/statement.pdf [get]
func (h *DistributionHandler) Statement(c *gin.Context) {
	var q ledgerapp.DistributionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	// Rendered into memory first so a failure can still answer with JSON.
	var buf bytes.Buffer
	if err := h.service.StatementPDF(c.Request.Context(), q, &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	granularity := q.Granularity
	if granularity == "" {
		granularity = "monthly"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="distribution-%s.pdf"`, granularity))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
