// Package handler contains the gin handlers of the ledger API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// successPage sends one page of a listing with its pagination meta
func successPage[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPagedResponse(page))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response with the given code
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BindError answers a failed ShouldBind* call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleBindError(c, err)
}

// HandleError maps a service error to its response. A partial claim answers
// 207 with the committed record as data; internal errors are logged and
// answered without detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)
	code, status, message := dto.ErrorStatus(err)

	var partial *ledger.PartialApplicationError
	if errors.As(err, &partial) {
		logger.L(c.Request.Context()).Error("Partial application",
			zap.String("trace_id", telemetry.GetTraceID(c.Request.Context())),
			zap.Error(err))
		c.JSON(status, dto.NewPartialResponse(
			ledgerapp.ToDistributionRecordResponse(partial.Record), code, message, requestID))
		return
	}

	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.String("code", code),
			zap.String("trace_id", telemetry.GetTraceID(c.Request.Context())),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// actor returns the acting user set by the Actor middleware
func actor(c *gin.Context) string {
	return middleware.GetActor(c)
}
