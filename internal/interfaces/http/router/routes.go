package router

import (
	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/interfaces/http/handler"
)

// LedgerRoutes mounts the period summary and the source listings
type LedgerRoutes struct {
	Handler *handler.LedgerHandler
}

// RegisterRoutes implements RouteRegistrar
func (lr LedgerRoutes) RegisterRoutes(api *gin.RouterGroup, _ gin.HandlersChain) {
	api.GET("/ledger/summary", lr.Handler.GetSummary)
	api.GET("/orders", lr.Handler.ListOrders)
	api.GET("/salary-payments", lr.Handler.ListSalaryPayments)
}

// ExpenseRoutes mounts expense intake and reimbursement
type ExpenseRoutes struct {
	Handler *handler.ExpenseHandler
}

// RegisterRoutes implements RouteRegistrar
func (er ExpenseRoutes) RegisterRoutes(api *gin.RouterGroup, writes gin.HandlersChain) {
	g := api.Group("/expenses")
	g.GET("", er.Handler.List)
	g.GET("/personal-pending", er.Handler.PersonalPending)
	g.GET("/:id", er.Handler.Get)
	g.POST("", with(writes, er.Handler.Create)...)
	g.POST("/reimburse", with(writes, er.Handler.Reimburse)...)
	g.DELETE("/:id", with(writes, er.Handler.Delete)...)
}

// BankSavingsRoutes mounts the reserve ledger
type BankSavingsRoutes struct {
	Handler *handler.BankSavingsHandler
}

// RegisterRoutes implements RouteRegistrar
func (br BankSavingsRoutes) RegisterRoutes(api *gin.RouterGroup, writes gin.HandlersChain) {
	g := api.Group("/bank-savings")
	g.GET("", br.Handler.Get)
	g.POST("/deposits", with(writes, br.Handler.Deposit)...)
	g.POST("/withdrawals", with(writes, br.Handler.Withdraw)...)
}

// DistributionRoutes mounts distributions, claims and statements
type DistributionRoutes struct {
	Handler *handler.DistributionHandler
}

// RegisterRoutes implements RouteRegistrar
func (dr DistributionRoutes) RegisterRoutes(api *gin.RouterGroup, writes gin.HandlersChain) {
	g := api.Group("/distributions")
	g.GET("", dr.Handler.Get)
	g.GET("/statement.pdf", dr.Handler.Statement)
	g.POST("/claims", with(writes, dr.Handler.Claim)...)
}
