package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/SscSPs/costshare_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for balances and the transaction log.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// RegisterLedgerRoutes registers account and ledger statistics routes.
// Money-moving routes run behind moneyLimiter.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, moneyLimiter gin.HandlerFunc) {
	h := newLedgerHandler(ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/recharge", moneyLimiter, h.recharge)
		accounts.GET("/me", h.getMyAccount)
		accounts.GET("/me/transactions", h.listMyTransactions)
	}
	rg.GET("/admin/ledger/statistics", h.getStatistics)
}

// recharge godoc
// @Summary Recharge balance
// @Description Adds money to the caller's account and records a recharge transaction
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   recharge body dto.RechargeRequest true "Recharge amount"
// @Success 200 {object} dto.RechargeResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Failed to recharge"
// @Security BearerAuth
// @Router /accounts/recharge [post]
func (h *ledgerHandler) recharge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recharge", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	description := req.Description
	if description == "" {
		description = "Balance recharge"
	}
	res, err := h.ledgerService.ApplyTransaction(c.Request.Context(), domain.LedgerEntry{
		UserID:      userID,
		Type:        domain.TransactionRecharge,
		Amount:      req.Amount,
		Description: description,
		ActorID:     userID,
	})
	if err != nil {
		respondError(c, logger, err, "Failed to recharge")
		return
	}

	c.JSON(http.StatusOK, dto.RechargeResponse{TransactionID: res.TransactionID, NewBalance: res.NewBalance})
}

// getMyAccount godoc
// @Summary Get own balance
// @Description Returns the caller's account; users without one see a zero balance
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/me [get]
func (h *ledgerHandler) getMyAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	acc, err := h.ledgerService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// listMyTransactions godoc
// @Summary List own transactions
// @Description Pages through the caller's ledger entries, newest first
// @Tags accounts
// @Produce  json
// @Param   type query string false "recharge, expense or refund"
// @Param   from query string false "RFC3339 lower bound"
// @Param   to query string false "RFC3339 upper bound"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /accounts/me/transactions [get]
func (h *ledgerHandler) listMyTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid query for transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getStatistics godoc
// @Summary Ledger statistics
// @Description Account count, total balance and per-type totals over the last days
// @Tags admin
// @Produce  json
// @Param   days query int false "Window in days" default(30)
// @Success 200 {object} domain.LedgerStatistics
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute statistics"
// @Security BearerAuth
// @Router /admin/ledger/statistics [get]
func (h *ledgerHandler) getStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	var params dto.StatisticsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	stats, err := h.ledgerService.GetStatistics(c.Request.Context(), params.Days)
	if err != nil {
		respondError(c, logger, err, "Failed to compute statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
