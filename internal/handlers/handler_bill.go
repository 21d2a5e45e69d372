package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/SscSPs/costshare_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// billHandler handles HTTP requests for bills and their notices.
type billHandler struct {
	billService portssvc.BillSvcFacade
}

// RegisterBillRoutes registers routes for the bill lifecycle and notices.
func RegisterBillRoutes(rg *gin.RouterGroup, billService portssvc.BillSvcFacade) {
	h := &billHandler{billService: billService}

	rg.POST("/activities/:activityID/bills/draft", h.createDraft)
	rg.GET("/activities/:activityID/bills", h.listBills)
	rg.GET("/activities/:activityID/bills/latest", h.getLatestBill)

	bills := rg.Group("/bills")
	{
		bills.GET("/:billID", h.getBill)
		bills.POST("/:billID/save", h.saveBill)
		bills.POST("/:billID/push", h.pushBill)
		bills.POST("/:billID/dispatch/retry", h.retryDispatch)
		bills.GET("/:billID/notices", h.listNotices)
	}

	notices := rg.Group("/notices")
	{
		notices.GET("/me", h.listMyNotices)
		notices.POST("/:noticeID/mark-paid", h.markNoticePaid)
	}

	rg.GET("/messages/me", h.listMyMessages)
}

// createDraft godoc
// @Summary Create or refresh the draft bill
// @Description Computes a draft bill from approved registrations. An existing draft is recomputed in place.
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Param   overrides body dto.CreateBillDraftRequest false "Custom total and ratio overrides"
// @Success 200 {object} dto.BillResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 500 {object} map[string]string "Failed to create bill draft"
// @Security BearerAuth
// @Router /activities/{activityID}/bills/draft [post]
func (h *billHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.CreateBillDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CreateBillDraft", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	bill, err := h.billService.CreateOrUpdateDraft(c.Request.Context(), c.Param("activityID"), userID, req.ToOverrides())
	if err != nil {
		respondError(c, logger, err, "Failed to create bill draft")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// listBills godoc
// @Summary List an activity's bills
// @Tags bills
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Param   status query string false "Filter by status"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.BillResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list bills"
// @Security BearerAuth
// @Router /activities/{activityID}/bills [get]
func (h *billHandler) listBills(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	var params dto.ListBillsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	bills, err := h.billService.ListBills(c.Request.Context(), c.Param("activityID"), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list bills")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponses(bills))
}

// getLatestBill godoc
// @Summary Get the latest bill of an activity
// @Tags bills
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Success 200 {object} dto.BillResponse
// @Failure 404 {object} map[string]string "No bill yet"
// @Failure 500 {object} map[string]string "Failed to retrieve bill"
// @Security BearerAuth
// @Router /activities/{activityID}/bills/latest [get]
func (h *billHandler) getLatestBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	bill, err := h.billService.GetLatestBill(c.Request.Context(), c.Param("activityID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// getBill godoc
// @Summary Get a bill
// @Tags bills
// @Produce  json
// @Param   billID path string true "Bill ID"
// @Success 200 {object} dto.BillResponse
// @Failure 404 {object} map[string]string "Bill not found"
// @Failure 500 {object} map[string]string "Failed to retrieve bill"
// @Security BearerAuth
// @Router /bills/{billID} [get]
func (h *billHandler) getBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), c.Param("billID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// saveBill godoc
// @Summary Save a draft bill
// @Tags bills
// @Produce  json
// @Param   billID path string true "Bill ID"
// @Success 200 {object} dto.BillResponse
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Bill is not a draft"
// @Failure 500 {object} map[string]string "Failed to save bill"
// @Security BearerAuth
// @Router /bills/{billID}/save [post]
func (h *billHandler) saveBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	bill, err := h.billService.SaveBill(c.Request.Context(), c.Param("billID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to save bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// pushBill godoc
// @Summary Push a saved bill
// @Description Freezes the bill and sends a notice to every participant. Delivery failures are reported, not rolled back.
// @Tags bills
// @Produce  json
// @Param   billID path string true "Bill ID"
// @Success 200 {object} dto.PushBillResponse
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Bill already pushed or not saved"
// @Failure 500 {object} map[string]string "Failed to push bill"
// @Security BearerAuth
// @Router /bills/{billID}/push [post]
func (h *billHandler) pushBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	bill, results, err := h.billService.PushBill(c.Request.Context(), c.Param("billID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to push bill")
		return
	}
	c.JSON(http.StatusOK, dto.NewPushBillResponse(bill, results))
}

// retryDispatch godoc
// @Summary Retry undelivered notices
// @Tags bills
// @Produce  json
// @Param   billID path string true "Bill ID"
// @Success 200 {array} domain.DispatchResult
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Bill not pushed"
// @Failure 500 {object} map[string]string "Failed to retry dispatch"
// @Security BearerAuth
// @Router /bills/{billID}/dispatch/retry [post]
func (h *billHandler) retryDispatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	results, err := h.billService.RetryDispatch(c.Request.Context(), c.Param("billID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retry dispatch")
		return
	}
	c.JSON(http.StatusOK, results)
}

// listNotices godoc
// @Summary List a bill's notices
// @Description Organizers see every notice; participants only their own.
// @Tags bills
// @Produce  json
// @Param   billID path string true "Bill ID"
// @Success 200 {array} domain.BillNotice
// @Failure 404 {object} map[string]string "Bill not found"
// @Failure 500 {object} map[string]string "Failed to list notices"
// @Security BearerAuth
// @Router /bills/{billID}/notices [get]
func (h *billHandler) listNotices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	notices, err := h.billService.ListNotices(c.Request.Context(), c.Param("billID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list notices")
		return
	}
	c.JSON(http.StatusOK, notices)
}

// listMyNotices godoc
// @Summary List my bill notices
// @Tags bills
// @Produce  json
// @Success 200 {array} domain.BillNotice
// @Failure 500 {object} map[string]string "Failed to list notices"
// @Security BearerAuth
// @Router /notices/me [get]
func (h *billHandler) listMyNotices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	notices, err := h.billService.ListUserNotices(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list notices")
		return
	}
	c.JSON(http.StatusOK, notices)
}

// markNoticePaid godoc
// @Summary Mark a notice paid
// @Description Records an out-of-band settlement of a bill notice
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   noticeID path string true "Notice ID"
// @Param   payment body dto.MarkNoticePaidRequest false "Payment details"
// @Success 200 {object} domain.BillNotice
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Already paid"
// @Failure 500 {object} map[string]string "Failed to mark notice paid"
// @Security BearerAuth
// @Router /notices/{noticeID}/mark-paid [post]
func (h *billHandler) markNoticePaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.MarkNoticePaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	notice, err := h.billService.MarkNoticePaid(c.Request.Context(), c.Param("noticeID"), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to mark notice paid")
		return
	}
	c.JSON(http.StatusOK, notice)
}

// listMyMessages godoc
// @Summary List my inbox
// @Description Returns delivered bill messages, newest first
// @Tags bills
// @Produce  json
// @Param   limit query int false "Max messages" default(50)
// @Success 200 {array} domain.Message
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list messages"
// @Security BearerAuth
// @Router /messages/me [get]
func (h *billHandler) listMyMessages(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var params dto.ListMessagesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	messages, err := h.billService.ListUserMessages(c.Request.Context(), userID, params.Limit)
	if err != nil {
		respondError(c, logger, err, "Failed to list messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}
