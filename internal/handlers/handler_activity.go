package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/SscSPs/costshare_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// activityHandler handles HTTP requests for activities, their expenses and cost sharing.
type activityHandler struct {
	activityService     portssvc.ActivitySvcFacade
	registrationService portssvc.CostSharingRecalculatorSvc
}

func newActivityHandler(as portssvc.ActivitySvcFacade, rs portssvc.CostSharingRecalculatorSvc) *activityHandler {
	return &activityHandler{activityService: as, registrationService: rs}
}

// RegisterActivityRoutes registers routes related to activities.
func RegisterActivityRoutes(rg *gin.RouterGroup, activityService portssvc.ActivitySvcFacade, recalculator portssvc.CostSharingRecalculatorSvc) {
	h := newActivityHandler(activityService, recalculator)

	activities := rg.Group("/activities")
	{
		activities.POST("", h.createActivity)
		activities.GET("/:activityID", h.getActivity)
		activities.PUT("/:activityID/cost-config", h.updateCostConfig)
		activities.PUT("/:activityID/status", h.updateStatus)
		activities.POST("/:activityID/expenses", h.recordExpense)
		activities.GET("/:activityID/expenses", h.listExpenses)
		activities.GET("/:activityID/cost-sharing", h.getCostSharing)
		activities.POST("/:activityID/cost-sharing/recalculate", h.recalculate)
	}
}

// createActivity godoc
// @Summary Create an activity
// @Description Creates an activity organized by the caller
// @Tags activities
// @Accept  json
// @Produce  json
// @Param   activity body dto.CreateActivityRequest true "Activity details"
// @Success 201 {object} dto.ActivityResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create activity"
// @Security BearerAuth
// @Router /activities [post]
func (h *activityHandler) createActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateActivity", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	activity, err := h.activityService.CreateActivity(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create activity")
		return
	}
	c.JSON(http.StatusCreated, dto.ToActivityResponse(activity))
}

// getActivity godoc
// @Summary Get an activity
// @Tags activities
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Success 200 {object} dto.ActivityResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 500 {object} map[string]string "Failed to retrieve activity"
// @Security BearerAuth
// @Router /activities/{activityID} [get]
func (h *activityHandler) getActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	activity, err := h.activityService.GetActivity(c.Request.Context(), c.Param("activityID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve activity")
		return
	}
	c.JSON(http.StatusOK, dto.ToActivityResponse(activity))
}

// updateCostConfig godoc
// @Summary Update the cost configuration
// @Description Replaces total cost, company ratio and budget. Locked once any registration is approved.
// @Tags activities
// @Accept  json
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Param   config body dto.UpdateCostConfigRequest true "Cost configuration"
// @Success 200 {object} dto.ActivityResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 409 {object} map[string]string "Cost configuration locked"
// @Failure 500 {object} map[string]string "Failed to update cost configuration"
// @Security BearerAuth
// @Router /activities/{activityID}/cost-config [put]
func (h *activityHandler) updateCostConfig(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateCostConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	activity, err := h.activityService.UpdateCostConfig(c.Request.Context(), c.Param("activityID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update cost configuration")
		return
	}
	c.JSON(http.StatusOK, dto.ToActivityResponse(activity))
}

// updateStatus godoc
// @Summary Change the activity status
// @Tags activities
// @Accept  json
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Param   status body dto.UpdateActivityStatusRequest true "New status"
// @Success 200 {object} dto.ActivityResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Activity already finished"
// @Failure 500 {object} map[string]string "Failed to update status"
// @Security BearerAuth
// @Router /activities/{activityID}/status [put]
func (h *activityHandler) updateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateActivityStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	activity, err := h.activityService.UpdateStatus(c.Request.Context(), c.Param("activityID"), req.Status, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update status")
		return
	}
	c.JSON(http.StatusOK, dto.ToActivityResponse(activity))
}

// recordExpense godoc
// @Summary Record an expense
// @Tags activities
// @Accept  json
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Param   expense body dto.RecordExpenseRequest true "Expense item"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 500 {object} map[string]string "Failed to record expense"
// @Security BearerAuth
// @Router /activities/{activityID}/expenses [post]
func (h *activityHandler) recordExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	expense, err := h.activityService.RecordExpense(c.Request.Context(), c.Param("activityID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record expense")
		return
	}
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(*expense))
}

// listExpenses godoc
// @Summary List expenses
// @Tags activities
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Success 200 {array} dto.ExpenseResponse
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 500 {object} map[string]string "Failed to list expenses"
// @Security BearerAuth
// @Router /activities/{activityID}/expenses [get]
func (h *activityHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	expenses, err := h.activityService.ListExpenses(c.Request.Context(), c.Param("activityID"))
	if err != nil {
		respondError(c, logger, err, "Failed to list expenses")
		return
	}
	resp := make([]dto.ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = dto.ToExpenseResponse(e)
	}
	c.JSON(http.StatusOK, resp)
}

// getCostSharing godoc
// @Summary Get the cost split
// @Description Returns the activity with its current cost-sharing records
// @Tags activities
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Success 200 {object} dto.ActivityCostSharingResponse
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 500 {object} map[string]string "Failed to retrieve cost sharing"
// @Security BearerAuth
// @Router /activities/{activityID}/cost-sharing [get]
func (h *activityHandler) getCostSharing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	activity, records, err := h.activityService.GetCostSharing(c.Request.Context(), c.Param("activityID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve cost sharing")
		return
	}
	c.JSON(http.StatusOK, dto.ActivityCostSharingResponse{
		Activity:           dto.ToActivityResponse(activity),
		CostSharingRecords: dto.ToCostSharingRecordResponses(records),
	})
}

// recalculate godoc
// @Summary Recalculate the cost split
// @Description Rebuilds the cost-sharing records from the approved registrations
// @Tags activities
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Success 200 {array} dto.CostSharingRecordResponse
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 500 {object} map[string]string "Failed to recalculate"
// @Security BearerAuth
// @Router /activities/{activityID}/cost-sharing/recalculate [post]
func (h *activityHandler) recalculate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	records, err := h.registrationService.Recalculate(c.Request.Context(), c.Param("activityID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to recalculate")
		return
	}
	c.JSON(http.StatusOK, dto.ToCostSharingRecordResponses(records))
}
