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

// registrationHandler handles HTTP requests for activity registrations.
type registrationHandler struct {
	registrationService portssvc.RegistrationSvcFacade
}

// RegisterRegistrationRoutes registers routes for the registration lifecycle.
// moneyLimiter guards the payment endpoint.
func RegisterRegistrationRoutes(rg *gin.RouterGroup, registrationService portssvc.RegistrationSvcFacade, moneyLimiter gin.HandlerFunc) {
	h := &registrationHandler{registrationService: registrationService}

	rg.POST("/activities/:activityID/registrations", h.register)
	rg.GET("/activities/:activityID/registrations", h.listByActivity)

	registrations := rg.Group("/registrations")
	{
		registrations.GET("/me", h.listMine)
		registrations.GET("/:registrationID", h.getRegistration)
		registrations.POST("/:registrationID/approve", h.approve)
		registrations.POST("/:registrationID/cancel", h.cancel)
		registrations.POST("/:registrationID/complete", h.complete)
		registrations.PUT("/:registrationID/ratio", h.setRatio)
		registrations.POST("/:registrationID/pay", moneyLimiter, h.pay)
		registrations.POST("/:registrationID/refund", moneyLimiter, h.refund)
	}
}

// register godoc
// @Summary Register for an activity
// @Description Signs the caller up. Registrations are auto-approved unless the activity needs approval.
// @Tags registrations
// @Accept  json
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Param   registration body dto.RegisterRequest false "Sign-up details"
// @Success 201 {object} dto.RegistrationResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 404 {object} map[string]string "Activity not found"
// @Failure 409 {object} map[string]string "Already registered or activity full"
// @Failure 422 {object} map[string]string "Activity not accepting registrations"
// @Failure 500 {object} map[string]string "Failed to register"
// @Security BearerAuth
// @Router /activities/{activityID}/registrations [post]
func (h *registrationHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for Register", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	reg, err := h.registrationService.Register(c.Request.Context(), c.Param("activityID"), userID, req.ToDetails())
	if err != nil {
		respondError(c, logger, err, "Failed to register")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRegistrationResponse(reg))
}

// listByActivity godoc
// @Summary List an activity's registrations
// @Tags registrations
// @Produce  json
// @Param   activityID path string true "Activity ID"
// @Param   status query string false "Filter by status"
// @Success 200 {array} dto.RegistrationResponse
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 500 {object} map[string]string "Failed to list registrations"
// @Security BearerAuth
// @Router /activities/{activityID}/registrations [get]
func (h *registrationHandler) listByActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	var params dto.ListRegistrationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	var status *domain.RegistrationStatus
	if params.Status != "" {
		s := domain.RegistrationStatus(params.Status)
		status = &s
	}

	regs, err := h.registrationService.ListByActivity(c.Request.Context(), c.Param("activityID"), status)
	if err != nil {
		respondError(c, logger, err, "Failed to list registrations")
		return
	}
	c.JSON(http.StatusOK, dto.ToRegistrationResponses(regs))
}

// listMine godoc
// @Summary List my registrations
// @Tags registrations
// @Produce  json
// @Success 200 {array} dto.RegistrationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list registrations"
// @Security BearerAuth
// @Router /registrations/me [get]
func (h *registrationHandler) listMine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	regs, err := h.registrationService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list registrations")
		return
	}
	c.JSON(http.StatusOK, dto.ToRegistrationResponses(regs))
}

// getRegistration godoc
// @Summary Get a registration
// @Description Visible to the registrant and the activity organizer
// @Tags registrations
// @Produce  json
// @Param   registrationID path string true "Registration ID"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Registration not found"
// @Failure 500 {object} map[string]string "Failed to retrieve registration"
// @Security BearerAuth
// @Router /registrations/{registrationID} [get]
func (h *registrationHandler) getRegistration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	reg, err := h.registrationService.GetRegistration(c.Request.Context(), c.Param("registrationID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve registration")
		return
	}
	c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

// approve godoc
// @Summary Approve or reject a registration
// @Tags registrations
// @Accept  json
// @Produce  json
// @Param   registrationID path string true "Registration ID"
// @Param   decision body dto.ApproveRegistrationRequest false "Decision, defaults to approve"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Already processed or activity full"
// @Failure 500 {object} map[string]string "Failed to process registration"
// @Security BearerAuth
// @Router /registrations/{registrationID}/approve [post]
func (h *registrationHandler) approve(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.ApproveRegistrationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	reg, err := h.registrationService.Approve(c.Request.Context(), c.Param("registrationID"), userID, req.Action, req.Note)
	if err != nil {
		respondError(c, logger, err, "Failed to process registration")
		return
	}
	c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

// cancel godoc
// @Summary Cancel a registration
// @Description Paid registrations are only cancelled when refund is requested.
// @Tags registrations
// @Accept  json
// @Produce  json
// @Param   registrationID path string true "Registration ID"
// @Param   options body dto.CancelRegistrationRequest false "Cancel options"
// @Success 200 {object} dto.CancelRegistrationResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Failure 500 {object} map[string]string "Failed to cancel registration"
// @Security BearerAuth
// @Router /registrations/{registrationID}/cancel [post]
func (h *registrationHandler) cancel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.CancelRegistrationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	res, err := h.registrationService.Cancel(c.Request.Context(), c.Param("registrationID"), userID, domain.CancelOptions{Refund: req.Refund})
	if err != nil {
		respondError(c, logger, err, "Failed to cancel registration")
		return
	}
	c.JSON(http.StatusOK, dto.CancelRegistrationResponse{
		Registration:  dto.ToRegistrationResponse(&res.Registration),
		RefundAmount:  res.RefundAmount,
		TransactionID: res.TransactionID,
	})
}

// complete godoc
// @Summary Mark a registration completed
// @Tags registrations
// @Produce  json
// @Param   registrationID path string true "Registration ID"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Invalid state transition"
// @Failure 500 {object} map[string]string "Failed to complete registration"
// @Security BearerAuth
// @Router /registrations/{registrationID}/complete [post]
func (h *registrationHandler) complete(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	reg, err := h.registrationService.Complete(c.Request.Context(), c.Param("registrationID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to complete registration")
		return
	}
	c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

// setRatio godoc
// @Summary Set the cost-sharing ratio
// @Tags registrations
// @Accept  json
// @Produce  json
// @Param   registrationID path string true "Registration ID"
// @Param   ratio body dto.SetRatioRequest true "New ratio"
// @Success 200 {object} dto.RegistrationResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 500 {object} map[string]string "Failed to update ratio"
// @Security BearerAuth
// @Router /registrations/{registrationID}/ratio [put]
func (h *registrationHandler) setRatio(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var req dto.SetRatioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	reg, err := h.registrationService.SetCostSharingRatio(c.Request.Context(), c.Param("registrationID"), userID, req.Ratio)
	if err != nil {
		respondError(c, logger, err, "Failed to update ratio")
		return
	}
	c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

// pay godoc
// @Summary Pay for a registration
// @Description Debits the registrant's balance by the remaining cost
// @Tags registrations
// @Produce  json
// @Param   registrationID path string true "Registration ID"
// @Success 200 {object} dto.PayRegistrationResponse
// @Failure 403 {object} map[string]string "Not the registrant"
// @Failure 409 {object} map[string]string "Already paid"
// @Failure 422 {object} map[string]string "Insufficient funds or payment window closed"
// @Failure 500 {object} map[string]string "Failed to pay"
// @Security BearerAuth
// @Router /registrations/{registrationID}/pay [post]
func (h *registrationHandler) pay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	res, err := h.registrationService.Pay(c.Request.Context(), c.Param("registrationID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to pay")
		return
	}
	c.JSON(http.StatusOK, dto.PayRegistrationResponse{
		TransactionID: res.TransactionID,
		PaidAmount:    res.PaidAmount,
		NewBalance:    res.NewBalance,
	})
}

// refund godoc
// @Summary Refund a registration
// @Description Credits the paid amount back to the registrant
// @Tags registrations
// @Produce  json
// @Param   registrationID path string true "Registration ID"
// @Success 200 {object} dto.RefundRegistrationResponse
// @Failure 403 {object} map[string]string "Not the organizer"
// @Failure 409 {object} map[string]string "Nothing to refund"
// @Failure 500 {object} map[string]string "Failed to refund"
// @Security BearerAuth
// @Router /registrations/{registrationID}/refund [post]
func (h *registrationHandler) refund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	res, err := h.registrationService.Refund(c.Request.Context(), c.Param("registrationID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to refund")
		return
	}
	c.JSON(http.StatusOK, dto.RefundRegistrationResponse{
		TransactionID: res.TransactionID,
		RefundAmount:  res.RefundAmount,
		NewBalance:    res.NewBalance,
	})
}
