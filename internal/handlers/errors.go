package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorStatuses maps domain errors to HTTP statuses, checked in order.
var errorStatuses = []struct {
	err    error
	status int
}{
	{apperrors.ErrValidation, http.StatusBadRequest},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrRegistrationNotFound, http.StatusNotFound},
	{apperrors.ErrAlreadyRegistered, http.StatusConflict},
	{apperrors.ErrActivityFull, http.StatusConflict},
	{apperrors.ErrAlreadyProcessed, http.StatusConflict},
	{apperrors.ErrInvalidStateTransition, http.StatusConflict},
	{apperrors.ErrAlreadyPushed, http.StatusConflict},
	{apperrors.ErrCostConfigLocked, http.StatusConflict},
	{apperrors.ErrDuplicate, http.StatusConflict},
	{apperrors.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{apperrors.ErrActivityNotAcceptingRegistrations, http.StatusUnprocessableEntity},
}

// statusFor returns the HTTP status for err. Anything unmapped, including
// ErrReconciliationMismatch, is a 500.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Internal errors are logged and
// replaced by fallback so storage details never reach the client.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// requireUser reads the authenticated user ID or aborts with 401.
func requireUser(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
