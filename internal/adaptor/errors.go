package adaptor

import (
	"errors"
	"net/http"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/internal/usecase"
	"hyperlocal-marketplace/pkg/utils"

	"go.uber.org/zap"
)

// principalFromContext rebuilds the authenticated caller from the values
// the auth middleware stored.
func principalFromContext(r *http.Request) (usecase.Principal, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Principal{}, false
	}

	role, ok := utils.GetRoleFromContext(r.Context())
	if !ok || !entity.ValidRole(role) {
		return usecase.Principal{}, false
	}

	return usecase.Principal{
		UserID: userID,
		Role:   entity.UserRole(role),
	}, true
}

// handleServiceError maps the service error taxonomy onto HTTP status
// codes. Matching is on sentinel identity, not message text, so wrapping
// errors with context never changes the mapped code. Ordering matters for
// callers that compose checks: not found is resolved before forbidden, so
// a missing resource never leaks its existence through a 403.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidTransition):
		log.Warn(operation+" failed - invalid transition", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrPaymentDeclined):
		log.Warn(operation+" failed - payment declined", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrPaymentGateway):
		log.Error(operation+" failed - payment gateway", zap.Error(err))
		utils.ResponseBadGateway(w, "Payment service unavailable")

	default:
		// Internal details stay in the log.
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
