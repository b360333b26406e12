package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/qsights/program-admin-api/internal/authz"
	apierrors "github.com/qsights/program-admin-api/internal/errors"
	"github.com/qsights/program-admin-api/internal/services"
)

// respondServiceError translates service and authorization errors into the
// API error taxonomy. Unexpected errors become a generic 500 with no
// internals exposed.
func respondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		apierrors.ValidationFailed(c, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, authz.ErrUnauthorized):
		apierrors.Forbidden(c, "Unauthorized. You can only manage users in your program.")
	case errors.Is(err, authz.ErrSelfDeletion):
		apierrors.Forbidden(c, "You cannot delete your own account.")
	case errors.Is(err, services.ErrProgramNotFound),
		errors.Is(err, services.ErrRoleNotFound),
		errors.Is(err, services.ErrProgramUserNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProgramExpired):
		apierrors.InvalidState(c, "Cannot activate expired program")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
