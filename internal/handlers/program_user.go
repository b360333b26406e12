package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qsights/program-admin-api/internal/dto"
	apierrors "github.com/qsights/program-admin-api/internal/errors"
	"github.com/qsights/program-admin-api/internal/middleware"
	"github.com/qsights/program-admin-api/internal/services"
)

// ProgramUserHandler manages the auto-generated users of a program.
type ProgramUserHandler struct {
	programService *services.ProgramService
}

// NewProgramUserHandler creates a new ProgramUserHandler.
func NewProgramUserHandler(programService *services.ProgramService) *ProgramUserHandler {
	return &ProgramUserHandler{
		programService: programService,
	}
}

// ListUsers lists the program-scoped users of a program.
func (h *ProgramUserHandler) ListUsers(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	users, err := h.programService.ListProgramUsers(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToUserDTOs(users)})
}

type updateProgramUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
}

// UpdateUser updates a program user's profile or password.
func (h *ProgramUserHandler) UpdateUser(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	var req updateProgramUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.programService.UpdateProgramUser(actor, c.Param("id"), c.Param("userId"), services.UpdateProgramUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"data":    dto.ToUserDTO(*user),
	})
}

// DeleteUser removes a program user. Users cannot delete themselves.
func (h *ProgramUserHandler) DeleteUser(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.programService.DeleteProgramUser(actor, c.Param("id"), c.Param("userId")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// ResetPassword issues a fresh generated password for a program user.
// The password appears in this response only.
func (h *ProgramUserHandler) ResetPassword(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	credentials, err := h.programService.ResetProgramUserPassword(actor, c.Param("id"), c.Param("userId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully",
		"data":    credentials,
		"note":    "Please save this password. It will not be shown again.",
	})
}
