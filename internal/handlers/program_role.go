package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/qsights/program-admin-api/internal/errors"
	"github.com/qsights/program-admin-api/internal/middleware"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/services"
)

// ProgramRoleHandler manages the roles defined within a program.
type ProgramRoleHandler struct {
	roleService *services.ProgramRoleService
}

// NewProgramRoleHandler creates a new ProgramRoleHandler.
func NewProgramRoleHandler(roleService *services.ProgramRoleService) *ProgramRoleHandler {
	return &ProgramRoleHandler{
		roleService: roleService,
	}
}

// ListRoles lists the roles of a program.
func (h *ProgramRoleHandler) ListRoles(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	listing, err := h.roleService.ListRoles(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  listing.Roles,
		"total": listing.Total,
		"program": gin.H{
			"id":   listing.Program.ID,
			"name": listing.Program.Name,
		},
	})
}

// GetRole returns a single role with its events.
func (h *ProgramRoleHandler) GetRole(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	role, err := h.roleService.GetRole(actor, c.Param("id"), c.Param("roleId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": role})
}

type createRoleRequest struct {
	RoleName    string   `json:"role_name" binding:"required,max=255"`
	Username    string   `json:"username" binding:"required,max=255"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required"`
	Description string   `json:"description"`
	ServiceIDs  []string `json:"serviceIds"`
	EventIDs    []string `json:"eventIds"`
}

// CreateRole creates a role within a program.
func (h *ProgramRoleHandler) CreateRole(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	role, err := h.roleService.CreateRole(actor, c.Param("id"), services.CreateRoleInput{
		RoleName:    req.RoleName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
		ServiceIDs:  req.ServiceIDs,
		EventIDs:    req.EventIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Role created successfully",
		"data":    role,
	})
}

type updateRoleRequest struct {
	RoleName    *string   `json:"role_name" binding:"omitempty,max=255"`
	Username    *string   `json:"username" binding:"omitempty,max=255"`
	Email       *string   `json:"email" binding:"omitempty,email"`
	Password    *string   `json:"password"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" binding:"omitempty,oneof=active inactive"`
	ServiceIDs  *[]string `json:"serviceIds"`
	EventIDs    *[]string `json:"eventIds"`
}

// UpdateRole applies a partial update to a role.
func (h *ProgramRoleHandler) UpdateRole(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateRoleInput{
		RoleName:    req.RoleName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
		ServiceIDs:  req.ServiceIDs,
		EventIDs:    req.EventIDs,
	}
	if req.Status != nil {
		status := models.ProgramRoleStatus(*req.Status)
		input.Status = &status
	}

	role, err := h.roleService.UpdateRole(actor, c.Param("id"), c.Param("roleId"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Role updated successfully",
		"data":    role,
	})
}

// DeleteRole soft deletes a role.
func (h *ProgramRoleHandler) DeleteRole(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.roleService.DeleteRole(actor, c.Param("id"), c.Param("roleId")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
}

// RestoreRole restores a soft-deleted role after re-validating uniqueness.
func (h *ProgramRoleHandler) RestoreRole(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	role, err := h.roleService.RestoreRole(actor, c.Param("id"), c.Param("roleId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Role restored successfully",
		"data":    role,
	})
}

// ListAvailableActivities returns the service catalog and the program's
// activities available for role assignment.
func (h *ProgramRoleHandler) ListAvailableActivities(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}

	available, err := h.roleService.ListAvailableActivities(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": available})
}
