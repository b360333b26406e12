package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/qsights/program-admin-api/internal/errors"
	"github.com/qsights/program-admin-api/internal/models"
	"github.com/qsights/program-admin-api/internal/repository"
	"github.com/qsights/program-admin-api/internal/services"
	"github.com/qsights/program-admin-api/internal/utils"
)

// ProgramHandler coordinates program HTTP handlers.
type ProgramHandler struct {
	programService *services.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService *services.ProgramService) *ProgramHandler {
	return &ProgramHandler{
		programService: programService,
	}
}

// parseDate accepts date-only and RFC3339 timestamps.
func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// ListPrograms lists programs, running the expiry sweep first.
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.ProgramFilter{
		Search:      c.Query("search"),
		WithTrashed: c.Query("with_trashed") == "true" || c.Query("with_trashed") == "1",
		Page:        params.Page,
		PerPage:     params.PerPage,
	}
	if v := c.Query("organization_id"); v != "" {
		filter.OrganizationID = &v
	}
	if v := c.Query("group_head_id"); v != "" {
		filter.GroupHeadID = &v
	}
	if v := c.Query("status"); v != "" {
		status := models.ProgramStatus(v)
		filter.Status = &status
	}
	if v := c.Query("start_date"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			apierrors.BadRequest(c, "Invalid start_date")
			return
		}
		filter.StartDateFrom = t
	}
	if v := c.Query("end_date"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			apierrors.BadRequest(c, "Invalid end_date")
			return
		}
		filter.EndDateTo = t
	}

	programs, total, err := h.programService.ListPrograms(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": programs,
		"pagination": utils.PaginationResponse{
			Page:    params.Page,
			PerPage: params.PerPage,
			Total:   total,
		},
	})
}

type createProgramRequest struct {
	OrganizationID string   `json:"organization_id" binding:"required"`
	GroupHeadID    *string  `json:"group_head_id"`
	Name           string   `json:"name" binding:"required,max=255"`
	Code           string   `json:"code" binding:"required,max=50"`
	Description    string   `json:"description"`
	Logo           string   `json:"logo" binding:"max=500"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	IsMultilingual bool     `json:"is_multilingual"`
	Languages      []string `json:"languages"`
	Status         *string  `json:"status" binding:"omitempty,oneof=active inactive"`

	GenerateAdmin     *bool `json:"generate_admin"`
	GenerateManager   *bool `json:"generate_manager"`
	GenerateModerator *bool `json:"generate_moderator"`
}

// CreateProgram creates a program and optionally auto-generates its users.
// Generated credentials appear in this response only.
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	startDate, ok := parseDate(req.StartDate)
	if !ok {
		apierrors.BadRequest(c, "Invalid start_date")
		return
	}
	endDate, ok := parseDate(req.EndDate)
	if !ok {
		apierrors.BadRequest(c, "Invalid end_date")
		return
	}

	input := services.CreateProgramInput{
		OrganizationID:    req.OrganizationID,
		GroupHeadID:       req.GroupHeadID,
		Name:              req.Name,
		Code:              req.Code,
		Description:       req.Description,
		Logo:              req.Logo,
		StartDate:         startDate,
		EndDate:           endDate,
		IsMultilingual:    req.IsMultilingual,
		Languages:         req.Languages,
		GenerateAdmin:     req.GenerateAdmin,
		GenerateManager:   req.GenerateManager,
		GenerateModerator: req.GenerateModerator,
	}
	if req.Status != nil {
		status := models.ProgramStatus(*req.Status)
		input.Status = &status
	}

	program, generated, err := h.programService.CreateProgram(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Program created successfully",
		"data":            program,
		"generated_users": generated,
		"note":            "Please save all user credentials. Passwords will not be shown again.",
	})
}

// GetProgram returns program details, applying the lazy expiry transition.
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	program, err := h.programService.GetProgram(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": program})
}

type updateProgramRequest struct {
	OrganizationID *string  `json:"organization_id"`
	GroupHeadID    *string  `json:"group_head_id"`
	Name           *string  `json:"name" binding:"omitempty,max=255"`
	Code           *string  `json:"code" binding:"omitempty,max=50"`
	Description    *string  `json:"description"`
	Logo           *string  `json:"logo" binding:"omitempty,max=500"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	IsMultilingual *bool    `json:"is_multilingual"`
	Languages      []string `json:"languages"`
	Status         *string  `json:"status" binding:"omitempty,oneof=active inactive expired"`
}

// UpdateProgram applies a partial update.
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	var req updateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProgramInput{
		OrganizationID: req.OrganizationID,
		GroupHeadID:    req.GroupHeadID,
		Name:           req.Name,
		Code:           req.Code,
		Description:    req.Description,
		Logo:           req.Logo,
		IsMultilingual: req.IsMultilingual,
		Languages:      req.Languages,
	}
	if req.StartDate != nil {
		t, ok := parseDate(*req.StartDate)
		if !ok {
			apierrors.BadRequest(c, "Invalid start_date")
			return
		}
		input.StartDate = t
	}
	if req.EndDate != nil {
		t, ok := parseDate(*req.EndDate)
		if !ok {
			apierrors.BadRequest(c, "Invalid end_date")
			return
		}
		input.EndDate = t
	}
	if req.Status != nil {
		status := models.ProgramStatus(*req.Status)
		input.Status = &status
	}

	program, err := h.programService.UpdateProgram(c.Param("id"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Program updated successfully",
		"data":    program,
	})
}

// DeleteProgram soft deletes a program.
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	if err := h.programService.DeleteProgram(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Program deleted successfully"})
}

// ActivateProgram activates a program unless it has expired.
func (h *ProgramHandler) ActivateProgram(c *gin.Context) {
	program, err := h.programService.ActivateProgram(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Program activated successfully",
		"data":    program,
	})
}

// DeactivateProgram deactivates a program.
func (h *ProgramHandler) DeactivateProgram(c *gin.Context) {
	program, err := h.programService.DeactivateProgram(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Program deactivated successfully",
		"data":    program,
	})
}

// RestoreProgram restores a soft-deleted program and its users.
func (h *ProgramHandler) RestoreProgram(c *gin.Context) {
	program, err := h.programService.RestoreProgram(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Program restored successfully",
		"data":    program,
	})
}

// ForceDeleteProgram permanently deletes a program and its users.
func (h *ProgramHandler) ForceDeleteProgram(c *gin.Context) {
	if err := h.programService.ForceDeleteProgram(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Program permanently deleted"})
}

// GetStatistics returns program statistics.
func (h *ProgramHandler) GetStatistics(c *gin.Context) {
	program, stats, err := h.programService.GetStatistics(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       program,
		"statistics": stats,
	})
}
