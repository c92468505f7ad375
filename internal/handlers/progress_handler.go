package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	service services.ProgressService
}

func NewProgressHandler(service services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CompleteModule marks a module as completed for the current user
// @Summary Complete module
// @Description Record the module in the completion log and recompute course progress
// @Tags progress
// @Produce json
// @Param courseId path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Success 200 {object} services.ProgressResponse
// @Failure 400 {object} ErrorResponse "Already completed"
// @Failure 403 {object} ErrorResponse "Not enrolled"
// @Failure 404 {object} ErrorResponse "Course or module not found"
// @Router /courses/{courseId}/modules/{moduleId}/complete [post]
func (h *ProgressHandler) CompleteModule(c *gin.Context) {
	h.toggle(c, "Completing module", h.service.CompleteModule)
}

// UncompleteModule removes a module completion for the current user
// @Summary Uncomplete module
// @Description Remove the module from the completion log and recompute course progress
// @Tags progress
// @Produce json
// @Param courseId path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Success 200 {object} services.ProgressResponse
// @Failure 403 {object} ErrorResponse "Not enrolled"
// @Failure 404 {object} ErrorResponse "Course or module not found"
// @Router /courses/{courseId}/modules/{moduleId}/complete [delete]
func (h *ProgressHandler) UncompleteModule(c *gin.Context) {
	h.toggle(c, "Uncompleting module", h.service.UncompleteModule)
}

type toggleFunc func(ctx context.Context, courseID, moduleID uint, user *models.User) (*services.ProgressResponse, error)

func (h *ProgressHandler) toggle(c *gin.Context, msg string, fn toggleFunc) {
	courseID := h.parseIDParam(c, "courseId")
	if courseID == 0 {
		return
	}
	moduleID := h.parseIDParam(c, "moduleId")
	if moduleID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, msg, "course_id", courseID, "module_id", moduleID)

	resp, err := fn(c.Request.Context(), courseID, moduleID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetModuleCompletion reports whether the current user completed a module
// @Summary Get module completion
// @Tags progress
// @Produce json
// @Param courseId path int true "Course ID"
// @Param moduleId path int true "Module ID"
// @Success 200 {object} services.ModuleCompletionStatus
// @Failure 404 {object} ErrorResponse "Course or module not found"
// @Router /courses/{courseId}/modules/{moduleId}/completion [get]
func (h *ProgressHandler) GetModuleCompletion(c *gin.Context) {
	courseID := h.parseIDParam(c, "courseId")
	if courseID == 0 {
		return
	}
	moduleID := h.parseIDParam(c, "moduleId")
	if moduleID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	status, err := h.service.GetModuleCompletion(c.Request.Context(), courseID, moduleID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
