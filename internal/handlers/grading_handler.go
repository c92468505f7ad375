package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type GradingHandler struct {
	BaseHandler
	service services.GradingService
}

func NewGradingHandler(service services.GradingService, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SubmitResult records or updates a student's result for a test
// @Summary Grade test result
// @Description Upsert the single result of a student for a test. Omitted optional fields keep their previous values.
// @Tags grading
// @Accept json
// @Produce json
// @Param testId path int true "Test ID"
// @Param request body services.GradeSubmissionRequest true "Grading payload"
// @Success 200 {object} models.Test
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Admins only"
// @Failure 404 {object} ErrorResponse "Test or student not found"
// @Router /tests/{testId}/results [post]
func (h *GradingHandler) SubmitResult(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}
	grader := h.currentUser(c)
	if grader == nil {
		return
	}

	var req services.GradeSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Grading test result", "test_id", testID, "student_id", req.StudentID)

	test, err := h.service.SubmitResult(c.Request.Context(), testID, &req, grader)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}
