package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type TestHandler struct {
	BaseHandler
	service services.TestService
}

func NewTestHandler(service services.TestService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateTest creates a test for an active course
// @Summary Create test
// @Tags tests
// @Accept json
// @Produce json
// @Param request body services.CreateTestRequest true "Test"
// @Success 201 {object} models.Test
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating test", "course_id", req.CourseID)

	test, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest returns a test. Students get no answer keys and only their own result.
// @Summary Get test
// @Tags tests
// @Produce json
// @Param testId path int true "Test ID"
// @Success 200 {object} models.Test
// @Failure 403 {object} ErrorResponse "No access to the course"
// @Failure 404 {object} ErrorResponse "Test not found"
// @Router /tests/{testId} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	test, err := h.service.GetByID(c.Request.Context(), testID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}
