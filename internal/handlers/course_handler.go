package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	service services.CourseService
}

func NewCourseHandler(service services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListCourses lists courses. Students only see active ones.
// @Summary List courses
// @Tags courses
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search in title"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 0)

	resp, err := h.service.List(c.Request.Context(), user, page, size, c.Query("q"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCourse returns a course with its modules and notes
// @Summary Get course
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{courseId} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "courseId")
	if courseID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	course, err := h.service.GetByID(c.Request.Context(), courseID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// CreateCourse creates a course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param request body services.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "title", req.Title)

	course, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// AddModule appends a module to a course
// @Summary Add module
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param request body services.CreateModuleRequest true "Module"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{courseId}/modules [post]
func (h *CourseHandler) AddModule(c *gin.Context) {
	courseID := h.parseIDParam(c, "courseId")
	if courseID == 0 {
		return
	}

	var req services.CreateModuleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Adding module", "course_id", courseID)

	course, err := h.service.AddModule(c.Request.Context(), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// DeactivateCourse soft deletes a course
// @Summary Deactivate course
// @Tags courses
// @Param courseId path int true "Course ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{courseId} [delete]
func (h *CourseHandler) DeactivateCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "courseId")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Deactivating course", "course_id", courseID)

	if err := h.service.Deactivate(c.Request.Context(), courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
