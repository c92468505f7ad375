package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	service services.EnrollmentService
}

func NewEnrollmentHandler(service services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// SyncMyEnrollments creates missing enrollment rows for the current student
// @Summary Sync enrollments
// @Description Create an enrollment (progress 0) for every granted course that has none. Never deletes.
// @Tags students
// @Produce json
// @Success 200 {object} services.SyncResult
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /student/sync-enrollments [post]
func (h *EnrollmentHandler) SyncMyEnrollments(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, "Syncing enrollments")

	result, err := h.service.SyncEnrollments(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMyCourses returns every course the current student can access with its progress
// @Summary List my courses
// @Tags students
// @Produce json
// @Success 200 {array} services.CourseWithProgress
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /student/courses [get]
func (h *EnrollmentHandler) ListMyCourses(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	courses, err := h.service.ListMyCourses(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// Enroll enrolls the current student in an active course
// @Summary Enroll in course
// @Tags students
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse "Already enrolled or course inactive"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{courseId}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID := h.parseIDParam(c, "courseId")
	if courseID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, "Enrolling in course", "course_id", courseID)

	enrollment, err := h.service.Enroll(c.Request.Context(), courseID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// ===== ADMIN ENDPOINTS =====

// SyncStudentEnrollments runs the enrollment sync on behalf of a student
// @Summary Sync a student's enrollments
// @Tags admin
// @Produce json
// @Param userId path int true "Student ID"
// @Success 200 {object} services.SyncResult
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /admin/users/{userId}/sync-enrollments [post]
func (h *EnrollmentHandler) SyncStudentEnrollments(c *gin.Context) {
	studentID := h.parseIDParam(c, "userId")
	if studentID == 0 {
		return
	}

	h.LogRequest(c, "Syncing student enrollments", "student_id", studentID)

	result, err := h.service.SyncEnrollments(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
