package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type AdminHandler struct {
	BaseHandler
	users services.UserService
}

func NewAdminHandler(users services.UserService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		users:       users,
	}
}

// ListPendingUsers lists signups awaiting approval
// @Summary List pending users
// @Tags admin
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} ErrorResponse "Admins only"
// @Router /admin/users/pending [get]
func (h *AdminHandler) ListPendingUsers(c *gin.Context) {
	h.LogRequest(c, "Listing pending users")

	users, err := h.users.ListPending(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ApproveUser approves a student and grants course access
// @Summary Approve user
// @Tags admin
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param request body services.ApproveUserRequest false "Courses to grant"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Already approved"
// @Failure 404 {object} ErrorResponse "User or course not found"
// @Router /admin/users/{userId}/approve [post]
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	userID := h.parseIDParam(c, "userId")
	if userID == 0 {
		return
	}

	// The body is optional: approving without granting courses is allowed
	var req services.ApproveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Approving user", "target_user_id", userID, "course_count", len(req.CourseIDs))

	user, err := h.users.Approve(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RejectUser deletes a pending signup
// @Summary Reject user
// @Tags admin
// @Param userId path int true "User ID"
// @Success 204
// @Failure 400 {object} ErrorResponse "User already approved"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /admin/users/{userId} [delete]
func (h *AdminHandler) RejectUser(c *gin.Context) {
	userID := h.parseIDParam(c, "userId")
	if userID == 0 {
		return
	}

	h.LogRequest(c, "Rejecting user", "target_user_id", userID)

	if err := h.users.Reject(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
