package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatsHandler struct {
	BaseHandler
	stats   services.StatsService
	reports services.ReportService
}

func NewStatsHandler(stats services.StatsService, reports services.ReportService, logger utils.Logger) *StatsHandler {
	return &StatsHandler{
		BaseHandler: NewBaseHandler(logger),
		stats:       stats,
		reports:     reports,
	}
}

// GetAdminStats returns platform wide statistics
// @Summary Get admin statistics
// @Description Totals, average progress, completion rate, average test score and a per-student breakdown
// @Tags stats
// @Produce json
// @Success 200 {object} models.AdminStats
// @Failure 403 {object} ErrorResponse "Admins only"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/stats [get]
func (h *StatsHandler) GetAdminStats(c *gin.Context) {
	h.LogRequest(c, "Getting admin stats")

	stats, err := h.stats.GetAdminStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserStats returns the current student's statistics
// @Summary Get user statistics
// @Tags stats
// @Produce json
// @Success 200 {object} models.UserStats
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /user/stats [get]
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	stats, err := h.stats.GetUserStats(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportStudentStats downloads the per-student breakdown as a spreadsheet
// @Summary Export student statistics
// @Tags stats
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse "Admins only"
// @Router /admin/stats/export [get]
func (h *StatsHandler) ExportStudentStats(c *gin.Context) {
	h.LogRequest(c, "Exporting student stats")

	// Buffered so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.reports.ExportStudentStats(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("student-stats-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
