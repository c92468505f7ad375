package handlers

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

func TestStatsHandler_AdminAndUserStats(t *testing.T) {
	a := newAPIFixture(t)
	course := a.course(2)
	test := a.test(course.ID, 50, 50)
	student := a.user(models.RoleStudent, true, course.ID)
	a.enroll(student.ID, course.ID)
	a.user(models.RoleStudent, false)

	adminToken := a.login(a.user(models.RoleAdmin, true))
	studentToken := a.login(student)

	w := a.do(http.MethodPost, path("/courses/%d/modules/%d/complete", course.ID, course.Modules[0].ID), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(http.MethodPost, path("/tests/%d/results", test.ID), adminToken, map[string]interface{}{
		"studentId": student.ID, "score": 75, "grade": "B",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, path("/admin/stats"), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[models.AdminStats](t, w)
	assert.Equal(t, 1, stats.TotalStudents)
	assert.Equal(t, 1, stats.PendingApprovals)
	assert.Equal(t, 1, stats.TotalEnrollments)
	assert.Equal(t, 50.0, stats.OverallProgressAverage)
	assert.Equal(t, 0.0, stats.CompletionRate)
	assert.Equal(t, 75.0, stats.AverageScore)
	require.Len(t, stats.Students, 1)
	assert.Equal(t, 1, stats.Students[0].TestsCompleted)

	w = a.do(http.MethodGet, path("/admin/stats"), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, path("/user/stats"), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	userStats := decode[models.UserStats](t, w)
	assert.Equal(t, student.ID, userStats.StudentID)
	assert.Equal(t, 1, userStats.EnrolledCourses)
	assert.Equal(t, 50.0, userStats.AverageProgress)
	assert.Equal(t, 75.0, userStats.AverageScore)
}

func TestStatsHandler_Export(t *testing.T) {
	a := newAPIFixture(t)
	course := a.course(1)
	student := a.user(models.RoleStudent, true, course.ID)
	a.enroll(student.ID, course.ID)
	adminToken := a.login(a.user(models.RoleAdmin, true))

	w := a.do(http.MethodGet, path("/admin/stats/export"), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], student.Email)
}

func TestHealthCheck(t *testing.T) {
	a := newAPIFixture(t)

	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
