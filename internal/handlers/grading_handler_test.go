package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

func TestGradingHandler_SubmitAndRegrade(t *testing.T) {
	a := newAPIFixture(t)
	course := a.course(1)
	test := a.test(course.ID, 40, 60)
	student := a.user(models.RoleStudent, true, course.ID)
	adminToken := a.login(a.user(models.RoleAdmin, true))

	w := a.do(http.MethodPost, path("/tests/%d/results", test.ID), adminToken, map[string]interface{}{
		"studentId": student.ID,
		"score":     80,
		"grade":     "B",
		"answers":   map[string]string{"1": "yes"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	graded := decode[models.Test](t, w)
	require.Len(t, graded.Results, 1)
	first := graded.Results[0]
	assert.Equal(t, 80.0, first.Score)
	assert.Equal(t, 100.0, first.MaxScore)
	assert.Equal(t, "B", first.Grade)

	w = a.do(http.MethodPost, path("/tests/%d/results", test.ID), adminToken, map[string]interface{}{
		"studentId": student.ID,
		"score":     95,
		"grade":     "A",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	regraded := decode[models.Test](t, w)
	require.Len(t, regraded.Results, 1)
	assert.Equal(t, first.ID, regraded.Results[0].ID)
	assert.Equal(t, 95.0, regraded.Results[0].Score)
	assert.Equal(t, "A", regraded.Results[0].Grade)
	assert.JSONEq(t, `{"1":"yes"}`, string(regraded.Results[0].Answers))
}

func TestGradingHandler_Errors(t *testing.T) {
	a := newAPIFixture(t)
	course := a.course(1)
	test := a.test(course.ID, 10)
	student := a.user(models.RoleStudent, true, course.ID)
	adminToken := a.login(a.user(models.RoleAdmin, true))
	studentToken := a.login(student)

	t.Run("missing grade", func(t *testing.T) {
		w := a.do(http.MethodPost, path("/tests/%d/results", test.ID), adminToken, map[string]interface{}{
			"studentId": student.ID,
			"score":     5,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[ErrorResponse](t, w)
		assert.Equal(t, "Validation failed", body.Message)
		assert.Contains(t, w.Body.String(), "grade")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := a.do(http.MethodPost, path("/tests/%d/results", test.ID), adminToken, "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request payload", decode[ErrorResponse](t, w).Message)
	})

	t.Run("unknown test", func(t *testing.T) {
		w := a.do(http.MethodPost, path("/tests/%d/results", 999999), adminToken, map[string]interface{}{
			"studentId": student.ID, "score": 5, "grade": "C",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown student", func(t *testing.T) {
		w := a.do(http.MethodPost, path("/tests/%d/results", test.ID), adminToken, map[string]interface{}{
			"studentId": 999999, "score": 5, "grade": "C",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("students cannot grade", func(t *testing.T) {
		w := a.do(http.MethodPost, path("/tests/%d/results", test.ID), studentToken, map[string]interface{}{
			"studentId": student.ID, "score": 5, "grade": "C",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
