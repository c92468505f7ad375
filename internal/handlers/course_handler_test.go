package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
)

func TestCourseHandler_Lifecycle(t *testing.T) {
	a := newAPIFixture(t)
	adminToken := a.login(a.user(models.RoleAdmin, true))
	studentToken := a.login(a.user(models.RoleStudent, true))

	w := a.do(http.MethodPost, path("/courses"), adminToken, map[string]interface{}{
		"title":       "  Go Basics ",
		"description": "Intro",
		"modules": []map[string]interface{}{
			{"title": "Types", "youtubeUrl": "https://www.youtube.com/watch?v=types01", "duration": 20},
		},
		"notes": []map[string]interface{}{
			{"title": "Slides", "pdfUrl": "https://cdn.example.com/slides.pdf"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	course := decode[models.Course](t, w)
	assert.Equal(t, "Go Basics", course.Title)
	assert.Equal(t, 20, course.Duration)
	assert.True(t, course.IsActive)

	w = a.do(http.MethodPost, path("/courses/%d/modules", course.ID), adminToken, map[string]interface{}{
		"title": "Interfaces", "youtubeUrl": "https://youtu.be/iface02", "duration": 25,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	updated := decode[models.Course](t, w)
	assert.Len(t, updated.Modules, 2)
	assert.Equal(t, 45, updated.Duration)

	w = a.do(http.MethodPost, path("/courses/%d/modules", course.ID), adminToken, map[string]interface{}{
		"title": "Broken", "youtubeUrl": "https://vimeo.com/123", "duration": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, path("/courses"), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[services.CourseListResponse](t, w).Total)

	w = a.do(http.MethodPost, path("/courses"), studentToken, map[string]interface{}{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodDelete, path("/courses/%d", course.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, path("/courses/%d", course.ID), studentToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, path("/courses/%d", course.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.Course](t, w).IsActive)
}

func TestTestHandler_CreateAndView(t *testing.T) {
	a := newAPIFixture(t)
	course := a.course(1)
	adminToken := a.login(a.user(models.RoleAdmin, true))
	student := a.user(models.RoleStudent, true, course.ID)
	studentToken := a.login(student)
	outsiderToken := a.login(a.user(models.RoleStudent, true))

	w := a.do(http.MethodPost, path("/tests"), adminToken, map[string]interface{}{
		"courseId": course.ID,
		"title":    "Final",
		"questions": []map[string]interface{}{
			{"text": "2+2?", "options": []string{"3", "4"}, "correctAnswer": "4", "points": 30},
			{"text": "Go?", "options": []string{"yes", "no"}, "correctAnswer": "yes", "points": 20},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Test](t, w)
	assert.Equal(t, 50, created.MaxScore)

	w = a.do(http.MethodGet, path("/tests/%d", created.ID), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[models.Test](t, w)
	for _, q := range view.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}

	w = a.do(http.MethodGet, path("/tests/%d", created.ID), outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, path("/tests/%d", 999999), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
