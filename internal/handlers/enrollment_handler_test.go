package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
)

func TestEnrollmentHandler_SyncIsIdempotent(t *testing.T) {
	a := newAPIFixture(t)
	c1, c2 := a.course(1), a.course(1)
	student := a.user(models.RoleStudent, true, c1.ID, c2.ID)
	token := a.login(student)

	w := a.do(http.MethodPost, path("/student/sync-enrollments"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[services.SyncResult](t, w)
	assert.Equal(t, 2, first.Created)
	require.Len(t, first.Enrollments, 2)
	for _, e := range first.Enrollments {
		assert.Equal(t, 0, e.Progress)
		assert.Empty(t, e.CompletedModules)
	}

	w = a.do(http.MethodPost, path("/student/sync-enrollments"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[services.SyncResult](t, w)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, second.Enrollments, 2)
}

func TestEnrollmentHandler_AdminSync(t *testing.T) {
	a := newAPIFixture(t)
	course := a.course(1)
	student := a.user(models.RoleStudent, true, course.ID)
	adminToken := a.login(a.user(models.RoleAdmin, true))

	w := a.do(http.MethodPost, path("/admin/users/%d/sync-enrollments", student.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[services.SyncResult](t, w).Created)

	w = a.do(http.MethodPost, path("/admin/users/%d/sync-enrollments", 999999), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	studentToken := a.login(student)
	w = a.do(http.MethodPost, path("/admin/users/%d/sync-enrollments", student.ID), studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnrollmentHandler_EnrollAndListCourses(t *testing.T) {
	a := newAPIFixture(t)
	granted, open := a.course(2), a.course(3)
	student := a.user(models.RoleStudent, true, granted.ID)
	token := a.login(student)

	w := a.do(http.MethodPost, path("/courses/%d/enroll", open.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	enrollment := decode[models.Enrollment](t, w)
	assert.Equal(t, open.ID, enrollment.CourseID)

	w = a.do(http.MethodPost, path("/courses/%d/enroll", open.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, path("/courses/%d/enroll", 999999), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, path("/student/courses"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	courses := decode[[]services.CourseWithProgress](t, w)
	require.Len(t, courses, 2)

	byID := map[uint]services.CourseWithProgress{}
	for _, c := range courses {
		byID[c.ID] = c
	}
	assert.Nil(t, byID[granted.ID].Enrollment, "granted course has no enrollment until synced")
	require.NotNil(t, byID[open.ID].Enrollment)
	assert.Equal(t, 0, byID[open.ID].Enrollment.Progress)
}
