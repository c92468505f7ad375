package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegistrationLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := f.users()
	course := f.course(t, 1)

	user, err := svc.Register(f.ctx, &RegisterRequest{
		Username: "newstudent",
		Email:    "New.Student@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.False(t, user.IsApproved)
	assert.Equal(t, "new.student@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	_, err = svc.Register(f.ctx, &RegisterRequest{Username: "again", Email: "new.student@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(f.ctx, &LoginRequest{Email: "new.student@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserNotApproved)

	pending, err := svc.ListPending(f.ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, user.ID, pending[0].ID)

	approved, err := svc.Approve(f.ctx, user.ID, &ApproveUserRequest{CourseIDs: []uint{course.ID}})
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, []uint{course.ID}, []uint(approved.EnrolledCourses))

	_, err = svc.Approve(f.ctx, user.ID, &ApproveUserRequest{})
	assert.ErrorIs(t, err, ErrUserAlreadyApproved)

	_, err = svc.Login(f.ctx, &LoginRequest{Email: "new.student@example.com", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	auth, err := svc.Login(f.ctx, &LoginRequest{Email: "new.student@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)

	current, err := svc.Authenticate(f.ctx, auth.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	_, err = svc.Authenticate(f.ctx, auth.Token+"x")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Granted access is reconciled into an enrollment by a sync
	result, err := f.enrollment().SyncEnrollments(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestUserService_RegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.users().Register(f.ctx, &RegisterRequest{Username: "ab", Email: "bad", Password: "short"})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.GreaterOrEqual(t, len(verrs), 3)
}

func TestUserService_ApproveUnknownCourse(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, false)

	_, err := f.users().Approve(f.ctx, student.ID, &ApproveUserRequest{CourseIDs: []uint{9999}})
	assert.ErrorIs(t, err, ErrCourseNotFound)

	stored, err := f.repo.User().GetByID(f.ctx, student.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsApproved)
}

func TestUserService_Reject(t *testing.T) {
	f := newFixture(t)
	svc := f.users()
	pending := f.student(t, false)
	approved := f.student(t, true)

	require.NoError(t, svc.Reject(f.ctx, pending.ID))
	_, err := svc.GetByID(f.ctx, pending.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.Reject(f.ctx, approved.ID), ErrUserAlreadyApproved)
	assert.ErrorIs(t, svc.Reject(f.ctx, 9999), ErrUserNotFound)
}

func TestUserService_ProvisionExternalUser(t *testing.T) {
	f := newFixture(t)
	svc := f.users()

	student, err := svc.ProvisionExternalUser(f.ctx, "Ext@Example.com", "external", false)
	require.NoError(t, err)
	assert.False(t, student.IsApproved)

	again, err := svc.ProvisionExternalUser(f.ctx, "ext@example.com", "external", false)
	require.NoError(t, err)
	assert.Equal(t, student.ID, again.ID)

	admin, err := svc.ProvisionExternalUser(f.ctx, "ops@example.com", "", true)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsApproved)
	assert.Equal(t, "user-ops", admin.Username)
}

func TestUserService_ProvisionExternalUserInvalidatesStats(t *testing.T) {
	f, mr := newRedisFixture(t)
	stats := f.stats()

	before, err := stats.GetAdminStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, before.PendingApprovals)
	require.True(t, mr.Exists("stats:admin"))

	_, err = f.users().ProvisionExternalUser(f.ctx, "new@example.com", "external", false)
	require.NoError(t, err)
	assert.False(t, mr.Exists("stats:admin"))

	after, err := stats.GetAdminStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, after.PendingApprovals)
	assert.Equal(t, 0, after.TotalStudents)
}
