package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/events"
)

func TestGradingService_RegradeReplacesResult(t *testing.T) {
	f := newFixture(t)
	svc := f.grading()
	course := f.course(t, 1)
	test := f.test(t, course.ID, 40, 60)
	student := f.student(t, true, course.ID)
	admin := f.admin(t)

	updated, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{
		StudentID: student.ID,
		Score:     ptr(80.0),
		Grade:     "B",
		Answers:   json.RawMessage(`["a","b"]`),
	}, admin)
	require.NoError(t, err)
	require.Len(t, updated.Results, 1)
	first := updated.Results[0]
	assert.Equal(t, 80.0, first.Score)
	assert.Equal(t, 100.0, first.MaxScore, "maxScore defaults to the test's max score")

	updated, err = svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{
		StudentID: student.ID,
		Score:     ptr(95.0),
		Grade:     "A",
	}, admin)
	require.NoError(t, err)
	require.Len(t, updated.Results, 1)

	second := updated.Results[0]
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 95.0, second.Score)
	assert.Equal(t, "A", second.Grade)
	assert.JSONEq(t, `["a","b"]`, string(second.Answers), "omitted answers keep the prior value")
	assert.False(t, second.CompletedAt.Before(first.CompletedAt))

	graded := f.publisher.EventsOfType(events.TestGraded)
	require.Len(t, graded, 2)
	assert.Nil(t, graded[0].Data.(events.TestGradedEvent).PreviousScore)

	regrade := graded[1].Data.(events.TestGradedEvent)
	require.NotNil(t, regrade.PreviousScore)
	assert.Equal(t, 80.0, *regrade.PreviousScore)
	assert.Equal(t, "B", *regrade.PreviousGrade)
	assert.Equal(t, admin.ID, regrade.GradedBy)
}

func TestGradingService_ExplicitMaxScore(t *testing.T) {
	f := newFixture(t)
	course := f.course(t, 1)
	test := f.test(t, course.ID, 10)
	student := f.student(t, true)

	updated, err := f.grading().SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{
		StudentID: student.ID,
		Score:     ptr(18.0),
		MaxScore:  ptr(20.0),
		Grade:     "A",
	}, f.admin(t))
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.Results[0].MaxScore)

	// A regrade without maxScore is held to the stored one
	_, err = f.grading().SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{
		StudentID: student.ID,
		Score:     ptr(25.0),
		Grade:     "A",
	}, f.admin(t))
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "score", verrs[0].Field)

	stored, err := f.repo.Test().GetByID(f.ctx, test.ID)
	require.NoError(t, err)
	require.Len(t, stored.Results, 1)
	assert.Equal(t, 18.0, stored.Results[0].Score)
}

func TestGradingService_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.grading()
	course := f.course(t, 1)
	test := f.test(t, course.ID, 10)
	student := f.student(t, true)
	admin := f.admin(t)

	t.Run("missing score", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{StudentID: student.ID, Grade: "A"}, admin)
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "score", verrs[0].Field)
	})

	t.Run("missing grade", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{StudentID: student.ID, Score: ptr(1.0)}, admin)
		var verrs ValidationErrors
		assert.True(t, errors.As(err, &verrs))
	})

	t.Run("score above max", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{
			StudentID: student.ID, Score: ptr(11.0), MaxScore: ptr(10.0), Grade: "A",
		}, admin)
		var verrs ValidationErrors
		assert.True(t, errors.As(err, &verrs))
	})

	t.Run("score above the test max score", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{
			StudentID: student.ID, Score: ptr(15.0), Grade: "A",
		}, admin)
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "score", verrs[0].Field)
	})

	t.Run("test missing", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, 9999, &GradeSubmissionRequest{StudentID: student.ID, Score: ptr(1.0), Grade: "A"}, admin)
		assert.ErrorIs(t, err, ErrTestNotFound)
	})

	t.Run("student missing", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{StudentID: 9999, Score: ptr(1.0), Grade: "A"}, admin)
		assert.ErrorIs(t, err, ErrStudentNotFound)
	})

	t.Run("admin is not a gradable student", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{StudentID: admin.ID, Score: ptr(1.0), Grade: "A"}, admin)
		assert.ErrorIs(t, err, ErrStudentNotFound)
	})

	t.Run("students cannot grade", func(t *testing.T) {
		_, err := svc.SubmitResult(f.ctx, test.ID, &GradeSubmissionRequest{StudentID: student.ID, Score: ptr(10.0), Grade: "A"}, student)
		var perr *PermissionError
		require.True(t, errors.As(err, &perr))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	results, err := f.repo.Test().GetByID(f.ctx, test.ID)
	require.NoError(t, err)
	assert.Empty(t, results.Results)
}
