package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

func (s *testService) Create(ctx context.Context, req *CreateTestRequest) (*models.Test, error) {
	s.logger.Info("Creating test", "course_id", req.CourseID, "questions", len(req.Questions))

	if errors := s.validator.GetBusinessValidator().ValidateTestCreate(req); len(errors) > 0 {
		return nil, errors
	}

	course, err := s.repo.Course().GetByID(ctx, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !course.IsActive {
		return nil, ErrCourseInactive
	}

	test := &models.Test{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Questions:   make([]models.Question, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		test.Questions = append(test.Questions, models.Question{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}

	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	cache.InvalidateAdminStats(ctx, s.cache)

	s.logger.Info("Test created", "test_id", test.ID, "max_score", test.MaxScore)
	return test, nil
}

// GetByID returns the full test to admins. Students get the questions without
// answers and only their own result.
func (s *testService) GetByID(ctx context.Context, id uint, user *models.User) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if user.IsAdmin() {
		return test, nil
	}

	if !user.HasCourseAccess(test.CourseID) {
		if _, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, user.ID, test.CourseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewPermissionError(user.ID, id, "test", "view", "not enrolled in the test's course")
			}
			return nil, fmt.Errorf("failed to check enrollment: %w", err)
		}
	}

	for i := range test.Questions {
		test.Questions[i].CorrectAnswer = ""
	}
	own := make([]models.TestResult, 0, 1)
	if idx := test.FindResult(user.ID); idx >= 0 {
		own = append(own, test.Results[idx])
	}
	test.Results = own

	return test, nil
}
