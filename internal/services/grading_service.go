package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type gradingService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGradingService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) GradingService {
	return &gradingService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// SubmitResult creates or replaces the result of one student on one test.
// A re-grade overwrites score, grade and completedAt in place; omitted optional
// fields keep their previous values.
func (s *gradingService) SubmitResult(ctx context.Context, testID uint, req *GradeSubmissionRequest, grader *models.User) (*models.Test, error) {
	s.logger.Info("Submitting test result",
		"test_id", testID,
		"student_id", req.StudentID,
		"grader_id", grader.ID)

	if !grader.IsAdmin() {
		return nil, NewPermissionError(grader.ID, testID, "test", "grade", "only admins can grade tests")
	}

	if errors := s.validator.GetBusinessValidator().ValidateGradeSubmission(req); len(errors) > 0 {
		return nil, errors
	}

	var (
		updated  *models.Test
		graded   models.TestResult
		previous *models.TestResult
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		test, err := tx.Test().GetByID(ctx, testID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTestNotFound
			}
			return fmt.Errorf("failed to get test: %w", err)
		}

		student, err := tx.User().GetByID(ctx, req.StudentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to get student: %w", err)
		}
		if student.Role != models.RoleStudent {
			return ErrStudentNotFound
		}

		var result models.TestResult
		if idx := test.FindResult(student.ID); idx >= 0 {
			prior := test.Results[idx]
			previous = &prior
			result = prior
		} else {
			result = models.TestResult{
				TestID:    test.ID,
				StudentID: student.ID,
				MaxScore:  float64(test.MaxScore),
			}
		}
		mergeSubmission(&result, req, time.Now())
		// maxScore may come from the test or a prior result rather than the request
		if result.Score > result.MaxScore {
			return ValidationErrors{{
				Field:   "score",
				Message: fmt.Sprintf("score cannot exceed maxScore %g", result.MaxScore),
				Value:   result.Score,
				Rule:    "business_logic",
			}}
		}

		if err := tx.Test().SaveResult(ctx, &result); err != nil {
			if repositories.IsDuplicateError(err) {
				return fmt.Errorf("%w: result was graded concurrently", ErrConflict)
			}
			return fmt.Errorf("failed to save test result: %w", err)
		}
		graded = result

		updated, err = tx.Test().GetByID(ctx, testID)
		if err != nil {
			return fmt.Errorf("failed to reload test: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateStatsCache(ctx, s.cache, graded.StudentID)

	payload := events.TestGradedEvent{
		TestID:    testID,
		StudentID: graded.StudentID,
		GradedBy:  grader.ID,
		Score:     graded.Score,
		MaxScore:  graded.MaxScore,
		Grade:     graded.Grade,
	}
	if previous != nil {
		payload.PreviousScore = &previous.Score
		payload.PreviousGrade = &previous.Grade
	}
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.TestGraded, payload))

	s.logger.Info("Test result saved",
		"test_id", testID,
		"student_id", graded.StudentID,
		"score", graded.Score,
		"max_score", graded.MaxScore,
		"regraded", previous != nil)

	return updated, nil
}

// mergeSubmission applies a grading request onto a result. Required fields always
// overwrite, optional ones only when present.
func mergeSubmission(result *models.TestResult, req *GradeSubmissionRequest, now time.Time) {
	result.Score = *req.Score
	result.Grade = req.Grade
	if req.MaxScore != nil {
		result.MaxScore = *req.MaxScore
	}
	if len(req.Answers) > 0 && string(req.Answers) != "null" {
		result.Answers = datatypes.JSON(req.Answers)
	}
	result.CompletedAt = now
}
