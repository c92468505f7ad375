package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type progressService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewProgressService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger) ProgressService {
	return &progressService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
	}
}

// toggleOutcome carries what happened inside the transaction to the post-commit side effects
type toggleOutcome struct {
	response        *ProgressResponse
	enrolled        bool
	courseCompleted bool
}

func (s *progressService) CompleteModule(ctx context.Context, courseID, moduleID uint, user *models.User) (*ProgressResponse, error) {
	s.logger.Info("Completing module", "course_id", courseID, "module_id", moduleID, "user_id", user.ID)

	var out toggleOutcome
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err := s.loadCourseModule(ctx, tx, courseID, moduleID)
		if err != nil {
			return err
		}

		enrollment, err := s.lockEnrollment(ctx, tx, courseID, user)
		if err != nil {
			return err
		}

		if _, err := tx.Completion().Get(ctx, moduleID, user.ID); err == nil {
			return ErrAlreadyCompleted
		} else if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check module completion: %w", err)
		}

		now := time.Now()
		completion := &models.ModuleCompletion{ModuleID: moduleID, UserID: user.ID, CompletedAt: now}
		if err := tx.Completion().Create(ctx, completion); err != nil {
			// A concurrent request won the unique index
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyCompleted
			}
			return fmt.Errorf("failed to record module completion: %w", err)
		}

		if enrollment == nil {
			out.response, err = s.completionOnlyResponse(ctx, tx, course, moduleID, user.ID)
			return err
		}

		wasCompleted := enrollment.IsCompleted
		enrollment.MarkModule(moduleID)
		enrollment.Recalculate(course.ModuleIDs(), now)
		if err := tx.Enrollment().Update(ctx, enrollment); err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}

		out.enrolled = true
		out.courseCompleted = !wasCompleted && enrollment.IsCompleted
		out.response = newProgressResponse(courseID, moduleID, enrollment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterToggle(ctx, events.ModuleCompleted, user.ID, out)

	s.logger.Info("Module completed",
		"course_id", courseID,
		"module_id", moduleID,
		"user_id", user.ID,
		"progress", out.response.Progress,
		"is_completed", out.response.IsCompleted)

	return out.response, nil
}

func (s *progressService) UncompleteModule(ctx context.Context, courseID, moduleID uint, user *models.User) (*ProgressResponse, error) {
	s.logger.Info("Uncompleting module", "course_id", courseID, "module_id", moduleID, "user_id", user.ID)

	var out toggleOutcome
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course, err := s.loadCourseModule(ctx, tx, courseID, moduleID)
		if err != nil {
			return err
		}

		enrollment, err := s.lockEnrollment(ctx, tx, courseID, user)
		if err != nil {
			return err
		}

		// Removing a missing audit entry is a no-op
		if _, err := tx.Completion().Delete(ctx, moduleID, user.ID); err != nil {
			return fmt.Errorf("failed to remove module completion: %w", err)
		}

		if enrollment == nil {
			out.response, err = s.completionOnlyResponse(ctx, tx, course, moduleID, user.ID)
			return err
		}

		enrollment.UnmarkModule(moduleID)
		enrollment.Recalculate(course.ModuleIDs(), time.Now())
		if err := tx.Enrollment().Update(ctx, enrollment); err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}

		out.enrolled = true
		out.response = newProgressResponse(courseID, moduleID, enrollment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterToggle(ctx, events.ModuleUncompleted, user.ID, out)

	s.logger.Info("Module uncompleted",
		"course_id", courseID,
		"module_id", moduleID,
		"user_id", user.ID,
		"progress", out.response.Progress)

	return out.response, nil
}

func (s *progressService) GetModuleCompletion(ctx context.Context, courseID, moduleID uint, user *models.User) (*ModuleCompletionStatus, error) {
	if _, err := s.loadCourseModule(ctx, s.repo, courseID, moduleID); err != nil {
		return nil, err
	}

	status := &ModuleCompletionStatus{CourseID: courseID, ModuleID: moduleID}

	completion, err := s.repo.Completion().Get(ctx, moduleID, user.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return status, nil
		}
		return nil, fmt.Errorf("failed to get module completion: %w", err)
	}

	completedAt := completion.CompletedAt
	status.Completed = true
	status.CompletedAt = &completedAt
	return status, nil
}

// ===== HELPERS =====

func (s *progressService) loadCourseModule(ctx context.Context, repo repositories.Repository, courseID, moduleID uint) (*models.Course, error) {
	course, err := repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if course.FindModule(moduleID) == nil {
		return nil, ErrModuleNotFound
	}

	return course, nil
}

// lockEnrollment returns the caller's enrollment locked for update.
// Admins without an enrollment get nil, everyone else gets ErrNotEnrolled.
func (s *progressService) lockEnrollment(ctx context.Context, tx repositories.Repository, courseID uint, user *models.User) (*models.Enrollment, error) {
	enrollment, err := tx.Enrollment().GetForUpdate(ctx, user.ID, courseID)
	if err == nil {
		return enrollment, nil
	}

	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if user.IsAdmin() {
		return nil, nil
	}

	return nil, ErrNotEnrolled
}

// completionOnlyResponse derives progress from the audit log for callers without an enrollment
func (s *progressService) completionOnlyResponse(ctx context.Context, tx repositories.Repository, course *models.Course, moduleID, userID uint) (*ProgressResponse, error) {
	moduleIDs := course.ModuleIDs()
	completions, err := tx.Completion().ListByUser(ctx, userID, moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list module completions: %w", err)
	}

	completed := make([]uint, 0, len(completions))
	for _, c := range completions {
		if !slices.Contains(completed, c.ModuleID) {
			completed = append(completed, c.ModuleID)
		}
	}
	slices.Sort(completed)

	progress := models.CalculateProgress(len(completed), len(moduleIDs))
	return &ProgressResponse{
		CourseID:         course.ID,
		ModuleID:         moduleID,
		Progress:         progress,
		IsCompleted:      progress >= 100,
		CompletedModules: completed,
	}, nil
}

func newProgressResponse(courseID, moduleID uint, enrollment *models.Enrollment) *ProgressResponse {
	completed := make([]uint, len(enrollment.CompletedModules))
	copy(completed, enrollment.CompletedModules)

	return &ProgressResponse{
		CourseID:         courseID,
		ModuleID:         moduleID,
		Progress:         enrollment.Progress,
		IsCompleted:      enrollment.IsCompleted,
		CompletionDate:   enrollment.CompletionDate,
		CompletedModules: completed,
	}
}

// afterToggle runs the post-commit side effects of a completion toggle
func (s *progressService) afterToggle(ctx context.Context, eventType events.EventType, userID uint, out toggleOutcome) {
	if out.enrolled {
		cache.InvalidateStatsCache(ctx, s.cache, userID)
	}

	resp := out.response
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(eventType, events.ModuleProgressEvent{
		CourseID:    resp.CourseID,
		ModuleID:    resp.ModuleID,
		UserID:      userID,
		Progress:    resp.Progress,
		IsCompleted: resp.IsCompleted,
	}))

	if out.courseCompleted && resp.CompletionDate != nil {
		publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.CourseCompleted, events.CourseCompletedEvent{
			CourseID:       resp.CourseID,
			UserID:         userID,
			CompletionDate: *resp.CompletionDate,
		}))
	}
}
