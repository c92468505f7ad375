package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type enrollmentService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEnrollmentService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
	}
}

// SyncEnrollments only ever adds rows. Enrollments of courses no longer listed in
// EnrolledCourses are kept, and new rows start at zero progress.
func (s *enrollmentService) SyncEnrollments(ctx context.Context, studentID uint) (*SyncResult, error) {
	s.logger.Info("Syncing enrollments", "student_id", studentID)

	var (
		created   []*models.Enrollment
		courseIDs []uint
		all       []*models.Enrollment
	)
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		student, err := tx.User().GetByID(ctx, studentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to get student: %w", err)
		}

		existing, err := tx.Enrollment().ListByStudent(ctx, studentID)
		if err != nil {
			return fmt.Errorf("failed to list enrollments: %w", err)
		}

		enrolled := make(map[uint]bool, len(existing))
		for _, e := range existing {
			enrolled[e.CourseID] = true
		}

		var missing []uint
		for _, courseID := range student.EnrolledCourses {
			if !enrolled[courseID] && !slices.Contains(missing, courseID) {
				missing = append(missing, courseID)
			}
		}

		if len(missing) > 0 {
			courses, err := tx.Course().GetByIDs(ctx, missing)
			if err != nil {
				return fmt.Errorf("failed to get courses: %w", err)
			}
			known := make(map[uint]bool, len(courses))
			for _, c := range courses {
				known[c.ID] = true
			}

			for _, courseID := range missing {
				if !known[courseID] {
					s.logger.Warn("Skipping unknown course in enrolled courses",
						"student_id", studentID,
						"course_id", courseID)
					continue
				}
				created = append(created, models.NewEnrollment(studentID, courseID))
				courseIDs = append(courseIDs, courseID)
			}

			if err := tx.Enrollment().CreateBatch(ctx, created); err != nil {
				if repositories.IsDuplicateError(err) {
					return fmt.Errorf("%w: enrollments changed during sync", ErrConflict)
				}
				return fmt.Errorf("failed to create enrollments: %w", err)
			}
		}

		all, err = tx.Enrollment().ListByStudent(ctx, studentID)
		if err != nil {
			return fmt.Errorf("failed to list enrollments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(created) > 0 {
		cache.InvalidateStatsCache(ctx, s.cache, studentID)
		publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.EnrollmentsSynced, events.EnrollmentsSyncedEvent{
			StudentID: studentID,
			Created:   len(created),
			CourseIDs: courseIDs,
		}))
	}

	s.logger.Info("Enrollments synced", "student_id", studentID, "created", len(created))

	return &SyncResult{Created: len(created), Enrollments: all}, nil
}

func (s *enrollmentService) Enroll(ctx context.Context, courseID uint, user *models.User) (*models.Enrollment, error) {
	s.logger.Info("Enrolling student", "course_id", courseID, "student_id", user.ID)

	if user.IsAdmin() {
		return nil, ErrNotAStudent
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !course.IsActive {
		return nil, ErrCourseInactive
	}

	enrollment := models.NewEnrollment(user.ID, courseID)
	if err := s.repo.Enrollment().Create(ctx, enrollment); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	cache.InvalidateStatsCache(ctx, s.cache, user.ID)
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.StudentEnrolled, events.StudentEnrolledEvent{
		StudentID: user.ID,
		CourseID:  courseID,
	}))

	return enrollment, nil
}

// ListMyCourses returns the union of granted courses and enrolled courses, each with its
// enrollment when one exists
func (s *enrollmentService) ListMyCourses(ctx context.Context, studentID uint) ([]*CourseWithProgress, error) {
	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	enrollments, err := s.repo.Enrollment().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	byCourse := make(map[uint]*models.Enrollment, len(enrollments))
	courseIDs := make([]uint, 0, len(enrollments)+len(student.EnrolledCourses))
	for _, e := range enrollments {
		byCourse[e.CourseID] = e
		courseIDs = append(courseIDs, e.CourseID)
	}
	for _, id := range student.EnrolledCourses {
		if !slices.Contains(courseIDs, id) {
			courseIDs = append(courseIDs, id)
		}
	}

	if len(courseIDs) == 0 {
		return []*CourseWithProgress{}, nil
	}

	courses, err := s.repo.Course().GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	result := make([]*CourseWithProgress, 0, len(courses))
	for _, course := range courses {
		enrollment := byCourse[course.ID]
		// Deactivated courses stay visible only while there is progress to show
		if !course.IsActive && enrollment == nil {
			continue
		}
		result = append(result, &CourseWithProgress{Course: course, Enrollment: enrollment})
	}

	slices.SortFunc(result, func(a, b *CourseWithProgress) int {
		return cmp.Compare(a.Course.ID, b.Course.ID)
	})

	return result, nil
}
