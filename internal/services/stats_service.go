package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type statsService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatsService memoizes results in the stats cache for ttl. Writers invalidate
// the entries, see cache.InvalidateStatsCache.
func NewStatsService(repo repositories.Repository, cacheManager *cache.CacheManager, ttl time.Duration, logger *slog.Logger) StatsService {
	if ttl <= 0 {
		ttl = cache.StatsCacheConfig.TTL
	}
	return &statsService{
		repo:   repo,
		cache:  cacheManager,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *statsService) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	err := s.cache.Stats.CacheOrExecute(ctx, cache.AdminStatsKey, &stats, s.ttl, func() (interface{}, error) {
		return s.computeAdminStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *statsService) GetUserStats(ctx context.Context, studentID uint) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.cache.Stats.CacheOrExecute(ctx, cache.UserStatsKey(studentID), &stats, s.ttl, func() (interface{}, error) {
		return s.computeUserStats(ctx, studentID)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *statsService) computeAdminStats(ctx context.Context) (*models.AdminStats, error) {
	start := time.Now()

	studentRole := models.RoleStudent
	students, _, err := s.repo.User().List(ctx, repositories.UserFilters{Role: &studentRole})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	courses, totalCourses, err := s.repo.Course().List(ctx, repositories.CourseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	_, totalTests, err := s.repo.Test().List(ctx, repositories.TestFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	enrollments, err := s.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	results, err := s.repo.Test().ListResults(ctx, repositories.ResultFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}

	enrollmentsByStudent := make(map[uint][]*models.Enrollment)
	for _, e := range enrollments {
		enrollmentsByStudent[e.StudentID] = append(enrollmentsByStudent[e.StudentID], e)
	}
	resultsByStudent := make(map[uint][]*models.TestResult)
	for _, r := range results {
		resultsByStudent[r.StudentID] = append(resultsByStudent[r.StudentID], r)
	}

	stats := &models.AdminStats{
		TotalCourses:           int(totalCourses),
		TotalEnrollments:       len(enrollments),
		CompletedEnrollments:   countCompleted(enrollments),
		TotalTests:             int(totalTests),
		TotalResults:           len(results),
		AverageScore:           roundStat(AverageScore(results)),
		OverallProgressAverage: roundStat(OverallProgressAverage(enrollments)),
		CompletionRate:         roundStat(CompletionRate(enrollments)),
		Students:               []models.StudentBreakdown{},
		GeneratedAt:            time.Now(),
	}

	for _, c := range courses {
		if c.IsActive {
			stats.ActiveCourses++
		}
	}

	for _, student := range students {
		if !student.IsApproved {
			stats.PendingApprovals++
			continue
		}
		stats.TotalStudents++

		own := enrollmentsByStudent[student.ID]
		ownResults := resultsByStudent[student.ID]
		stats.Students = append(stats.Students, models.StudentBreakdown{
			StudentID:        student.ID,
			Username:         student.Username,
			Email:            student.Email,
			EnrolledCourses:  len(own),
			CompletedCourses: countCompleted(own),
			AverageProgress:  roundStat(OverallProgressAverage(own)),
			AverageScore:     roundStat(AverageScore(ownResults)),
			TestsCompleted:   len(ownResults),
		})
	}

	s.logger.Debug("Admin stats computed",
		"students", stats.TotalStudents,
		"enrollments", stats.TotalEnrollments,
		"results", stats.TotalResults,
		"duration", time.Since(start))

	return stats, nil
}

func (s *statsService) computeUserStats(ctx context.Context, studentID uint) (*models.UserStats, error) {
	if _, err := s.repo.User().GetByID(ctx, studentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	enrollments, err := s.repo.Enrollment().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	results, err := s.repo.Test().ListResults(ctx, repositories.ResultFilters{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}

	titles := make(map[uint]string, len(enrollments))
	if len(enrollments) > 0 {
		ids := make([]uint, len(enrollments))
		for i, e := range enrollments {
			ids[i] = e.CourseID
		}
		courses, err := s.repo.Course().GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to get courses: %w", err)
		}
		for _, c := range courses {
			titles[c.ID] = c.Title
		}
	}

	stats := &models.UserStats{
		StudentID:        studentID,
		EnrolledCourses:  len(enrollments),
		CompletedCourses: countCompleted(enrollments),
		AverageProgress:  roundStat(OverallProgressAverage(enrollments)),
		AverageScore:     roundStat(AverageScore(results)),
		TestsCompleted:   len(results),
		CompletionRate:   roundStat(CompletionRate(enrollments)),
		Courses:          make([]models.CourseProgressItem, 0, len(enrollments)),
		GeneratedAt:      time.Now(),
	}

	for _, e := range enrollments {
		stats.Courses = append(stats.Courses, models.CourseProgressItem{
			CourseID:       e.CourseID,
			Title:          titles[e.CourseID],
			Progress:       e.Progress,
			IsCompleted:    e.IsCompleted,
			CompletionDate: e.CompletionDate,
		})
	}

	return stats, nil
}
