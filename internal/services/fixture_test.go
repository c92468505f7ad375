package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/inmem"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type fixture struct {
	ctx       context.Context
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		ctx:       context.Background(),
		repo:      inmem.NewMemoryRepository(),
		cache:     cache.NewCacheManager(nil),
		publisher: events.NewMockEventPublisher(logger),
		logger:    logger,
		validator: validator.New(),
	}
}

// newRedisFixture backs the cache with miniredis
func newRedisFixture(t *testing.T) (*fixture, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t)
	f.cache = cache.NewCacheManager(client)
	return f, mr
}

func (f *fixture) progress() ProgressService {
	return NewProgressService(f.repo, f.cache, f.publisher, f.logger)
}

func (f *fixture) enrollment() EnrollmentService {
	return NewEnrollmentService(f.repo, f.cache, f.publisher, f.logger)
}

func (f *fixture) grading() GradingService {
	return NewGradingService(f.repo, f.cache, f.publisher, f.logger, f.validator)
}

func (f *fixture) stats() StatsService {
	return NewStatsService(f.repo, f.cache, cache.StatsCacheConfig.TTL, f.logger)
}

func (f *fixture) users() UserService {
	return NewUserService(f.repo, f.cache, f.logger, f.validator, AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
}

func (f *fixture) next() int {
	f.seq++
	return f.seq
}

func (f *fixture) student(t *testing.T, approved bool, courseIDs ...uint) *models.User {
	t.Helper()
	n := f.next()
	user := &models.User{
		Username:        fmt.Sprintf("student%d", n),
		Email:           fmt.Sprintf("student%d@example.com", n),
		PasswordHash:    "x",
		Role:            models.RoleStudent,
		IsApproved:      approved,
		EnrolledCourses: courseIDs,
	}
	require.NoError(t, f.repo.User().Create(f.ctx, user))
	return user
}

func (f *fixture) admin(t *testing.T) *models.User {
	t.Helper()
	n := f.next()
	user := &models.User{
		Username:     fmt.Sprintf("admin%d", n),
		Email:        fmt.Sprintf("admin%d@example.com", n),
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		IsApproved:   true,
	}
	require.NoError(t, f.repo.User().Create(f.ctx, user))
	return user
}

func (f *fixture) course(t *testing.T, modules int) *models.Course {
	t.Helper()
	n := f.next()
	course := &models.Course{Title: fmt.Sprintf("Course %d", n), IsActive: true}
	for i := 0; i < modules; i++ {
		course.Modules = append(course.Modules, models.Module{
			Title:      fmt.Sprintf("Module %d", i+1),
			YoutubeURL: fmt.Sprintf("https://www.youtube.com/watch?v=video%03d", i),
			Duration:   10,
		})
	}
	require.NoError(t, f.repo.Course().Create(f.ctx, course))
	return course
}

func (f *fixture) enroll(t *testing.T, studentID, courseID uint) *models.Enrollment {
	t.Helper()
	enrollment := models.NewEnrollment(studentID, courseID)
	require.NoError(t, f.repo.Enrollment().Create(f.ctx, enrollment))
	return enrollment
}

func (f *fixture) test(t *testing.T, courseID uint, points ...int) *models.Test {
	t.Helper()
	test := &models.Test{CourseID: courseID, Title: fmt.Sprintf("Test %d", f.next())}
	for i, p := range points {
		test.Questions = append(test.Questions, models.Question{
			Text:          fmt.Sprintf("Question %d", i+1),
			Options:       []string{"a", "b"},
			CorrectAnswer: "a",
			Points:        p,
		})
	}
	require.NoError(t, f.repo.Test().Create(f.ctx, test))
	return test
}

func (f *fixture) getEnrollment(t *testing.T, studentID, courseID uint) *models.Enrollment {
	t.Helper()
	enrollment, err := f.repo.Enrollment().GetByStudentAndCourse(f.ctx, studentID, courseID)
	require.NoError(t, err)
	return enrollment
}

func ptr[T any](v T) *T { return &v }

func uintString(v uint) string { return fmt.Sprintf("%d", v) }
