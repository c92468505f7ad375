package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type courseService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error) {
	s.logger.Info("Creating course", "title", req.Title, "modules", len(req.Modules))

	if errors := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errors) > 0 {
		return nil, errors
	}

	course := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		IsActive:    true,
		Modules:     make([]models.Module, 0, len(req.Modules)),
		Notes:       make([]models.Note, 0, len(req.Notes)),
	}
	for i, m := range req.Modules {
		course.Modules = append(course.Modules, models.Module{
			Title:      m.Title,
			YoutubeURL: m.YoutubeURL,
			Duration:   m.Duration,
			Position:   i,
		})
	}
	for _, n := range req.Notes {
		course.Notes = append(course.Notes, models.Note{Title: n.Title, PdfURL: n.PdfURL})
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	cache.InvalidateAdminStats(ctx, s.cache)

	s.logger.Info("Course created", "course_id", course.ID, "duration", course.Duration)
	return course, nil
}

// GetByID hides deactivated courses from everyone but admins
func (s *courseService) GetByID(ctx context.Context, id uint, user *models.User) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !course.IsActive && !user.IsAdmin() {
		return nil, ErrCourseNotFound
	}

	return course, nil
}

func (s *courseService) List(ctx context.Context, user *models.User, page, size int, search string) (*CourseListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filters := repositories.CourseFilters{
		ActiveOnly: !user.IsAdmin(),
		Search:     strings.TrimSpace(search),
		Limit:      size,
		Offset:     (page - 1) * size,
		SortBy:     "created_at",
		SortOrder:  "desc",
	}

	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Page:    page,
		Size:    size,
	}, nil
}

func (s *courseService) AddModule(ctx context.Context, courseID uint, req *CreateModuleRequest) (*models.Course, error) {
	s.logger.Info("Adding module", "course_id", courseID, "title", req.Title)

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if errors := s.validator.GetBusinessValidator().ValidateModuleCreate(req, course); len(errors) > 0 {
		return nil, errors
	}

	module := &models.Module{
		Title:      req.Title,
		YoutubeURL: req.YoutubeURL,
		Duration:   req.Duration,
	}

	// Progress of every enrollment in the course drops with the new module
	var updated *models.Course
	var affected []uint
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Course().AddModule(ctx, courseID, module); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to add module: %w", err)
		}

		var err error
		updated, err = tx.Course().GetByID(ctx, courseID)
		if err != nil {
			return fmt.Errorf("failed to reload course: %w", err)
		}

		enrollments, err := tx.Enrollment().List(ctx, repositories.EnrollmentFilters{CourseID: &courseID})
		if err != nil {
			return fmt.Errorf("failed to list enrollments: %w", err)
		}

		moduleIDs := updated.ModuleIDs()
		now := time.Now()
		for _, enrollment := range enrollments {
			enrollment.Recalculate(moduleIDs, now)
			if err := tx.Enrollment().Update(ctx, enrollment); err != nil {
				return fmt.Errorf("failed to update enrollment: %w", err)
			}
			affected = append(affected, enrollment.StudentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateCourseCache(ctx, s.cache, courseID)
	if len(affected) > 0 {
		cache.InvalidateStatsCache(ctx, s.cache, affected...)
	} else {
		cache.InvalidateAdminStats(ctx, s.cache)
	}

	s.logger.Info("Module added",
		"course_id", courseID,
		"module_id", module.ID,
		"duration", updated.Duration,
		"enrollments_recalculated", len(affected))
	return updated, nil
}

// Deactivate soft-deletes a course. Enrollments and tests that reference it are kept.
func (s *courseService) Deactivate(ctx context.Context, id uint) error {
	if err := s.repo.Course().Deactivate(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to deactivate course: %w", err)
	}
	cache.InvalidateAdminStats(ctx, s.cache)

	s.logger.Info("Course deactivated", "course_id", id)
	return nil
}
