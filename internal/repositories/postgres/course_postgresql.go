package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	// reads inside a transaction must see uncommitted rows, so they skip the cache
	readThrough bool
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheFor(redisClient),
		readThrough:  true,
	}
}

func newCourseTx(tx *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           tx,
		helpers:      NewSharedHelpers(tx),
		cacheManager: cacheFor(redisClient),
	}
}

func withModules(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

// Create creates a course together with its modules and notes
func (r *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	for i := range course.Modules {
		course.Modules[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return wrapError("create course", err)
	}
	return nil
}

// GetByID retrieves a course by ID with caching
func (r *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	fetch := func() (interface{}, error) {
		var course models.Course
		if err := withModules(r.db.WithContext(ctx)).First(&course, id).Error; err != nil {
			return nil, wrapError("get course", err)
		}
		return &course, nil
	}

	if !r.readThrough {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*models.Course), nil
	}

	var course models.Course
	if err := r.cacheManager.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, cache.CourseCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CoursePostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Course, error) {
	if len(ids) == 0 {
		return []*models.Course{}, nil
	}
	var courses []*models.Course
	if err := withModules(r.db.WithContext(ctx)).Where("id IN ?", ids).Order("id").Find(&courses).Error; err != nil {
		return nil, wrapError("get courses", err)
	}
	return courses, nil
}

func (r *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if len(filters.IDs) > 0 {
		query = query.Where("id IN ?", filters.IDs)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count courses", err)
	}

	var courses []*models.Course
	query = r.helpers.ApplyPaginationAndSort(withModules(query), filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, wrapError("list courses", err)
	}

	return courses, total, nil
}

// AddModule inserts the module at the end of the course and saves the course so
// that its duration is recomputed by the model hook
func (r *CoursePostgreSQL) AddModule(ctx context.Context, courseID uint, module *models.Module) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := withModules(tx).
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			First(&course, courseID).Error; err != nil {
			return wrapError("get course", err)
		}

		module.ID = 0
		module.CourseID = courseID
		module.Position = len(course.Modules)
		if err := tx.Create(module).Error; err != nil {
			return wrapError("create module", err)
		}

		course.Modules = append(course.Modules, *module)
		if err := tx.Omit(clause.Associations).Save(&course).Error; err != nil {
			return wrapError("update course duration", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateCourseCache(ctx, r.cacheManager, courseID)
	return nil
}

func (r *CoursePostgreSQL) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		return wrapError("deactivate course", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("deactivate course: %w", repositories.ErrNotFound)
	}

	cache.InvalidateCourseCache(ctx, r.cacheManager, id)
	return nil
}
