package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type TestPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	if err := r.db.WithContext(ctx).Create(test).Error; err != nil {
		return wrapError("create test", err)
	}
	return nil
}

func (r *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Results", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&test, id).Error; err != nil {
		return nil, wrapError("get test", err)
	}
	return &test, nil
}

func (r *TestPostgreSQL) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Test{})
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count tests", err)
	}

	var tests []*models.Test
	query = r.helpers.ApplyPaginationAndSort(query.Preload("Questions"), "id", "asc", filters.Limit, filters.Offset)
	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, wrapError("list tests", err)
	}
	return tests, total, nil
}

// SaveResult inserts a new result or updates an existing one by primary key.
// A concurrent insert for the same (test, student) hits idx_test_result_student.
func (r *TestPostgreSQL) SaveResult(ctx context.Context, result *models.TestResult) error {
	db := r.db.WithContext(ctx)
	var err error
	if result.ID == 0 {
		err = db.Create(result).Error
	} else {
		err = db.Save(result).Error
	}
	if err != nil {
		return wrapError("save test result", err)
	}
	return nil
}

func (r *TestPostgreSQL) ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, error) {
	query := r.db.WithContext(ctx).Model(&models.TestResult{})
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}

	var results []*models.TestResult
	if err := query.Order("id ASC").Find(&results).Error; err != nil {
		return nil, wrapError("list test results", err)
	}
	return results, nil
}
