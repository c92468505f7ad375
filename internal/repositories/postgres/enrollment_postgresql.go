package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (r *EnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Omit("Course").Create(enrollment).Error; err != nil {
		return wrapError("create enrollment", err)
	}
	return nil
}

func (r *EnrollmentPostgreSQL) CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit("Course").CreateInBatches(enrollments, 100).Error; err != nil {
		return wrapError("create enrollments", err)
	}
	return nil
}

func (r *EnrollmentPostgreSQL) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return nil, wrapError("get enrollment", err)
	}
	return &enrollment, nil
}

// GetForUpdate locks the enrollment row (SELECT ... FOR UPDATE). Only meaningful
// on a repository obtained from WithTransaction.
func (r *EnrollmentPostgreSQL) GetForUpdate(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return nil, wrapError("lock enrollment", err)
	}
	return &enrollment, nil
}

func (r *EnrollmentPostgreSQL) Update(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Omit("Course").Save(enrollment).Error; err != nil {
		return wrapError("update enrollment", err)
	}
	return nil
}

func (r *EnrollmentPostgreSQL) ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("course_id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, wrapError("list student enrollments", err)
	}
	return enrollments, nil
}

func (r *EnrollmentPostgreSQL) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.IsCompleted != nil {
		query = query.Where("is_completed = ?", *filters.IsCompleted)
	}

	var enrollments []*models.Enrollment
	if err := query.Order("id ASC").Find(&enrollments).Error; err != nil {
		return nil, wrapError("list enrollments", err)
	}
	return enrollments, nil
}
