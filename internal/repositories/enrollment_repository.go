package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// EnrollmentRepository interface for enrollment operations. Enrollments are never deleted.
type EnrollmentRepository interface {
	// Create fails with ErrDuplicate when the (student, course) pair exists
	Create(ctx context.Context, enrollment *models.Enrollment) error
	CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error)
	// GetForUpdate is GetByStudentAndCourse holding a row lock until the surrounding transaction ends
	GetForUpdate(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error

	ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error)
	List(ctx context.Context, filters EnrollmentFilters) ([]*models.Enrollment, error)
}
