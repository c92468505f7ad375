package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// CourseRepository interface for course operations. Courses are returned with
// their modules (ordered by position) and notes.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Course, error)
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)

	// AddModule appends a module and recomputes the course duration
	AddModule(ctx context.Context, courseID uint, module *models.Module) error

	// Deactivate soft-deletes a course
	Deactivate(ctx context.Context, id uint) error
}

// CompletionRepository is the module completion audit log
type CompletionRepository interface {
	// Create fails with ErrDuplicate when the (module, user) entry exists
	Create(ctx context.Context, completion *models.ModuleCompletion) error
	Get(ctx context.Context, moduleID, userID uint) (*models.ModuleCompletion, error)
	// Delete reports whether an entry was removed
	Delete(ctx context.Context, moduleID, userID uint) (bool, error)
	ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleCompletion, error)
	ListByUser(ctx context.Context, userID uint, moduleIDs []uint) ([]*models.ModuleCompletion, error)
}
