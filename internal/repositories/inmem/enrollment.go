package inmem

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type enrollmentRepository struct {
	r *Repository
}

func (t *tables) findEnrollment(studentID, courseID uint) (models.Enrollment, bool) {
	for _, e := range t.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, true
		}
	}
	return models.Enrollment{}, false
}

func (repo *enrollmentRepository) insert(t *tables, enrollment *models.Enrollment) error {
	if _, exists := t.findEnrollment(enrollment.StudentID, enrollment.CourseID); exists {
		return fmt.Errorf("create enrollment: %w (idx_enrollment_student_course)", repositories.ErrDuplicate)
	}
	if err := enrollment.BeforeSave(nil); err != nil {
		return err
	}

	now := repo.r.db.now()
	enrollment.ID = t.nextID()
	enrollment.CreatedAt, enrollment.UpdatedAt = now, now
	t.enrollments[enrollment.ID] = cloneEnrollment(*enrollment)
	return nil
}

func (repo *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	defer repo.r.lock()()
	return repo.insert(repo.r.t(), enrollment)
}

// CreateBatch is all-or-nothing, like a single multi-row INSERT
func (repo *enrollmentRepository) CreateBatch(ctx context.Context, enrollments []*models.Enrollment) error {
	defer repo.r.lock()()
	t := repo.r.t()

	saved := t.snapshot()
	for _, e := range enrollments {
		if err := repo.insert(t, e); err != nil {
			repo.r.db.data = saved
			return err
		}
	}
	return nil
}

func (repo *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	defer repo.r.lock()()

	e, ok := repo.r.t().findEnrollment(studentID, courseID)
	if !ok {
		return nil, fmt.Errorf("get enrollment: %w", repositories.ErrNotFound)
	}
	out := cloneEnrollment(e)
	return &out, nil
}

// GetForUpdate needs no extra locking: a transaction already holds the DB lock
func (repo *enrollmentRepository) GetForUpdate(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	return repo.GetByStudentAndCourse(ctx, studentID, courseID)
}

func (repo *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	defer repo.r.lock()()
	t := repo.r.t()

	existing, ok := t.enrollments[enrollment.ID]
	if !ok {
		return fmt.Errorf("update enrollment: %w", repositories.ErrNotFound)
	}
	if other, found := t.findEnrollment(enrollment.StudentID, enrollment.CourseID); found && other.ID != enrollment.ID {
		return fmt.Errorf("update enrollment: %w (idx_enrollment_student_course)", repositories.ErrDuplicate)
	}
	if err := enrollment.BeforeSave(nil); err != nil {
		return err
	}

	enrollment.CreatedAt = existing.CreatedAt
	enrollment.UpdatedAt = repo.r.db.now()
	t.enrollments[enrollment.ID] = cloneEnrollment(*enrollment)
	return nil
}

func (repo *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]*models.Enrollment, error) {
	return repo.List(ctx, repositories.EnrollmentFilters{StudentID: &studentID})
}

func (repo *enrollmentRepository) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	out := []*models.Enrollment{}
	for _, id := range sortedKeys(t.enrollments) {
		e := t.enrollments[id]
		if filters.StudentID != nil && e.StudentID != *filters.StudentID {
			continue
		}
		if filters.CourseID != nil && e.CourseID != *filters.CourseID {
			continue
		}
		if filters.IsCompleted != nil && e.IsCompleted != *filters.IsCompleted {
			continue
		}
		c := cloneEnrollment(e)
		out = append(out, &c)
	}
	return out, nil
}
