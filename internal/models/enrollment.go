package models

import (
	"math"
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment is the authoritative record of a student's progress in a course.
// Invariants kept on every save:
//   - IsCompleted iff Progress >= 100
//   - CompletionDate is set exactly when IsCompleted is true
type Enrollment struct {
	ID               uint                      `json:"id" gorm:"primaryKey"`
	StudentID        uint                      `json:"studentId" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID         uint                      `json:"courseId" gorm:"not null;uniqueIndex:idx_enrollment_student_course;index"`
	Progress         int                       `json:"progress" gorm:"not null;default:0" validate:"min=0,max=100"`
	CompletedModules datatypes.JSONSlice[uint] `json:"completedModules"`
	IsCompleted      bool                      `json:"isCompleted" gorm:"not null;default:false;index"`
	CompletionDate   *time.Time                `json:"completionDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID" validate:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// NewEnrollment returns a fresh enrollment with zero progress
func NewEnrollment(studentID, courseID uint) *Enrollment {
	return &Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		Progress:         0,
		CompletedModules: datatypes.JSONSlice[uint]{},
	}
}

func (e *Enrollment) BeforeSave(tx *gorm.DB) error {
	if e.CompletedModules == nil {
		e.CompletedModules = datatypes.JSONSlice[uint]{}
	}
	e.ApplyCompletionBoundary(time.Now())
	return e.Validate()
}

func (e *Enrollment) Validate() error {
	return validateModel(e)
}

// CalculateProgress returns round(100 * completed / total), clamped to [0, 100].
// A course without modules has zero progress.
func CalculateProgress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}

func (e *Enrollment) HasCompletedModule(moduleID uint) bool {
	return slices.Contains(e.CompletedModules, moduleID)
}

// MarkModule appends moduleID when absent. Returns false if it was already there.
func (e *Enrollment) MarkModule(moduleID uint) bool {
	if e.HasCompletedModule(moduleID) {
		return false
	}
	e.CompletedModules = append(e.CompletedModules, moduleID)
	return true
}

// UnmarkModule removes moduleID. Returns false if it was not present.
func (e *Enrollment) UnmarkModule(moduleID uint) bool {
	idx := slices.Index(e.CompletedModules, moduleID)
	if idx < 0 {
		return false
	}
	e.CompletedModules = slices.Delete(e.CompletedModules, idx, idx+1)
	return true
}

// Recalculate derives Progress from CompletedModules against the course's current module set.
// Ids of modules no longer in the course are dropped first so that
// Progress == round(100 * len(CompletedModules) / len(moduleIDs)) holds exactly.
func (e *Enrollment) Recalculate(moduleIDs []uint, now time.Time) {
	kept := make(datatypes.JSONSlice[uint], 0, len(e.CompletedModules))
	for _, id := range e.CompletedModules {
		if slices.Contains(moduleIDs, id) {
			kept = append(kept, id)
		}
	}
	e.CompletedModules = kept
	e.Progress = CalculateProgress(len(kept), len(moduleIDs))
	e.ApplyCompletionBoundary(now)
}

// ApplyCompletionBoundary flips IsCompleted/CompletionDate to match Progress.
// CompletionDate is stamped only on the transition into completed.
func (e *Enrollment) ApplyCompletionBoundary(now time.Time) {
	if e.Progress >= 100 {
		e.IsCompleted = true
		if e.CompletionDate == nil {
			t := now
			e.CompletionDate = &t
		}
		return
	}
	e.IsCompleted = false
	e.CompletionDate = nil
}
