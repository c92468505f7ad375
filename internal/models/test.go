package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Test struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	CourseID    uint   `json:"courseId" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text"`
	MaxScore    int    `json:"maxScore" gorm:"not null;default:0"` // sum of question points

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Questions []Question   `json:"questions" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" validate:"dive"`
	Results   []TestResult `json:"results" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" validate:"dive"`
}

type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	TestID        uint                        `json:"testId" gorm:"not null;index"`
	Text          string                      `json:"text" gorm:"type:text;not null" validate:"required"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `json:"correctAnswer,omitempty" gorm:"size:500"`
	Points        int                         `json:"points" gorm:"not null;default:1" validate:"min=0,max=1000"`
}

// TestResult holds the admin-assigned grade of one student on one test.
// At most one row per (test, student).
type TestResult struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TestID      uint           `json:"testId" gorm:"not null;uniqueIndex:idx_test_result_student"`
	StudentID   uint           `json:"studentId" gorm:"not null;uniqueIndex:idx_test_result_student;index"`
	Score       float64        `json:"score" gorm:"not null" validate:"min=0"`
	MaxScore    float64        `json:"maxScore" gorm:"not null" validate:"min=0"`
	Grade       string         `json:"grade" gorm:"not null;size:20" validate:"required,max=20"`
	Answers     datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	CompletedAt time.Time      `json:"completedAt" gorm:"not null"`
}

func (Test) TableName() string {
	return "tests"
}

func (Question) TableName() string {
	return "test_questions"
}

func (TestResult) TableName() string {
	return "test_results"
}

func (t *Test) BeforeSave(tx *gorm.DB) error {
	t.RecalculateMaxScore()
	return t.Validate()
}

func (t *Test) Validate() error {
	return validateModel(t)
}

func (t *Test) RecalculateMaxScore() {
	total := 0
	for _, q := range t.Questions {
		total += q.Points
	}
	t.MaxScore = total
}

// FindResult scans Results for the student's entry. Returns -1 when absent.
func (t *Test) FindResult(studentID uint) int {
	for i := range t.Results {
		if t.Results[i].StudentID == studentID {
			return i
		}
	}
	return -1
}

func (r *TestResult) BeforeSave(tx *gorm.DB) error {
	return r.Validate()
}

func (r *TestResult) Validate() error {
	return validateModel(r)
}

// Percentage returns score/maxScore*100. ok is false when maxScore is not positive.
func (r *TestResult) Percentage() (pct float64, ok bool) {
	if r.MaxScore <= 0 {
		return 0, false
	}
	return r.Score / r.MaxScore * 100, true
}
