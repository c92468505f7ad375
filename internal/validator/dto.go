package validator

import (
	"encoding/json"
)

// RegisterRequest represents a self-service signup
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_strength"`
}

// LoginRequest represents a credentials login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ApproveUserRequest grants course access when approving a pending signup
type ApproveUserRequest struct {
	CourseIDs []uint `json:"courseIds" validate:"omitempty,max=100,dive,gt=0"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Title       string                `json:"title" validate:"required,course_title"`
	Description string                `json:"description" validate:"omitempty,max=5000"`
	Modules     []ModuleCreateRequest `json:"modules" validate:"omitempty,max=200,dive"`
	Notes       []NoteCreateRequest   `json:"notes" validate:"omitempty,max=200,dive"`
}

// ModuleCreateRequest represents a module added to a course
type ModuleCreateRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	YoutubeURL string `json:"youtubeUrl" validate:"required,youtube_url"`
	Duration   int    `json:"duration" validate:"min=0,max=1440"`
}

type NoteCreateRequest struct {
	Title  string `json:"title" validate:"required,min=1,max=200"`
	PdfURL string `json:"pdfUrl" validate:"required,url"`
}

// TestCreateRequest represents the request structure for creating tests
type TestCreateRequest struct {
	CourseID    uint                    `json:"courseId" validate:"required"`
	Title       string                  `json:"title" validate:"required,min=1,max=200"`
	Description string                  `json:"description" validate:"omitempty,max=5000"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"required,min=1,max=200,dive"`
}

// QuestionCreateRequest represents one question of a test
type QuestionCreateRequest struct {
	Text          string   `json:"text" validate:"required,min=1,max=2000"`
	Options       []string `json:"options" validate:"omitempty,max=20,dive,min=1,max=500"`
	CorrectAnswer string   `json:"correctAnswer" validate:"omitempty,max=500"`
	Points        int      `json:"points" validate:"points_range"`
}

// GradeSubmissionRequest is the admin grading payload. Score is a pointer so that
// a zero score is distinguishable from a missing one.
type GradeSubmissionRequest struct {
	StudentID uint            `json:"studentId" validate:"required"`
	Score     *float64        `json:"score" validate:"required,min=0"`
	MaxScore  *float64        `json:"maxScore" validate:"omitempty,min=0"`
	Grade     string          `json:"grade" validate:"required,grade_label"`
	Answers   json.RawMessage `json:"answers"`
}
