package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type ApproveUserRequest = validator.ApproveUserRequest
type CreateCourseRequest = validator.CourseCreateRequest
type CreateModuleRequest = validator.ModuleCreateRequest
type CreateTestRequest = validator.TestCreateRequest
type GradeSubmissionRequest = validator.GradeSubmissionRequest

// ProgressResponse is returned by the module completion toggles
type ProgressResponse struct {
	CourseID         uint       `json:"courseId"`
	ModuleID         uint       `json:"moduleId"`
	Progress         int        `json:"progress"`
	IsCompleted      bool       `json:"isCompleted"`
	CompletionDate   *time.Time `json:"completionDate"`
	CompletedModules []uint     `json:"completedModules"`
}

type ModuleCompletionStatus struct {
	CourseID    uint       `json:"courseId"`
	ModuleID    uint       `json:"moduleId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// SyncResult reports what an enrollment sync created
type SyncResult struct {
	Created     int                  `json:"created"`
	Enrollments []*models.Enrollment `json:"enrollments"`
}

// CourseWithProgress is one entry of a student's accessible courses
type CourseWithProgress struct {
	*models.Course
	Enrollment *models.Enrollment `json:"enrollment"`
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// ===== SERVICE INTERFACES =====

type ProgressService interface {
	CompleteModule(ctx context.Context, courseID, moduleID uint, user *models.User) (*ProgressResponse, error)
	UncompleteModule(ctx context.Context, courseID, moduleID uint, user *models.User) (*ProgressResponse, error)
	GetModuleCompletion(ctx context.Context, courseID, moduleID uint, user *models.User) (*ModuleCompletionStatus, error)
}

type EnrollmentService interface {
	// SyncEnrollments creates the missing Enrollment rows for User.EnrolledCourses
	SyncEnrollments(ctx context.Context, studentID uint) (*SyncResult, error)
	Enroll(ctx context.Context, courseID uint, user *models.User) (*models.Enrollment, error)
	ListMyCourses(ctx context.Context, studentID uint) ([]*CourseWithProgress, error)
}

type GradingService interface {
	// SubmitResult upserts the (test, student) result and returns the updated test
	SubmitResult(ctx context.Context, testID uint, req *GradeSubmissionRequest, grader *models.User) (*models.Test, error)
}

type StatsService interface {
	GetAdminStats(ctx context.Context) (*models.AdminStats, error)
	GetUserStats(ctx context.Context, studentID uint) (*models.UserStats, error)
}

type ReportService interface {
	// ExportStudentStats writes the per-student breakdown as an XLSX workbook
	ExportStudentStats(ctx context.Context, w io.Writer) error
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	GetByID(ctx context.Context, id uint, user *models.User) (*models.Course, error)
	List(ctx context.Context, user *models.User, page, size int, search string) (*CourseListResponse, error)
	AddModule(ctx context.Context, courseID uint, req *CreateModuleRequest) (*models.Course, error)
	Deactivate(ctx context.Context, id uint) error
}

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest) (*models.Test, error)
	GetByID(ctx context.Context, id uint, user *models.User) (*models.Test, error)
}

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ListPending(ctx context.Context) ([]*models.User, error)
	Approve(ctx context.Context, userID uint, req *ApproveUserRequest) (*models.User, error)
	Reject(ctx context.Context, userID uint) error

	// Authenticate resolves a locally issued bearer token to its user
	Authenticate(ctx context.Context, token string) (*models.User, error)
	// ProvisionExternalUser maps an identity from an external provider onto a local user,
	// creating an unapproved student (or an approved admin) on first sight
	ProvisionExternalUser(ctx context.Context, email, username string, admin bool) (*models.User, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Progress() ProgressService
	Enrollment() EnrollmentService
	Grading() GradingService
	Stats() StatsService
	Report() ReportService
	Course() CourseService
	Test() TestService
	User() UserService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
