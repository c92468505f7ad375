package models

import "time"

// ===== STATISTICS DTOs =====

// StudentBreakdown is one row of the per-student statistics table
type StudentBreakdown struct {
	StudentID        uint    `json:"studentId"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	EnrolledCourses  int     `json:"enrolledCourses"`
	CompletedCourses int     `json:"completedCourses"`
	AverageProgress  float64 `json:"averageProgress"`
	AverageScore     float64 `json:"averageScore"`
	TestsCompleted   int     `json:"testsCompleted"`
}

type AdminStats struct {
	TotalStudents          int                `json:"totalStudents"`
	PendingApprovals       int                `json:"pendingApprovals"`
	TotalCourses           int                `json:"totalCourses"`
	ActiveCourses          int                `json:"activeCourses"`
	TotalEnrollments       int                `json:"totalEnrollments"`
	CompletedEnrollments   int                `json:"completedEnrollments"`
	TotalTests             int                `json:"totalTests"`
	TotalResults           int                `json:"totalResults"`
	AverageScore           float64            `json:"averageScore"`
	OverallProgressAverage float64            `json:"overallProgressAverage"`
	CompletionRate         float64            `json:"completionRate"`
	Students               []StudentBreakdown `json:"students"`
	GeneratedAt            time.Time          `json:"generatedAt"`
}

type CourseProgressItem struct {
	CourseID       uint       `json:"courseId"`
	Title          string     `json:"title"`
	Progress       int        `json:"progress"`
	IsCompleted    bool       `json:"isCompleted"`
	CompletionDate *time.Time `json:"completionDate"`
}

type UserStats struct {
	StudentID        uint                 `json:"studentId"`
	EnrolledCourses  int                  `json:"enrolledCourses"`
	CompletedCourses int                  `json:"completedCourses"`
	AverageProgress  float64              `json:"averageProgress"`
	AverageScore     float64              `json:"averageScore"`
	TestsCompleted   int                  `json:"testsCompleted"`
	CompletionRate   float64              `json:"completionRate"`
	Courses          []CourseProgressItem `json:"courses"`
	GeneratedAt      time.Time            `json:"generatedAt"`
}
