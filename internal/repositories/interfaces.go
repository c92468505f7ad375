package repositories

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	ActiveOnly bool   `json:"active_only"`
	IDs        []uint `json:"ids"`
	Search     string `json:"search"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	SortBy     string `json:"sort_by"`    // "created_at", "title"
	SortOrder  string `json:"sort_order"` // "asc", "desc"
}

type EnrollmentFilters struct {
	StudentID   *uint `json:"student_id"`
	CourseID    *uint `json:"course_id"`
	IsCompleted *bool `json:"is_completed"`
}

type TestFilters struct {
	CourseID *uint `json:"course_id"`
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
}

type ResultFilters struct {
	TestID    *uint `json:"test_id"`
	StudentID *uint `json:"student_id"`
}
