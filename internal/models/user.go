package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"not null;size:100" validate:"required,min=3,max=100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"not null;default:student;size:20;index" validate:"required,oneof=student admin"`
	IsApproved   bool     `json:"isApproved" gorm:"not null;default:false;index"`

	// Courses granted at approval time. Not guaranteed to have a matching Enrollment row,
	// see EnrollmentService.SyncEnrollments.
	EnrolledCourses datatypes.JSONSlice[uint] `json:"enrolledCourses"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}

func (u *User) Validate() error {
	return validateModel(u)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasCourseAccess reports whether the course was granted through EnrolledCourses
func (u *User) HasCourseAccess(courseID uint) bool {
	return slices.Contains(u.EnrolledCourses, courseID)
}

// GrantCourses adds course ids to EnrolledCourses, skipping ones already present
func (u *User) GrantCourses(courseIDs ...uint) {
	for _, id := range courseIDs {
		if !u.HasCourseAccess(id) {
			u.EnrolledCourses = append(u.EnrolledCourses, id)
		}
	}
}
