package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "learning-service"
	EventVersion = "1.0"
)

type EventType string

const (
	ModuleCompleted   EventType = "module.completed"
	ModuleUncompleted EventType = "module.uncompleted"
	CourseCompleted   EventType = "course.completed"
	TestGraded        EventType = "test.graded"
	EnrollmentsSynced EventType = "enrollment.synced"
	StudentEnrolled   EventType = "enrollment.created"
)

// Event is the envelope of every domain event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events. Publishing happens after the
// originating write has committed; failures are reported, never retried.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type ModuleProgressEvent struct {
	CourseID    uint `json:"courseId"`
	ModuleID    uint `json:"moduleId"`
	UserID      uint `json:"userId"`
	Progress    int  `json:"progress"`
	IsCompleted bool `json:"isCompleted"`
}

type CourseCompletedEvent struct {
	CourseID       uint      `json:"courseId"`
	UserID         uint      `json:"userId"`
	CompletionDate time.Time `json:"completionDate"`
}

// TestGradedEvent carries the replaced score and grade so consumers can keep grading history
type TestGradedEvent struct {
	TestID        uint     `json:"testId"`
	StudentID     uint     `json:"studentId"`
	GradedBy      uint     `json:"gradedBy"`
	Score         float64  `json:"score"`
	MaxScore      float64  `json:"maxScore"`
	Grade         string   `json:"grade"`
	PreviousScore *float64 `json:"previousScore,omitempty"`
	PreviousGrade *string  `json:"previousGrade,omitempty"`
}

type EnrollmentsSyncedEvent struct {
	StudentID uint   `json:"studentId"`
	Created   int    `json:"created"`
	CourseIDs []uint `json:"courseIds"`
}

type StudentEnrolledEvent struct {
	StudentID uint `json:"studentId"`
	CourseID  uint `json:"courseId"`
}
