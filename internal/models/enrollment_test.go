package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name             string
		completed, total int
		want             int
	}{
		{"no modules", 0, 0, 0},
		{"no modules but stale completions", 3, 0, 0},
		{"none completed", 0, 4, 0},
		{"half", 2, 4, 50},
		{"rounds down", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"all", 4, 4, 100},
		{"clamped", 5, 4, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateProgress(tt.completed, tt.total))
		})
	}
}

func TestEnrollment_MarkAndUnmark(t *testing.T) {
	e := NewEnrollment(1, 1)

	assert.True(t, e.MarkModule(10))
	assert.False(t, e.MarkModule(10), "marking twice keeps a single entry")
	assert.Equal(t, datatypes.JSONSlice[uint]{10}, e.CompletedModules)

	assert.False(t, e.UnmarkModule(99))
	assert.True(t, e.UnmarkModule(10))
	assert.Empty(t, e.CompletedModules)
}

func TestEnrollment_Recalculate_Scenarios(t *testing.T) {
	modules := []uint{11, 12, 13, 14}
	start := time.Now()
	e := NewEnrollment(1, 1)

	// complete modules 1 and 3
	e.MarkModule(11)
	e.MarkModule(13)
	e.Recalculate(modules, time.Now())
	assert.Equal(t, 50, e.Progress)
	assert.False(t, e.IsCompleted)
	assert.Nil(t, e.CompletionDate)

	// complete the remaining two
	e.MarkModule(12)
	e.MarkModule(14)
	e.Recalculate(modules, time.Now())
	assert.Equal(t, 100, e.Progress)
	assert.True(t, e.IsCompleted)
	require.NotNil(t, e.CompletionDate)
	assert.False(t, e.CompletionDate.Before(start))

	// recomputing at 100 keeps the original completion date
	first := *e.CompletionDate
	e.Recalculate(modules, first.Add(time.Hour))
	assert.Equal(t, first, *e.CompletionDate)

	// uncomplete one after reaching 100%
	e.UnmarkModule(12)
	e.Recalculate(modules, time.Now())
	assert.Equal(t, 75, e.Progress)
	assert.False(t, e.IsCompleted)
	assert.Nil(t, e.CompletionDate)
}

func TestEnrollment_Recalculate_DropsRemovedModules(t *testing.T) {
	e := NewEnrollment(1, 1)
	e.CompletedModules = datatypes.JSONSlice[uint]{1, 2, 99}

	e.Recalculate([]uint{1, 2, 3, 4}, time.Now())

	assert.Equal(t, datatypes.JSONSlice[uint]{1, 2}, e.CompletedModules)
	assert.Equal(t, 50, e.Progress)
}

func TestEnrollment_BeforeSaveAppliesBoundary(t *testing.T) {
	e := &Enrollment{StudentID: 1, CourseID: 1, Progress: 100}
	require.NoError(t, e.BeforeSave(nil))
	assert.True(t, e.IsCompleted)
	assert.NotNil(t, e.CompletionDate)
	assert.NotNil(t, e.CompletedModules)

	now := time.Now()
	e = &Enrollment{StudentID: 1, CourseID: 1, Progress: 40, IsCompleted: true, CompletionDate: &now}
	require.NoError(t, e.BeforeSave(nil))
	assert.False(t, e.IsCompleted)
	assert.Nil(t, e.CompletionDate)

	e = &Enrollment{StudentID: 1, CourseID: 1, Progress: 140}
	assert.Error(t, e.BeforeSave(nil))
}
