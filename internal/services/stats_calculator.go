package services

import (
	"math"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// AverageScore is the mean of score/maxScore*100 over results. Results with a
// zero maxScore have no percentage and are skipped. Empty input yields 0.
func AverageScore(results []*models.TestResult) float64 {
	var sum float64
	var n int
	for _, r := range results {
		pct, ok := r.Percentage()
		if !ok {
			continue
		}
		sum += pct
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// OverallProgressAverage is the mean progress over enrollment rows. Every row is
// one term, so students with more enrollments weigh more.
func OverallProgressAverage(enrollments []*models.Enrollment) float64 {
	if len(enrollments) == 0 {
		return 0
	}
	var sum float64
	for _, e := range enrollments {
		sum += float64(e.Progress)
	}
	return sum / float64(len(enrollments))
}

// CompletionRate is the percentage of enrollments with progress >= 100
func CompletionRate(enrollments []*models.Enrollment) float64 {
	if len(enrollments) == 0 {
		return 0
	}
	return 100 * float64(countCompleted(enrollments)) / float64(len(enrollments))
}

func countCompleted(enrollments []*models.Enrollment) int {
	n := 0
	for _, e := range enrollments {
		if e.Progress >= 100 {
			n++
		}
	}
	return n
}

// roundStat rounds to two decimals for presentation
func roundStat(v float64) float64 {
	return math.Round(v*100) / 100
}
