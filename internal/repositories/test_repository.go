package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// TestRepository interface for tests and their results
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	// GetByID returns the test with questions and results
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)

	// SaveResult inserts or updates one result. At most one result exists per
	// (test, student); inserting a second one fails with ErrDuplicate.
	SaveResult(ctx context.Context, result *models.TestResult) error
	ListResults(ctx context.Context, filters ResultFilters) ([]*models.TestResult, error)
}
