package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Role       *models.UserRole
	IsApproved *bool
	Query      string // Search query for name or email
	Limit      int    // Page size
	Offset     int    // Offset for pagination
}

// UserRepository interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
