package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type CompletionPostgreSQL struct {
	db *gorm.DB
}

func NewCompletionPostgreSQL(db *gorm.DB) repositories.CompletionRepository {
	return &CompletionPostgreSQL{db: db}
}

// Create relies on idx_module_completion_user to reject a second entry for the same user
func (r *CompletionPostgreSQL) Create(ctx context.Context, completion *models.ModuleCompletion) error {
	if err := r.db.WithContext(ctx).Create(completion).Error; err != nil {
		return wrapError("create module completion", err)
	}
	return nil
}

func (r *CompletionPostgreSQL) Get(ctx context.Context, moduleID, userID uint) (*models.ModuleCompletion, error) {
	var completion models.ModuleCompletion
	if err := r.db.WithContext(ctx).
		Where("module_id = ? AND user_id = ?", moduleID, userID).
		First(&completion).Error; err != nil {
		return nil, wrapError("get module completion", err)
	}
	return &completion, nil
}

func (r *CompletionPostgreSQL) Delete(ctx context.Context, moduleID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("module_id = ? AND user_id = ?", moduleID, userID).
		Delete(&models.ModuleCompletion{})
	if result.Error != nil {
		return false, wrapError("delete module completion", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *CompletionPostgreSQL) ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleCompletion, error) {
	var completions []*models.ModuleCompletion
	if err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("completed_at ASC").
		Find(&completions).Error; err != nil {
		return nil, wrapError("list module completions", err)
	}
	return completions, nil
}

func (r *CompletionPostgreSQL) ListByUser(ctx context.Context, userID uint, moduleIDs []uint) ([]*models.ModuleCompletion, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if moduleIDs != nil {
		if len(moduleIDs) == 0 {
			return []*models.ModuleCompletion{}, nil
		}
		query = query.Where("module_id IN ?", moduleIDs)
	}

	var completions []*models.ModuleCompletion
	if err := query.Order("completed_at ASC").Find(&completions).Error; err != nil {
		return nil, wrapError("list user completions", err)
	}
	return completions, nil
}
