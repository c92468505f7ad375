package inmem

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type userRepository struct {
	r *Repository
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (repo *userRepository) Create(ctx context.Context, user *models.User) error {
	defer repo.r.lock()()
	t := repo.r.t()

	user.Email = normalizeEmail(user.Email)
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	for _, u := range t.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w (email)", repositories.ErrDuplicate)
		}
	}

	now := repo.r.db.now()
	user.ID = t.nextID()
	user.CreatedAt, user.UpdatedAt = now, now
	t.users[user.ID] = cloneUser(*user)
	return nil
}

func (repo *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer repo.r.lock()()

	u, ok := repo.r.t().users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", repositories.ErrNotFound)
	}
	out := cloneUser(u)
	return &out, nil
}

func (repo *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer repo.r.lock()()

	email = normalizeEmail(email)
	for _, u := range repo.r.t().users {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", repositories.ErrNotFound)
}

func (repo *userRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	users := make([]*models.User, 0, len(ids))
	for _, id := range sortedKeys(t.users) {
		for _, want := range ids {
			if id == want {
				u := cloneUser(t.users[id])
				users = append(users, &u)
				break
			}
		}
	}
	return users, nil
}

func (repo *userRepository) Update(ctx context.Context, user *models.User) error {
	defer repo.r.lock()()
	t := repo.r.t()

	existing, ok := t.users[user.ID]
	if !ok {
		return fmt.Errorf("update user: %w", repositories.ErrNotFound)
	}
	user.Email = normalizeEmail(user.Email)
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	for id, u := range t.users {
		if id != user.ID && u.Email == user.Email {
			return fmt.Errorf("update user: %w (email)", repositories.ErrDuplicate)
		}
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = repo.r.db.now()
	t.users[user.ID] = cloneUser(*user)
	return nil
}

func (repo *userRepository) Delete(ctx context.Context, id uint) error {
	defer repo.r.lock()()
	t := repo.r.t()

	if _, ok := t.users[id]; !ok {
		return fmt.Errorf("delete user: %w", repositories.ErrNotFound)
	}
	delete(t.users, id)
	return nil
}

func (repo *userRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	q := strings.ToLower(strings.TrimSpace(filters.Query))
	var users []*models.User
	for _, id := range sortedKeys(t.users) {
		u := t.users[id]
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		if filters.IsApproved != nil && u.IsApproved != *filters.IsApproved {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Username), q) && !strings.Contains(u.Email, q) {
			continue
		}
		c := cloneUser(u)
		users = append(users, &c)
	}

	total := int64(len(users))
	return page(users, filters.Limit, filters.Offset), total, nil
}

func (repo *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	defer repo.r.lock()()

	email = normalizeEmail(email)
	for _, u := range repo.r.t().users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}
