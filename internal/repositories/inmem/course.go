package inmem

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type courseRepository struct {
	r *Repository
}

// assemble joins a stored course row with its modules and notes
func (t *tables) assemble(c models.Course) *models.Course {
	c.Modules = []models.Module{}
	for _, id := range sortedKeys(t.modules) {
		if m := t.modules[id]; m.CourseID == c.ID {
			m.CompletedBy = nil
			c.Modules = append(c.Modules, m)
		}
	}
	slices.SortStableFunc(c.Modules, func(a, b models.Module) int {
		return cmp.Compare(a.Position, b.Position)
	})

	c.Notes = []models.Note{}
	for _, id := range sortedKeys(t.notes) {
		if n := t.notes[id]; n.CourseID == c.ID {
			c.Notes = append(c.Notes, n)
		}
	}
	return &c
}

func (repo *courseRepository) Create(ctx context.Context, course *models.Course) error {
	defer repo.r.lock()()
	t := repo.r.t()

	for i := range course.Modules {
		course.Modules[i].Position = i
	}
	if err := course.BeforeSave(nil); err != nil {
		return err
	}

	now := repo.r.db.now()
	course.ID = t.nextID()
	course.CreatedAt, course.UpdatedAt = now, now
	for i := range course.Modules {
		m := &course.Modules[i]
		m.ID = t.nextID()
		m.CourseID = course.ID
		m.CreatedAt, m.UpdatedAt = now, now
		row := *m
		row.CompletedBy = nil
		t.modules[m.ID] = row
	}
	for i := range course.Notes {
		n := &course.Notes[i]
		n.ID = t.nextID()
		n.CourseID = course.ID
		n.CreatedAt, n.UpdatedAt = now, now
		t.notes[n.ID] = *n
	}

	row := *course
	row.Modules, row.Notes = nil, nil
	t.courses[course.ID] = row
	return nil
}

func (repo *courseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	c, ok := t.courses[id]
	if !ok {
		return nil, fmt.Errorf("get course: %w", repositories.ErrNotFound)
	}
	return t.assemble(c), nil
}

func (repo *courseRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Course, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	courses := make([]*models.Course, 0, len(ids))
	for _, id := range sortedKeys(t.courses) {
		if slices.Contains(ids, id) {
			courses = append(courses, t.assemble(t.courses[id]))
		}
	}
	return courses, nil
}

func (repo *courseRepository) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	search := strings.ToLower(strings.TrimSpace(filters.Search))
	var courses []*models.Course
	for _, id := range sortedKeys(t.courses) {
		c := t.courses[id]
		if filters.ActiveOnly && !c.IsActive {
			continue
		}
		if len(filters.IDs) > 0 && !slices.Contains(filters.IDs, id) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title), search) {
			continue
		}
		courses = append(courses, t.assemble(c))
	}

	if filters.SortBy == "title" {
		slices.SortStableFunc(courses, func(a, b *models.Course) int {
			return strings.Compare(a.Title, b.Title)
		})
	}
	if filters.SortOrder == "desc" || filters.SortOrder == "DESC" {
		slices.Reverse(courses)
	}

	total := int64(len(courses))
	return page(courses, filters.Limit, filters.Offset), total, nil
}

func (repo *courseRepository) AddModule(ctx context.Context, courseID uint, module *models.Module) error {
	defer repo.r.lock()()
	t := repo.r.t()

	c, ok := t.courses[courseID]
	if !ok {
		return fmt.Errorf("get course: %w", repositories.ErrNotFound)
	}
	course := t.assemble(c)

	now := repo.r.db.now()
	module.CourseID = courseID
	module.Position = len(course.Modules)
	module.CreatedAt, module.UpdatedAt = now, now
	if err := module.BeforeSave(nil); err != nil {
		return err
	}

	course.Modules = append(course.Modules, *module)
	if err := course.BeforeSave(nil); err != nil {
		return err
	}

	module.ID = t.nextID()
	row := *module
	row.CompletedBy = nil
	t.modules[module.ID] = row

	c.Duration = course.Duration
	c.UpdatedAt = now
	t.courses[courseID] = c
	return nil
}

func (repo *courseRepository) Deactivate(ctx context.Context, id uint) error {
	defer repo.r.lock()()
	t := repo.r.t()

	c, ok := t.courses[id]
	if !ok {
		return fmt.Errorf("deactivate course: %w", repositories.ErrNotFound)
	}
	c.IsActive = false
	t.courses[id] = c
	return nil
}

type completionRepository struct {
	r *Repository
}

func (repo *completionRepository) Create(ctx context.Context, completion *models.ModuleCompletion) error {
	defer repo.r.lock()()
	t := repo.r.t()

	if _, ok := t.modules[completion.ModuleID]; !ok {
		return fmt.Errorf("create module completion: %w (module)", repositories.ErrNotFound)
	}
	for _, c := range t.completions {
		if c.ModuleID == completion.ModuleID && c.UserID == completion.UserID {
			return fmt.Errorf("create module completion: %w (idx_module_completion_user)", repositories.ErrDuplicate)
		}
	}

	completion.ID = t.nextID()
	t.completions[completion.ID] = *completion
	return nil
}

func (repo *completionRepository) Get(ctx context.Context, moduleID, userID uint) (*models.ModuleCompletion, error) {
	defer repo.r.lock()()

	for _, c := range repo.r.t().completions {
		if c.ModuleID == moduleID && c.UserID == userID {
			out := c
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get module completion: %w", repositories.ErrNotFound)
}

func (repo *completionRepository) Delete(ctx context.Context, moduleID, userID uint) (bool, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	for id, c := range t.completions {
		if c.ModuleID == moduleID && c.UserID == userID {
			delete(t.completions, id)
			return true, nil
		}
	}
	return false, nil
}

func (repo *completionRepository) ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleCompletion, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	out := []*models.ModuleCompletion{}
	for _, id := range sortedKeys(t.completions) {
		if c := t.completions[id]; c.ModuleID == moduleID {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (repo *completionRepository) ListByUser(ctx context.Context, userID uint, moduleIDs []uint) ([]*models.ModuleCompletion, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	out := []*models.ModuleCompletion{}
	for _, id := range sortedKeys(t.completions) {
		c := t.completions[id]
		if c.UserID != userID {
			continue
		}
		if moduleIDs != nil && !slices.Contains(moduleIDs, c.ModuleID) {
			continue
		}
		out = append(out, &c)
	}
	return out, nil
}
