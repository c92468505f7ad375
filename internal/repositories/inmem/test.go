package inmem

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type testRepository struct {
	r *Repository
}

func (t *tables) assembleTest(row models.Test) *models.Test {
	row.Questions = []models.Question{}
	for _, id := range sortedKeys(t.questions) {
		if q := t.questions[id]; q.TestID == row.ID {
			row.Questions = append(row.Questions, cloneQuestion(q))
		}
	}
	row.Results = []models.TestResult{}
	for _, id := range sortedKeys(t.results) {
		if tr := t.results[id]; tr.TestID == row.ID {
			row.Results = append(row.Results, cloneResult(tr))
		}
	}
	return &row
}

func (repo *testRepository) Create(ctx context.Context, test *models.Test) error {
	defer repo.r.lock()()
	t := repo.r.t()

	if err := test.BeforeSave(nil); err != nil {
		return err
	}

	now := repo.r.db.now()
	test.ID = t.nextID()
	test.CreatedAt, test.UpdatedAt = now, now
	for i := range test.Questions {
		q := &test.Questions[i]
		q.ID = t.nextID()
		q.TestID = test.ID
		t.questions[q.ID] = cloneQuestion(*q)
	}
	for i := range test.Results {
		tr := &test.Results[i]
		tr.ID = t.nextID()
		tr.TestID = test.ID
		t.results[tr.ID] = cloneResult(*tr)
	}

	row := *test
	row.Questions, row.Results = nil, nil
	t.tests[test.ID] = row
	return nil
}

func (repo *testRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	row, ok := t.tests[id]
	if !ok {
		return nil, fmt.Errorf("get test: %w", repositories.ErrNotFound)
	}
	return t.assembleTest(row), nil
}

func (repo *testRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	var tests []*models.Test
	for _, id := range sortedKeys(t.tests) {
		row := t.tests[id]
		if filters.CourseID != nil && row.CourseID != *filters.CourseID {
			continue
		}
		full := t.assembleTest(row)
		full.Results = nil
		tests = append(tests, full)
	}

	total := int64(len(tests))
	return page(tests, filters.Limit, filters.Offset), total, nil
}

func (repo *testRepository) SaveResult(ctx context.Context, result *models.TestResult) error {
	defer repo.r.lock()()
	t := repo.r.t()

	if _, ok := t.tests[result.TestID]; !ok {
		return fmt.Errorf("save test result: %w (test)", repositories.ErrNotFound)
	}
	for id, tr := range t.results {
		if id != result.ID && tr.TestID == result.TestID && tr.StudentID == result.StudentID {
			return fmt.Errorf("save test result: %w (idx_test_result_student)", repositories.ErrDuplicate)
		}
	}
	if err := result.BeforeSave(nil); err != nil {
		return err
	}

	if result.ID == 0 {
		result.ID = t.nextID()
	} else if _, ok := t.results[result.ID]; !ok {
		return fmt.Errorf("save test result: %w", repositories.ErrNotFound)
	}
	t.results[result.ID] = cloneResult(*result)
	return nil
}

func (repo *testRepository) ListResults(ctx context.Context, filters repositories.ResultFilters) ([]*models.TestResult, error) {
	defer repo.r.lock()()
	t := repo.r.t()

	out := []*models.TestResult{}
	for _, id := range sortedKeys(t.results) {
		tr := t.results[id]
		if filters.TestID != nil && tr.TestID != *filters.TestID {
			continue
		}
		if filters.StudentID != nil && tr.StudentID != *filters.StudentID {
			continue
		}
		c := cloneResult(tr)
		out = append(out, &c)
	}
	return out, nil
}
