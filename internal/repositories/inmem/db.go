// Package inmem is a process-local storage backend. It backs STORAGE=memory and the tests.
package inmem

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type tables struct {
	seq uint

	users       map[uint]models.User
	courses     map[uint]models.Course
	modules     map[uint]models.Module
	notes       map[uint]models.Note
	completions map[uint]models.ModuleCompletion
	enrollments map[uint]models.Enrollment
	tests       map[uint]models.Test
	questions   map[uint]models.Question
	results     map[uint]models.TestResult
}

func newTables() *tables {
	return &tables{
		users:       map[uint]models.User{},
		courses:     map[uint]models.Course{},
		modules:     map[uint]models.Module{},
		notes:       map[uint]models.Note{},
		completions: map[uint]models.ModuleCompletion{},
		enrollments: map[uint]models.Enrollment{},
		tests:       map[uint]models.Test{},
		questions:   map[uint]models.Question{},
		results:     map[uint]models.TestResult{},
	}
}

// snapshot copies every table. Rows are stored by value and cloned on the way in,
// so a shallow map copy is enough.
func (t *tables) snapshot() *tables {
	return &tables{
		seq:         t.seq,
		users:       maps.Clone(t.users),
		courses:     maps.Clone(t.courses),
		modules:     maps.Clone(t.modules),
		notes:       maps.Clone(t.notes),
		completions: maps.Clone(t.completions),
		enrollments: maps.Clone(t.enrollments),
		tests:       maps.Clone(t.tests),
		questions:   maps.Clone(t.questions),
		results:     maps.Clone(t.results),
	}
}

func (t *tables) nextID() uint {
	t.seq++
	return t.seq
}

// DB holds the tables shared by every Repository view
type DB struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time
}

func NewDB() *DB {
	return &DB{data: newTables(), now: time.Now}
}

// Repository implements repositories.Repository on top of DB.
// Every call takes the DB lock, except inside WithTransaction where the lock
// is already held for the whole callback.
type Repository struct {
	db   *DB
	inTx bool
}

func NewRepository(db *DB) repositories.Repository {
	return &Repository{db: db}
}

// NewMemoryRepository returns a repository over a fresh, empty DB
func NewMemoryRepository() repositories.Repository {
	return NewRepository(NewDB())
}

func (r *Repository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.db.mu.Lock()
	return r.db.mu.Unlock
}

func (r *Repository) t() *tables {
	return r.db.data
}

func (r *Repository) User() repositories.UserRepository {
	return &userRepository{r}
}

func (r *Repository) Course() repositories.CourseRepository {
	return &courseRepository{r}
}

func (r *Repository) Completion() repositories.CompletionRepository {
	return &completionRepository{r}
}

func (r *Repository) Enrollment() repositories.EnrollmentRepository {
	return &enrollmentRepository{r}
}

func (r *Repository) Test() repositories.TestRepository {
	return &testRepository{r}
}

// WithTransaction serializes fn against every other caller and restores the
// previous state when fn fails or panics
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) (err error) {
	if r.inTx {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	saved := r.db.data.snapshot()
	committed := false
	defer func() {
		if !committed {
			r.db.data = saved
		}
	}()

	if err := fn(&Repository{db: r.db, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *Repository) Close() error {
	return nil
}

// ===== COPY HELPERS =====

func cloneUser(u models.User) models.User {
	u.EnrolledCourses = slices.Clone(u.EnrolledCourses)
	return u
}

func cloneEnrollment(e models.Enrollment) models.Enrollment {
	e.CompletedModules = slices.Clone(e.CompletedModules)
	if e.CompletionDate != nil {
		d := *e.CompletionDate
		e.CompletionDate = &d
	}
	e.Course = nil
	return e
}

func cloneQuestion(q models.Question) models.Question {
	q.Options = slices.Clone(q.Options)
	return q
}

func cloneResult(tr models.TestResult) models.TestResult {
	tr.Answers = slices.Clone(tr.Answers)
	return tr
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
