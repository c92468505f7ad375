package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

// PostgreSQLRepository is the gorm backed repositories.Repository. The same type
// serves the root connection and the transaction scoped views built by WithTransaction.
type PostgreSQLRepository struct {
	db    *gorm.DB
	redis *redis.Client
	inTx  bool

	user       repositories.UserRepository
	course     repositories.CourseRepository
	completion repositories.CompletionRepository
	enrollment repositories.EnrollmentRepository
	test       repositories.TestRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	AutoMigrate bool
}

// bind wires every sub-repository to db. Inside a transaction the course
// repository bypasses its read cache.
func bind(db *gorm.DB, redisClient *redis.Client, inTx bool) *PostgreSQLRepository {
	r := &PostgreSQLRepository{db: db, redis: redisClient, inTx: inTx}
	r.user = NewUserPostgreSQL(db)
	if inTx {
		r.course = newCourseTx(db, redisClient)
	} else {
		r.course = NewCoursePostgreSQL(db, redisClient)
	}
	r.completion = NewCompletionPostgreSQL(db)
	r.enrollment = NewEnrollmentPostgreSQL(db)
	r.test = NewTestPostgreSQL(db)
	return r
}

func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	return bind(config.DB, config.RedisClient, false)
}

// schema lists every table; the unique indexes behind the one-completion,
// one-enrollment and one-result rules are declared on the models
var schema = []interface{}{
	&models.User{},
	&models.Course{},
	&models.Module{},
	&models.ModuleCompletion{},
	&models.Note{},
	&models.Enrollment{},
	&models.Test{},
	&models.Question{},
	&models.TestResult{},
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schema...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }
func (r *PostgreSQLRepository) Course() repositories.CourseRepository         { return r.course }
func (r *PostgreSQLRepository) Completion() repositories.CompletionRepository { return r.completion }
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *PostgreSQLRepository) Test() repositories.TestRepository             { return r.test }

// WithTransaction runs fn on repositories bound to one database transaction.
// Nested calls join the outer transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx, r.redis, true))
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the database pool and the Redis client
func (r *PostgreSQLRepository) Close() error {
	var errs []error
	if sqlDB, err := r.db.DB(); err != nil {
		errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RepositoryManager owns the lifecycle of a PostgreSQLRepository
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

// Initialize checks the database connection, migrates when configured to and
// builds the repository. Redis is optional and not checked here.
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return errors.New("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.AutoMigrate {
		if err := Migrate(rm.config.DB); err != nil {
			return err
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return errors.New("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}

var _ repositories.Repository = (*PostgreSQLRepository)(nil)

// cacheFor is shared by repositories that memoize reads
func cacheFor(redisClient *redis.Client) *cache.CacheManager {
	return cache.NewCacheManager(redisClient)
}
