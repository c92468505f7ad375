package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	LogLevel slog.Level

	// Service-specific configurations
	Stats ServiceConfig
	Auth  AuthConfig

	// Global settings
	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AuthConfig controls local token issuing
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Dependencies groups the collaborators shared by every service
type Dependencies struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	progressService   ProgressService
	enrollmentService EnrollmentService
	gradingService    GradingService
	statsService      StatsService
	reportService     ReportService
	courseService     CourseService
	testService       TestService
	userService       UserService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	cm := deps.Cache
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NewMockEventPublisher(deps.Logger)
	}

	return &serviceManager{
		repo:      deps.Repo,
		cache:     cm,
		publisher: publisher,
		logger:    deps.Logger,
		validator: deps.Validator,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps Dependencies, jwtSecret string) ServiceManager {
	return NewServiceManager(deps, DefaultServiceManagerConfig(jwtSecret))
}

func DefaultServiceManagerConfig(jwtSecret string) ServiceManagerConfig {
	return ServiceManagerConfig{
		LogLevel: slog.LevelInfo,
		Stats: ServiceConfig{
			CacheEnabled: true,
			CacheTTL:     cache.StatsCacheConfig.TTL,
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
			TokenTTL:  24 * time.Hour,
		},
		DefaultTimeout: 30 * time.Second,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.config.Validate(); err != nil {
		return err
	}

	sm.initializeServices()

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	statsCache := sm.cache
	if !sm.config.Stats.CacheEnabled {
		statsCache = cache.NewCacheManager(nil)
	}

	sm.statsService = NewStatsService(sm.repo, statsCache, sm.config.Stats.CacheTTL, sm.logger)
	sm.logger.Info("Stats service initialized")

	sm.reportService = NewReportService(sm.statsService, sm.logger)
	sm.logger.Info("Report service initialized")

	sm.progressService = NewProgressService(sm.repo, sm.cache, sm.publisher, sm.logger)
	sm.logger.Info("Progress service initialized")

	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.cache, sm.publisher, sm.logger)
	sm.logger.Info("Enrollment service initialized")

	sm.gradingService = NewGradingService(sm.repo, sm.cache, sm.publisher, sm.logger, sm.validator)
	sm.logger.Info("Grading service initialized")

	sm.courseService = NewCourseService(sm.repo, sm.cache, sm.logger, sm.validator)
	sm.logger.Info("Course service initialized")

	sm.testService = NewTestService(sm.repo, sm.cache, sm.logger, sm.validator)
	sm.logger.Info("Test service initialized")

	sm.userService = NewUserService(sm.repo, sm.cache, sm.logger, sm.validator, sm.config.Auth)
	sm.logger.Info("User service initialized")
}

// initializedService reads a service field under the read lock. Using a service
// before Initialize is a programming error and panics.
func initializedService[T any](sm *serviceManager, field *T) T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return *field
}

func (sm *serviceManager) Progress() ProgressService {
	return initializedService(sm, &sm.progressService)
}
func (sm *serviceManager) Enrollment() EnrollmentService {
	return initializedService(sm, &sm.enrollmentService)
}
func (sm *serviceManager) Grading() GradingService { return initializedService(sm, &sm.gradingService) }
func (sm *serviceManager) Stats() StatsService     { return initializedService(sm, &sm.statsService) }
func (sm *serviceManager) Report() ReportService   { return initializedService(sm, &sm.reportService) }
func (sm *serviceManager) Course() CourseService   { return initializedService(sm, &sm.courseService) }
func (sm *serviceManager) Test() TestService       { return initializedService(sm, &sm.testService) }
func (sm *serviceManager) User() UserService       { return initializedService(sm, &sm.userService) }

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	// Redis is optional, a failing cache only degrades to direct scans
	if sm.cache.Enabled() {
		if err := sm.cache.HealthCheck(ctx); err != nil {
			sm.logger.Warn("Cache health check failed", "error", err)
		}
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if repoManager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	} else if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== CONFIGURATION VALIDATION =====

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	var errors []string

	if config.DefaultTimeout <= 0 {
		errors = append(errors, "default timeout must be positive")
	}

	if config.Stats.CacheTTL < 0 {
		errors = append(errors, "stats: cache TTL cannot be negative")
	}

	if config.Auth.JWTSecret == "" {
		errors = append(errors, "auth: jwt secret is required")
	}

	if config.Auth.TokenTTL <= 0 {
		errors = append(errors, "auth: token TTL must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}
