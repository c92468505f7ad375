package repositories

import "context"

// Repository aggregates every repository of the learning domain
type Repository interface {
	// User domain
	User() UserRepository

	// Course domain
	Course() CourseRepository
	Completion() CompletionRepository

	// Progress domain
	Enrollment() EnrollmentRepository

	// Test domain
	Test() TestRepository

	// Transaction support. Repositories handed to fn share one transaction;
	// returning an error rolls every write back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
