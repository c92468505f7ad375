package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
	tokens    *tokenManager
}

func NewUserService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator, auth AuthConfig) UserService {
	return &userService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
		tokens:    newTokenManager(auth),
	}
}

// Register creates an unapproved student. Access is granted later by an admin.
func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if errors := s.validator.GetBusinessValidator().ValidateRegister(req); len(errors) > 0 {
		return nil, errors
	}

	email := normalizeEmail(req.Email)
	exists, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:        strings.TrimSpace(req.Username),
		Email:           email,
		PasswordHash:    string(hash),
		Role:            models.RoleStudent,
		IsApproved:      false,
		EnrolledCourses: []uint{},
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Pending approvals are part of the admin stats
	cache.InvalidateStatsCache(ctx, s.cache, user.ID)

	s.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	user, err := s.repo.User().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsApproved && !user.IsAdmin() {
		return nil, ErrUserNotApproved
	}

	token, expiresAt, err := s.tokens.issue(user, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) ListPending(ctx context.Context) ([]*models.User, error) {
	role := models.RoleStudent
	approved := false
	users, _, err := s.repo.User().List(ctx, repositories.UserFilters{Role: &role, IsApproved: &approved})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	return users, nil
}

// Approve marks a signup approved and grants the given courses. On an already
// approved student it only grants courses.
func (s *userService) Approve(ctx context.Context, userID uint, req *ApproveUserRequest) (*models.User, error) {
	s.logger.Info("Approving user", "user_id", userID, "courses", req.CourseIDs)

	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	var user *models.User
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		user, err = tx.User().GetByID(ctx, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		if user.Role != models.RoleStudent {
			return ErrNotAStudent
		}
		if user.IsApproved && len(req.CourseIDs) == 0 {
			return ErrUserAlreadyApproved
		}

		if len(req.CourseIDs) > 0 {
			ids := slices.Compact(slices.Sorted(slices.Values(req.CourseIDs)))
			courses, err := tx.Course().GetByIDs(ctx, ids)
			if err != nil {
				return fmt.Errorf("failed to get courses: %w", err)
			}
			if len(courses) != len(ids) {
				return ErrCourseNotFound
			}
			user.GrantCourses(ids...)
		}

		user.IsApproved = true
		if err := tx.User().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateStatsCache(ctx, s.cache, userID)

	s.logger.Info("User approved", "user_id", userID, "enrolled_courses", len(user.EnrolledCourses))
	return user, nil
}

// Reject hard-deletes a pending signup. Approved users cannot be rejected.
func (s *userService) Reject(ctx context.Context, userID uint) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsApproved || user.IsAdmin() {
		return ErrUserAlreadyApproved
	}

	if err := s.repo.User().Delete(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	cache.InvalidateStatsCache(ctx, s.cache, userID)

	s.logger.Info("Pending user rejected", "user_id", userID)
	return nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *userService) ProvisionExternalUser(ctx context.Context, email, username string, admin bool) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: identity has no email", ErrUnauthorized)
	}

	user, err := s.repo.User().GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user = &models.User{
		Username:        strings.TrimSpace(username),
		Email:           email,
		Role:            models.RoleStudent,
		EnrolledCourses: []uint{},
	}
	if len(user.Username) < 3 {
		user.Username = "user-" + strings.SplitN(email, "@", 2)[0]
	}
	if admin {
		user.Role = models.RoleAdmin
		user.IsApproved = true
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		// Another request provisioned the same identity first
		if repositories.IsDuplicateError(err) {
			return s.repo.User().GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	cache.InvalidateStatsCache(ctx, s.cache, user.ID)

	s.logger.Info("External user provisioned", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
