package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/repositories/inmem"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

const testPassword = "secret123"

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	t         *testing.T
	ctx       context.Context
	router    *gin.Engine
	repo      repositories.Repository
	services  services.ServiceManager
	publisher *events.MockEventPublisher

	seq int
}

func newAPIFixture(t *testing.T) *apiFixture {
	return newAPIFixtureWith(t, nil)
}

// newAPIFixtureWith wires the full router. A nil authenticator means locally issued tokens.
func newAPIFixtureWith(t *testing.T, authenticator Authenticator) *apiFixture {
	t.Helper()

	slogLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := inmem.NewMemoryRepository()
	publisher := events.NewMockEventPublisher(slogLogger)

	sm := services.NewDefaultServiceManager(services.Dependencies{
		Repo:      repo,
		Publisher: publisher,
		Logger:    slogLogger,
		Validator: validator.New(),
	}, "handler-test-secret")
	require.NoError(t, sm.Initialize(context.Background()))

	if authenticator == nil {
		authenticator = ChainAuthenticator{sm.User()}
	}

	logger := utils.NewSlogLogger(slogLogger)
	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, authenticator, logger).SetupRoutes(router)

	return &apiFixture{
		t:         t,
		ctx:       context.Background(),
		router:    router,
		repo:      repo,
		services:  sm,
		publisher: publisher,
	}
}

func (a *apiFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *apiFixture) user(role models.UserRole, approved bool, courseIDs ...uint) *models.User {
	a.t.Helper()
	a.seq++

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(a.t, err)

	user := &models.User{
		Username:        fmt.Sprintf("%s%d", role, a.seq),
		Email:           fmt.Sprintf("%s%d@example.com", role, a.seq),
		PasswordHash:    string(hash),
		Role:            role,
		IsApproved:      approved,
		EnrolledCourses: courseIDs,
	}
	require.NoError(a.t, a.repo.User().Create(a.ctx, user))
	return user
}

func (a *apiFixture) login(user *models.User) string {
	a.t.Helper()
	resp, err := a.services.User().Login(a.ctx, &services.LoginRequest{Email: user.Email, Password: testPassword})
	require.NoError(a.t, err)
	return resp.Token
}

func (a *apiFixture) course(modules int) *models.Course {
	a.t.Helper()
	a.seq++

	course := &models.Course{Title: fmt.Sprintf("Course %d", a.seq), IsActive: true}
	for i := 0; i < modules; i++ {
		course.Modules = append(course.Modules, models.Module{
			Title:      fmt.Sprintf("Module %d", i+1),
			YoutubeURL: fmt.Sprintf("https://youtu.be/clip%04d", i),
			Duration:   15,
		})
	}
	require.NoError(a.t, a.repo.Course().Create(a.ctx, course))
	return course
}

func (a *apiFixture) enroll(studentID, courseID uint) {
	a.t.Helper()
	require.NoError(a.t, a.repo.Enrollment().Create(a.ctx, models.NewEnrollment(studentID, courseID)))
}

func (a *apiFixture) test(courseID uint, points ...int) *models.Test {
	a.t.Helper()
	test := &models.Test{CourseID: courseID, Title: "Quiz"}
	for i, p := range points {
		test.Questions = append(test.Questions, models.Question{
			Text:          fmt.Sprintf("Q%d", i+1),
			Options:       []string{"yes", "no"},
			CorrectAnswer: "yes",
			Points:        p,
		})
	}
	require.NoError(a.t, a.repo.Test().Create(a.ctx, test))
	return test
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func path(format string, args ...interface{}) string {
	return "/api/v1" + fmt.Sprintf(format, args...)
}
