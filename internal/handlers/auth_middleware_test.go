package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
)

type authenticatorFunc func(ctx context.Context, token string) (*models.User, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

type fakeCasdoorParser struct {
	claims map[string]*casdoorsdk.Claims
}

func (p fakeCasdoorParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if c, ok := p.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("signature is invalid")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "Basic abc", ok: false},
		{header: "Bearer", ok: false},
		{header: "", ok: false},
		{header: "Bearer a b", ok: false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestChainAuthenticator(t *testing.T) {
	user := &models.User{ID: 7, Role: models.RoleStudent}
	reject := authenticatorFunc(func(context.Context, string) (*models.User, error) {
		return nil, services.ErrUnauthorized
	})
	accept := authenticatorFunc(func(_ context.Context, token string) (*models.User, error) {
		if token == "good" {
			return user, nil
		}
		return nil, errors.New("unknown token")
	})

	chain := ChainAuthenticator{reject, accept}

	got, err := chain.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = chain.Authenticate(context.Background(), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = ChainAuthenticator{}.Authenticate(context.Background(), "good")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	pendingStudent := &models.User{ID: 1, Email: "p@example.com", Role: models.RoleStudent}
	a := newAPIFixtureWith(t, authenticatorFunc(func(_ context.Context, token string) (*models.User, error) {
		if token == "pending" {
			return pendingStudent, nil
		}
		return nil, services.ErrUnauthorized
	}))

	w := a.do(http.MethodGet, path("/courses"), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodGet, path("/courses"), "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodGet, path("/courses"), "pending", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Message, "awaiting approval")

	// Unapproved users may still see who they are
	w = a.do(http.MethodGet, path("/auth/me"), "pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCasdoorAuthenticator(t *testing.T) {
	a := newAPIFixture(t)

	parser := fakeCasdoorParser{claims: map[string]*casdoorsdk.Claims{
		"student-token": {User: casdoorsdk.User{Name: "casey", Email: "Casey@Example.com", Type: "normal-user"}},
		"admin-token":   {User: casdoorsdk.User{Name: "root", Email: "root@example.com", IsAdmin: true}},
		"typed-admin":   {User: casdoorsdk.User{Name: "ops", Email: "ops@example.com", Type: "Administrator"}},
		"no-email":      {User: casdoorsdk.User{Name: "anon"}},
	}}
	ca := &CasdoorAuthenticator{client: parser, userService: a.services.User()}

	student, err := ca.Authenticate(a.ctx, "student-token")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.False(t, student.IsApproved)

	again, err := ca.Authenticate(a.ctx, "student-token")
	require.NoError(t, err)
	assert.Equal(t, student.ID, again.ID, "first sight provisions, later logins reuse the user")

	admin, err := ca.Authenticate(a.ctx, "admin-token")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsApproved)

	typed, err := ca.Authenticate(a.ctx, "typed-admin")
	require.NoError(t, err)
	assert.True(t, typed.IsAdmin())

	_, err = ca.Authenticate(a.ctx, "no-email")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = ca.Authenticate(a.ctx, "forged")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}
