package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
)

type casdoorTokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthenticator verifies tokens issued by Casdoor and maps them onto local users
type CasdoorAuthenticator struct {
	client      casdoorTokenParser
	userService services.UserService
}

func NewCasdoorAuthenticator(cfg config.CasdoorConfig, userService services.UserService) *CasdoorAuthenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorAuthenticator{
		client:      client,
		userService: userService,
	}
}

func (ca *CasdoorAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := ca.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrUnauthorized, err)
	}

	email := strings.TrimSpace(claims.User.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: token carries no email", services.ErrUnauthorized)
	}

	username := claims.User.Name
	if username == "" {
		username = claims.User.DisplayName
	}

	return ca.userService.ProvisionExternalUser(ctx, email, username, claims.User.IsAdmin || isCasdoorAdminType(claims.User.Type))
}

func isCasdoorAdminType(casdoorType string) bool {
	switch strings.ToLower(casdoorType) {
	case "admin", "administrator":
		return true
	default:
		return false
	}
}
