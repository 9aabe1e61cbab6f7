package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/auth"
)

// AuthService authenticates tenants for the management API. The chat
// pipeline itself never authenticates; it trusts the channel gateway's
// sender identity.
type AuthService struct {
	tenantRepo identity.TenantRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	tenantRepo identity.TenantRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tenantRepo: tenantRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// LoginResult contains tokens and tenant info after authentication
type LoginResult struct {
	Tenant *TenantDTO      `json:"tenant"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// Login authenticates a tenant and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	canonical := identity.CanonicalChannelIdentity(input.ChannelIdentity)

	tenant, err := s.tenantRepo.FindByChannelIdentity(ctx, canonical)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown identity",
				zap.String("channel_identity", canonical))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid identity or password")
		}
		return nil, err
	}

	if !tenant.IsActive() {
		s.logger.Warn("Login attempt for disabled tenant",
			zap.String("tenant_id", tenant.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	}

	if !tenant.VerifyPassword(input.Password) {
		s.logger.Warn("Failed login attempt",
			zap.String("tenant_id", tenant.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid identity or password")
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:     tenant.ID,
		BusinessName: tenant.BusinessName,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tenant logged in", zap.String("tenant_id", tenant.ID.String()))

	return &LoginResult{
		Tenant: toTenantDTO(tenant),
		Tokens: tokens,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	tokens, err := s.jwtService.RefreshTokenPair(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}
	return tokens, nil
}
