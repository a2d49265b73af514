package service

import (
	"context"
	"time"

	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/config"
	"github.com/spec-kit/org-directory/internal/domain"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// LoginResult is returned on successful operator login.
type LoginResult struct {
	Operator  domain.Operator
	Token     string
	ExpiresAt time.Time
}

// AuthService authenticates configured operators.
type AuthService struct {
	operators *auth.OperatorDirectory
	tokenMgr  *auth.TokenManager
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Operators    *auth.OperatorDirectory
	TokenManager *auth.TokenManager
}

// NewAuthService builds the service. A missing token manager is derived
// from cfg.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	operators := deps.Operators
	if operators == nil {
		operators = auth.NewOperatorDirectory(cfg.Auth.Operators)
	}
	return &AuthService{operators: operators, tokenMgr: tokens}
}

// Login checks the operator's password and issues an access token.
func (s *AuthService) Login(_ context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	op, ok := s.operators.Lookup(email)
	if !ok {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	// A malformed stored hash is treated like a wrong password.
	if err := auth.ComparePassword(op.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(op)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Operator: op, Token: token, ExpiresAt: exp}, nil
}
