package usecase

import (
	"context"

	authdomain "github.com/jindalsaj/aura/internal/auth/domain"
	authdto "github.com/jindalsaj/aura/internal/auth/dto"
)

// AuthUsecase handles account lifecycle and token issuance.
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	// GoogleSignIn exchanges an OAuth authorization code, signs the user in
	// (creating the account on first sign-in) and provisions credentials for
	// the Google-backed sources from the same consent.
	GoogleSignIn(ctx context.Context, code string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
}
