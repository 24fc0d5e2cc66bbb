package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zuvomo/internal/auth"
	"zuvomo/internal/model"
	"zuvomo/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserAlreadyExists is returned when trying to register an existing user.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// FieldErrors is a field-level validation failure.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SignupInput carries a self-service registration. Investor and project
// owner fields are optional.
type SignupInput struct {
	Email              string
	Password           string
	FirstName          string
	LastName           string
	Role               model.Role
	Company            string
	InvestmentFocus    string
	InvestmentRangeMin *decimal.Decimal
	InvestmentRangeMax *decimal.Decimal
	PortfolioSize      *int
}

// Validate checks the rules the request binding cannot express.
func (in SignupInput) Validate() error {
	fields := FieldErrors{}
	if in.Role != model.RoleProjectOwner && in.Role != model.RoleInvestor {
		fields["user_type"] = "must be project_owner or investor"
	}
	if in.InvestmentRangeMin != nil && in.InvestmentRangeMin.IsNegative() {
		fields["investment_range_min"] = "must not be negative"
	}
	if in.InvestmentRangeMin != nil && in.InvestmentRangeMax != nil && in.InvestmentRangeMin.GreaterThan(*in.InvestmentRangeMax) {
		fields["investment_range_max"] = "must be greater than or equal to investment_range_min"
	}
	if in.PortfolioSize != nil && *in.PortfolioSize < 0 {
		fields["portfolio_size"] = "must not be negative"
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

// AuthResult is a successful login or signup.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Signup creates a pending account and signs it in.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	// If error is not "record not found", return it (could be a database error)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:              email,
		PasswordHash:       string(hashedPassword),
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Role:               in.Role,
		ApprovalStatus:     model.ApprovalPending,
		Company:            in.Company,
		InvestmentFocus:    in.InvestmentFocus,
		InvestmentRangeMin: in.InvestmentRangeMin,
		InvestmentRangeMax: in.InvestmentRangeMax,
		PortfolioSize:      in.PortfolioSize,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Login authenticates a user and returns access and refresh tokens.
// Pending and rejected users may sign in; access gating happens per route.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", ErrInvalidRefreshToken
	}

	// Reload so the new access token carries the current role.
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the refresh token and blacklists the access token when
// either is supplied.
func (s *authService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if accessToken != "" {
		if claims, err := s.jwtService.ValidateAccessToken(accessToken); err == nil && claims.ExpiresAt != nil {
			_ = s.tokenStore.BlacklistAccessToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
		}
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, claims.ID)
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*AuthResult, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
