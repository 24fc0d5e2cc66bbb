package apiclient

import (
	"context"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"zuvomo/internal/model"
	"zuvomo/internal/session"
)

// SignupRequest is the signup payload. Investor and project owner fields
// are optional.
type SignupRequest struct {
	Email              string           `json:"email" validate:"required,email"`
	Password           string           `json:"password" validate:"required,min=6"`
	FirstName          string           `json:"first_name" validate:"required"`
	LastName           string           `json:"last_name,omitempty"`
	UserType           model.Role       `json:"user_type" validate:"required,oneof=project_owner investor"`
	Company            string           `json:"company,omitempty"`
	InvestmentFocus    string           `json:"investment_focus,omitempty"`
	InvestmentRangeMin *decimal.Decimal `json:"investment_range_min,omitempty"`
	InvestmentRangeMax *decimal.Decimal `json:"investment_range_max,omitempty"`
	PortfolioSize      *int             `json:"portfolio_size,omitempty" validate:"omitempty,min=0"`
}

// AuthService maps authentication intents onto API calls. Successful
// mutating calls write the session; it never holds per-user state itself.
type AuthService interface {
	Login(ctx context.Context, h *session.Handle, email, password string) (*model.User, error)
	Signup(ctx context.Context, h *session.Handle, req SignupRequest) (*model.User, error)
	GetCurrentUser(ctx context.Context, h *session.Handle) (*model.User, error)
	RefreshToken(ctx context.Context, h *session.Handle) bool
	Logout(ctx context.Context, h *session.Handle)
}

type authResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

type authService struct {
	client   *Client
	validate *validator.Validate
}

// NewAuthService creates an AuthService over client.
func NewAuthService(client *Client) AuthService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &authService{client: client, validate: v}
}

// Login signs in and stores the issued tokens and user.
func (s *authService) Login(ctx context.Context, h *session.Handle, email, password string) (*model.User, error) {
	var resp authResponse
	err := s.client.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, asValidation(err)
	}

	h.Save(ctx, session.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, resp.User)
	return resp.User, nil
}

// Signup validates locally, registers, and stores the issued tokens and
// user. Nothing is written to the session when validation fails.
func (s *authService) Signup(ctx context.Context, h *session.Handle, req SignupRequest) (*model.User, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	var resp authResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return nil, ErrDuplicateEmail
		}
		return nil, asValidation(err)
	}

	h.Save(ctx, session.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, resp.User)
	return resp.User, nil
}

// GetCurrentUser fetches the user behind the stored access token and
// refreshes the cached copy.
func (s *authService) GetCurrentUser(ctx context.Context, h *session.Handle) (*model.User, error) {
	token := h.Read(ctx).AccessToken
	if token == "" {
		return nil, ErrUnauthorized
	}

	var resp struct {
		User *model.User `json:"user"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrUnauthorized
	}
	h.SetUser(ctx, resp.User)
	return resp.User, nil
}

// RefreshToken exchanges the stored refresh token for a new access token.
// False means the caller should treat the session as over.
func (s *authService) RefreshToken(ctx context.Context, h *session.Handle) bool {
	refresh := h.Read(ctx).RefreshToken
	if refresh == "" {
		return false
	}

	var resp authResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	}, &resp); err != nil || resp.AccessToken == "" {
		return false
	}
	h.SetAccessToken(ctx, resp.AccessToken)
	return true
}

// Logout tells the API, then clears the session whatever the API said.
func (s *authService) Logout(ctx context.Context, h *session.Handle) {
	current := h.Read(ctx)
	if current.AccessToken != "" || current.RefreshToken != "" {
		err := s.client.do(ctx, http.MethodPost, "/auth/logout", current.AccessToken, map[string]string{
			"refresh_token": current.RefreshToken,
		}, nil)
		if err != nil {
			log.Printf("session %s: api logout: %v", h.ID(), err)
		}
	}
	if err := h.Clear(ctx); err != nil {
		log.Printf("session %s: clear: %v", h.ID(), err)
	}
}

func (s *authService) check(req SignupRequest) error {
	fields := map[string]string{}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = "is " + describe(fe)
		}
	}
	if req.InvestmentRangeMin != nil && req.InvestmentRangeMax != nil && req.InvestmentRangeMin.GreaterThan(*req.InvestmentRangeMax) {
		fields["investment_range_max"] = "must be greater than or equal to investment_range_min"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "not a valid email address"
	case "min":
		return "too short"
	case "oneof":
		return "not one of " + fe.Param()
	default:
		return "invalid"
	}
}
