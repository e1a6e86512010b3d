package services

import (
	"context"
	"strings"
	"time"

	"bloghive/internal/models"
	"bloghive/internal/repositories"
	"bloghive/internal/utils"
)

// UserService covers login, token refresh and self-service account deletion.
type UserService interface {
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error)
	DeleteAccount(ctx context.Context, email, password string, userID int) error
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type userService struct {
	repo       repositories.UserRepository
	auth       AuthService
	tokens     TokenService
	refreshTTL time.Duration
	now        func() time.Time
}

func NewUserService(repo repositories.UserRepository, auth AuthService, tokens TokenService, refreshTTL time.Duration) UserService {
	return &userService{repo: repo, auth: auth, tokens: tokens, refreshTTL: refreshTTL, now: time.Now}
}

func (s *userService) issueTokens(ctx context.Context, u *models.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(u)
	if err != nil {
		return nil, Infra("sign access token", err)
	}
	refresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, Infra("generate refresh token", err)
	}
	if err := s.repo.UpdateRefresh(ctx, u.ID, refresh, s.now().Add(s.refreshTTL)); err != nil {
		return nil, Infra("store refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, Validation("Email and password are required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, Infra("lookup account", err)
	}
	if u == nil {
		return nil, nil, ErrInvalidCredential
	}
	// ban is checked before the password
	if u.Banned {
		return nil, nil, ErrBanned
	}
	if !s.auth.CheckPassword(u.PasswordHash, password) {
		return nil, nil, ErrInvalidCredential
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, nil, Validation("Refresh token is required")
	}
	next, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, nil, Infra("generate refresh token", err)
	}
	u, err := s.repo.RotateRefresh(ctx, refreshToken, next, s.now().Add(s.refreshTTL))
	if err != nil {
		return nil, nil, Infra("rotate refresh token", err)
	}
	if u == nil {
		return nil, nil, &Error{Kind: KindAuth, Code: ErrInvalidCredential.Code, Message: "Invalid or expired refresh token"}
	}
	if u.Banned {
		return nil, nil, ErrBanned
	}
	access, err := s.tokens.IssueAccess(u)
	if err != nil {
		return nil, nil, Infra("sign access token", err)
	}
	return u, &TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// DeleteAccount removes the account and everything it owns after re-checking the password.
// A non-zero userID must match the account found by email.
func (s *userService) DeleteAccount(ctx context.Context, email, password string, userID int) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Validation("Email and password are required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return Infra("lookup account", err)
	}
	if u == nil {
		return NotFound("User not found")
	}
	if userID != 0 && userID != u.ID {
		return ErrInvalidCredential
	}
	if !s.auth.CheckPassword(u.PasswordHash, password) {
		return ErrInvalidCredential
	}
	n, err := s.repo.DeleteAccount(ctx, u.ID)
	if err != nil {
		return Infra("delete account", err)
	}
	if n == 0 {
		return NotFound("User not found")
	}
	utils.Logger.WithField("user_id", u.ID).Info("[auth][delete-account] account deleted")
	return nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, Infra("lookup account", err)
	}
	if u == nil {
		return nil, NotFound("User not found")
	}
	return u, nil
}
