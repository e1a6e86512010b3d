package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"bloghive/internal/models"
	"bloghive/internal/repositories"
	"bloghive/internal/utils"
)

const (
	DefaultMaxAttempts = 3
	minPasswordLength  = 6
)

// Throttle limits how often a code can be issued for one key. limiter.RedisLimiter satisfies it.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// VerificationService is the OTP state machine for signup and password reset.
type VerificationService interface {
	SendSignupOTP(ctx context.Context, email, fullName, password string) error
	VerifySignupOTP(ctx context.Context, email, code string) (*models.User, error)

	SendResetOTP(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type verificationService struct {
	users    repositories.UserRepository
	store    repositories.VerificationRepository
	sender   NotificationSender
	auth     AuthService
	throttle Throttle // nil means unlimited

	maxAttempts int
	newCode     func() (string, error)
	validate    *validator.Validate
}

func NewVerificationService(
	users repositories.UserRepository,
	store repositories.VerificationRepository,
	sender NotificationSender,
	auth AuthService,
	throttle Throttle,
	maxAttempts int,
) VerificationService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &verificationService{
		users:       users,
		store:       store,
		sender:      sender,
		auth:        auth,
		throttle:    throttle,
		maxAttempts: maxAttempts,
		newCode:     utils.NewOTPCode,
		validate:    validator.New(),
	}
}

func (s *verificationService) checkEmail(email string) error {
	if email == "" {
		return Validation("Email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return Validation("Email is invalid")
	}
	return nil
}

func (s *verificationService) allow(ctx context.Context, key string) error {
	if s.throttle == nil {
		return nil
	}
	ok, err := s.throttle.Allow(ctx, key)
	if err != nil {
		return Infra("otp throttle", err)
	}
	if !ok {
		return ErrOTPThrottled
	}
	return nil
}

// release clears the send window once the flow for key completed.
func (s *verificationService) release(ctx context.Context, key string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, key); err != nil {
		utils.Logger.WithError(err).WithField("key", key).Warn("[auth] throttle reset failed")
	}
}

func (s *verificationService) SendSignupOTP(ctx context.Context, email, fullName, password string) error {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if fullName == "" || password == "" {
		return Validation("Full name and password are required")
	}
	if len(password) < minPasswordLength {
		return Validation("Password must be at least 6 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Infra("lookup account", err)
	}
	if existing != nil {
		return ErrAlreadyExists
	}
	if err := s.allow(ctx, "signup:"+email); err != nil {
		return err
	}

	code, err := s.newCode()
	if err != nil {
		return Infra("generate code", err)
	}
	// store first, then send the email
	if err := s.store.IssueChallenge(ctx, email, code); err != nil {
		return Infra("store challenge", err)
	}
	if err := s.store.IssuePendingRegistration(ctx, email, fullName, password); err != nil {
		return Infra("store pending registration", err)
	}
	if err := s.sender.SendCode(ctx, email, PurposeSignup, code); err != nil {
		return Infra("send signup code", err)
	}
	utils.Logger.WithField("email", email).Info("[auth][send-otp] code issued")
	return nil
}

// consumeChallenge applies the attempt ceiling and compares the code.
// A mismatch is counted; reaching the ceiling purges everything for the email.
func (s *verificationService) consumeChallenge(ctx context.Context, ch *models.VerificationChallenge, email, code string) error {
	if ch == nil {
		return ErrChallengeNotFound
	}
	if ch.Attempts >= s.maxAttempts {
		if err := s.store.Purge(ctx, email); err != nil {
			return Infra("purge exhausted challenge", err)
		}
		utils.Logger.WithField("email", email).Info("[auth][verify] attempts exhausted, state purged")
		return ErrTooManyAttempts
	}
	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		if err := s.store.RecordFailedAttempt(ctx, email); err != nil {
			return Infra("record failed attempt", err)
		}
		return ErrInvalidCode
	}
	return nil
}

func (s *verificationService) VerifySignupOTP(ctx context.Context, email, code string) (*models.User, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, Validation("Email and OTP are required")
	}

	ch, err := s.store.GetChallenge(ctx, email)
	if err != nil {
		return nil, Infra("load challenge", err)
	}
	if err := s.consumeChallenge(ctx, ch, email, code); err != nil {
		return nil, err
	}

	pending, err := s.store.GetPendingRegistration(ctx, email)
	if err != nil {
		return nil, Infra("load pending registration", err)
	}
	if pending == nil {
		// a code without a registration: drop it so it does not linger
		if err := s.store.Purge(ctx, email); err != nil {
			return nil, Infra("purge orphan challenge", err)
		}
		return nil, ErrChallengeNotFound
	}

	hash, err := s.auth.HashPassword(pending.Password)
	if err != nil {
		return nil, Infra("hash password", err)
	}
	user := &models.User{Name: pending.FullName, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			if perr := s.store.Purge(ctx, email); perr != nil {
				return nil, Infra("purge after duplicate", perr)
			}
			return nil, ErrDuplicateAccount
		}
		return nil, Infra("create account", err)
	}
	if err := s.store.Purge(ctx, email); err != nil {
		// the account exists now; a retry ends in DuplicateAccount
		utils.Logger.WithError(err).WithField("email", email).Error("[auth][verify-otp] purge after signup failed")
	}
	s.release(ctx, "signup:"+email)
	utils.Logger.WithField("user_id", user.ID).Info("[auth][verify-otp] account created")
	return user, nil
}
