package services

import (
	"context"
	"strings"

	"bloghive/internal/utils"
)

func (s *verificationService) SendResetOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Infra("lookup account", err)
	}
	if user == nil {
		return NotFound("No account found with this email")
	}
	if err := s.allow(ctx, "reset:"+email); err != nil {
		return err
	}

	code, err := s.newCode()
	if err != nil {
		return Infra("generate code", err)
	}
	if err := s.store.IssueChallenge(ctx, email, code); err != nil {
		return Infra("store challenge", err)
	}
	if err := s.sender.SendCode(ctx, email, PurposeReset, code); err != nil {
		return Infra("send reset code", err)
	}
	utils.Logger.WithField("email", email).Info("[auth][forgot-password] code issued")
	return nil
}

// VerifyResetOTP only checks the code; the challenge stays for ResetPassword.
func (s *verificationService) VerifyResetOTP(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return Validation("Email and OTP are required")
	}
	ch, err := s.store.GetChallenge(ctx, email)
	if err != nil {
		return Infra("load challenge", err)
	}
	return s.consumeChallenge(ctx, ch, email, code)
}

func (s *verificationService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return Validation("Email, OTP and new password are required")
	}
	if len(newPassword) < minPasswordLength {
		return Validation("Password must be at least 6 characters")
	}

	ch, err := s.store.GetChallenge(ctx, email)
	if err != nil {
		return Infra("load challenge", err)
	}
	if err := s.consumeChallenge(ctx, ch, email, code); err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return Infra("hash password", err)
	}
	user, err := s.users.UpdatePassword(ctx, email, hash)
	if err != nil {
		return Infra("update password", err)
	}
	if err := s.store.Purge(ctx, email); err != nil {
		return Infra("purge reset challenge", err)
	}
	if user == nil {
		return NotFound("User not found")
	}
	s.release(ctx, "reset:"+email)
	utils.Logger.WithField("user_id", user.ID).Info("[auth][forgot-password-reset] password updated")
	return nil
}
