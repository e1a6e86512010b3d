package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghive/internal/models"
)

type harness struct {
	clock    *clock
	users    *fakeUsers
	store    *fakeStore
	sender   *fakeSender
	auth     AuthService
	svc      *verificationService
	accounts UserService
}

func newHarness(codes ...string) *harness {
	c := newClock()
	h := &harness{
		clock:  c,
		users:  newFakeUsers(),
		store:  newFakeStore(c),
		sender: &fakeSender{},
		auth:   NewAuthService(4),
	}
	h.svc = NewVerificationService(h.users, h.store, h.sender, h.auth, nil, 3).(*verificationService)
	if len(codes) > 0 {
		h.svc.newCode = sequenceCodes(codes...)
	}
	h.accounts = NewUserService(h.users, h.auth, NewTokenService("test-secret", time.Minute), time.Hour)
	return h
}

func (h *harness) signup(t *testing.T, email, name, password string) *models.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.svc.SendSignupOTP(ctx, email, name, password))
	u, err := h.svc.VerifySignupOTP(ctx, email, h.sender.lastCode())
	require.NoError(t, err)
	return u
}

const (
	annEmail = "ann@example.com"
	annPass  = "secret1"
)

func TestSignup_ReissueSupersedesPreviousCode(t *testing.T) {
	ctx := context.Background()
	h := newHarness("111111", "222222")

	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))
	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))

	ch, ok := h.store.rawChallenge(annEmail)
	require.True(t, ok)
	assert.Equal(t, "222222", ch.Code)
	assert.Equal(t, 0, ch.Attempts)

	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "111111")
	assert.ErrorIs(t, err, ErrInvalidCode)

	u, err := h.svc.VerifySignupOTP(ctx, annEmail, "222222")
	require.NoError(t, err)
	assert.Equal(t, annEmail, u.Email)
}

func TestSignup_VerifySucceedsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness("123456")

	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))
	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	require.NoError(t, err)

	_, err = h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestSignup_AttemptCeilingPurgesState(t *testing.T) {
	ctx := context.Background()
	h := newHarness("123456")
	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))

	for i := 0; i < 3; i++ {
		_, err := h.svc.VerifySignupOTP(ctx, annEmail, "000000")
		require.ErrorIs(t, err, ErrInvalidCode, "attempt %d", i+1)
	}

	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.NotErrorIs(t, err, ErrInvalidCode)

	_, ok := h.store.rawChallenge(annEmail)
	assert.False(t, ok)
	assert.False(t, h.store.hasPending(annEmail))

	_, err = h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	assert.ErrorIs(t, err, ErrChallengeNotFound)

	n, _ := h.users.Count(ctx)
	assert.Zero(t, n)
}

func TestSignup_ExpiredChallengeBehavesAsNeverIssued(t *testing.T) {
	ctx := context.Background()
	h := newHarness("123456")
	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))

	h.clock.Advance(5*time.Minute + time.Second)

	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	_, ok := h.store.rawChallenge(annEmail)
	assert.False(t, ok, "expired challenge must be removed on read")
}

func TestSignup_RoundTripHidesPassword(t *testing.T) {
	h := newHarness()
	u := h.signup(t, annEmail, "Ann", annPass)

	assert.Equal(t, annEmail, u.Email)
	assert.Equal(t, "Ann", u.Name)
	assert.NotEqual(t, annPass, u.PasswordHash)
	assert.True(t, h.auth.CheckPassword(u.PasswordHash, annPass))

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), u.PasswordHash)
	assert.NotContains(t, string(b), annPass)

	_, ok := h.store.rawChallenge(annEmail)
	assert.False(t, ok)
	assert.False(t, h.store.hasPending(annEmail))
}

func TestSignup_ExistingEmailCreatesNoChallenge(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.signup(t, annEmail, "Ann", annPass)
	sent := len(h.sender.codes)

	err := h.svc.SendSignupOTP(ctx, annEmail, "Ann again", "another1")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, ok := h.store.rawChallenge(annEmail)
	assert.False(t, ok)
	assert.Len(t, h.sender.codes, sent)
}

func TestSignup_DeliveryFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	h := newHarness("123456")
	h.sender.err = errors.New("smtp: 421 service not available")

	err := h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass)
	require.Error(t, err)
	assert.Equal(t, KindInfrastructure, KindOf(err))

	_, ok := h.store.rawChallenge(annEmail)
	assert.True(t, ok)
	assert.True(t, h.store.hasPending(annEmail))

	// the stored code still works
	_, err = h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	assert.NoError(t, err)
}

func TestSignup_StoreFailureIsInfrastructure(t *testing.T) {
	h := newHarness()
	h.store.issueErr = errors.New("connection refused")

	err := h.svc.SendSignupOTP(context.Background(), annEmail, "Ann", annPass)
	assert.Equal(t, KindInfrastructure, KindOf(err))
	assert.Empty(t, h.sender.codes)
}

func TestSignup_DuplicateOnInsertPurgesState(t *testing.T) {
	ctx := context.Background()
	h := newHarness("123456")
	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))

	// another request created the account in between
	require.NoError(t, h.users.Create(ctx, &models.User{Name: "Other", Email: annEmail, PasswordHash: "x"}))

	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	_, ok := h.store.rawChallenge(annEmail)
	assert.False(t, ok)
	assert.False(t, h.store.hasPending(annEmail))
}

func TestSignup_MissingPendingRegistration(t *testing.T) {
	ctx := context.Background()
	h := newHarness("123456")
	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))
	h.store.mu.Lock()
	delete(h.store.pending, annEmail)
	h.store.mu.Unlock()

	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "123456")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	_, ok := h.store.rawChallenge(annEmail)
	assert.False(t, ok)
}

func TestSignup_Validation(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	cases := []struct {
		name, email, fullName, password string
	}{
		{"empty email", "", "Ann", annPass},
		{"bad email", "not-an-email", "Ann", annPass},
		{"no name", annEmail, " ", annPass},
		{"short password", annEmail, "Ann", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := h.svc.SendSignupOTP(ctx, tc.email, tc.fullName, tc.password)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSignup_Throttle(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.svc.throttle = &fakeThrottle{limit: 1}

	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))
	err := h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass)
	assert.ErrorIs(t, err, ErrOTPThrottled)

	h.svc.throttle = &fakeThrottle{err: errors.New("redis down")}
	err = h.svc.SendSignupOTP(ctx, "bob@example.com", "Bob", annPass)
	assert.Equal(t, KindInfrastructure, KindOf(err))
}

func TestThrottle_ReleasedAfterCompletedFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness("111111", "222222", "333333")
	th := &fakeThrottle{limit: 1}
	h.svc.throttle = th

	h.signup(t, annEmail, "Ann", annPass)
	assert.Equal(t, []string{"signup:" + annEmail}, th.reset)

	require.NoError(t, h.svc.SendResetOTP(ctx, annEmail))
	require.NoError(t, h.svc.ResetPassword(ctx, annEmail, "222222", "newpass1"))
	assert.Equal(t, []string{"signup:" + annEmail, "reset:" + annEmail}, th.reset)

	// window released: a new code is issued right away
	assert.NoError(t, h.svc.SendResetOTP(ctx, annEmail))
}

func TestThrottle_FailedVerifyKeepsWindow(t *testing.T) {
	ctx := context.Background()
	h := newHarness("111111")
	th := &fakeThrottle{limit: 1}
	h.svc.throttle = th

	require.NoError(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass))
	_, err := h.svc.VerifySignupOTP(ctx, annEmail, "000000")
	require.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, th.reset)
	assert.ErrorIs(t, h.svc.SendSignupOTP(ctx, annEmail, "Ann", annPass), ErrOTPThrottled)
}

func TestReset_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness("111111", "654321")
	h.signup(t, annEmail, "Ann", annPass)

	require.NoError(t, h.svc.SendResetOTP(ctx, annEmail))
	assert.Equal(t, PurposeReset, h.sender.codes[len(h.sender.codes)-1].Purpose)

	require.NoError(t, h.svc.VerifyResetOTP(ctx, annEmail, "654321"))
	_, ok := h.store.rawChallenge(annEmail)
	assert.True(t, ok, "verify step keeps the challenge")

	require.NoError(t, h.svc.ResetPassword(ctx, annEmail, "654321", "newpass1"))
	_, ok = h.store.rawChallenge(annEmail)
	assert.False(t, ok)

	_, _, err := h.accounts.Login(ctx, annEmail, "newpass1")
	assert.NoError(t, err)
	_, _, err = h.accounts.Login(ctx, annEmail, annPass)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	err = h.svc.ResetPassword(ctx, annEmail, "654321", "another1")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestReset_UnknownEmail(t *testing.T) {
	h := newHarness()
	err := h.svc.SendResetOTP(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, h.sender.codes)
}

func TestReset_CeilingAppliesToResetPassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness("111111", "654321")
	h.signup(t, annEmail, "Ann", annPass)
	require.NoError(t, h.svc.SendResetOTP(ctx, annEmail))

	require.ErrorIs(t, h.svc.VerifyResetOTP(ctx, annEmail, "000000"), ErrInvalidCode)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, annEmail, "000000", "newpass1"), ErrInvalidCode)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, annEmail, "000001", "newpass1"), ErrInvalidCode)

	err := h.svc.ResetPassword(ctx, annEmail, "654321", "newpass1")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	_, _, err = h.accounts.Login(ctx, annEmail, annPass)
	assert.NoError(t, err, "password must be unchanged")
}

func TestReset_ShortPasswordDoesNotConsumeAttempt(t *testing.T) {
	ctx := context.Background()
	h := newHarness("111111", "654321")
	h.signup(t, annEmail, "Ann", annPass)
	require.NoError(t, h.svc.SendResetOTP(ctx, annEmail))

	err := h.svc.ResetPassword(ctx, annEmail, "000000", "123")
	assert.Equal(t, KindValidation, KindOf(err))
	ch, _ := h.store.rawChallenge(annEmail)
	assert.Equal(t, 0, ch.Attempts)
}
