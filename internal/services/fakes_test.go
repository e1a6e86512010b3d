package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"bloghive/internal/models"
	"bloghive/internal/repositories"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ---------- users ----------

type fakeUsers struct {
	mu         sync.Mutex
	nextID     int
	byID       map[int]*models.User
	dependents map[int]int // user id -> rows owned (posts, likes, ...)
	refresh    map[string]int
	createErr  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int]*models.User{}, dependents: map[int]int{}, refresh: map[string]int{}}
}

func (f *fakeUsers) copyOf(u *models.User) *models.User {
	c := *u
	return &c
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byID[u.ID] = f.copyOf(u)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return f.copyOf(u), nil
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return f.copyOf(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, email, hash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			u.PasswordHash = hash
			return f.copyOf(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) SetBanned(_ context.Context, id int, banned bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	u.Banned = banned
	if banned {
		t := time.Now()
		u.BannedAt = &t
	} else {
		u.BannedAt = nil
	}
	return f.copyOf(u), nil
}

func (f *fakeUsers) DeleteAccount(_ context.Context, id int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	delete(f.dependents, id)
	return 1, nil
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for id := 1; id <= f.nextID; id++ {
		if u, ok := f.byID[id]; ok {
			out = append(out, f.copyOf(u))
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID), nil
}

func (f *fakeUsers) ListRecipients(_ context.Context, ids []int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[int]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*models.User
	for id := 1; id <= f.nextID; id++ {
		u, ok := f.byID[id]
		if !ok || u.Banned {
			continue
		}
		if len(ids) == 0 || want[id] {
			out = append(out, f.copyOf(u))
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateRefresh(_ context.Context, userID int, token string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tok, id := range f.refresh {
		if id == userID {
			delete(f.refresh, tok)
		}
	}
	f.refresh[token] = userID
	return nil
}

func (f *fakeUsers) RotateRefresh(_ context.Context, oldToken, newToken string, _ time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.refresh[oldToken]
	if !ok {
		return nil, nil
	}
	delete(f.refresh, oldToken)
	f.refresh[newToken] = id
	return f.copyOf(f.byID[id]), nil
}

// ---------- verification store ----------

type fakeStore struct {
	mu         sync.Mutex
	now        func() time.Time
	ttl        time.Duration
	challenges map[string]models.VerificationChallenge
	pending    map[string]models.PendingRegistration
	issueErr   error
}

func newFakeStore(c *clock) *fakeStore {
	return &fakeStore{
		now:        c.Now,
		ttl:        5 * time.Minute,
		challenges: map[string]models.VerificationChallenge{},
		pending:    map[string]models.PendingRegistration{},
	}
}

func (s *fakeStore) IssueChallenge(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.issueErr != nil {
		return s.issueErr
	}
	now := s.now()
	s.challenges[email] = models.VerificationChallenge{Email: email, Code: code, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	return nil
}

func (s *fakeStore) IssuePendingRegistration(_ context.Context, email, fullName, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pending[email] = models.PendingRegistration{Email: email, FullName: fullName, Password: password, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	return nil
}

func (s *fakeStore) GetChallenge(_ context.Context, email string) (*models.VerificationChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[email]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(c.ExpiresAt) {
		delete(s.challenges, email)
		return nil, nil
	}
	return &c, nil
}

func (s *fakeStore) GetPendingRegistration(_ context.Context, email string) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[email]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(p.ExpiresAt) {
		delete(s.pending, email)
		return nil, nil
	}
	return &p, nil
}

func (s *fakeStore) RecordFailedAttempt(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.challenges[email]; ok {
		c.Attempts++
		s.challenges[email] = c
	}
	return nil
}

func (s *fakeStore) Purge(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, email)
	delete(s.pending, email)
	return nil
}

func (s *fakeStore) CleanupExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := s.now()
	for k, c := range s.challenges {
		if !now.Before(c.ExpiresAt) {
			delete(s.challenges, k)
			n++
		}
	}
	for k, p := range s.pending {
		if !now.Before(p.ExpiresAt) {
			delete(s.pending, k)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) rawChallenge(email string) (models.VerificationChallenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[email]
	return c, ok
}

func (s *fakeStore) hasPending(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[email]
	return ok
}

// ---------- sender / throttle ----------

type sentCode struct {
	Email   string
	Purpose Purpose
	Code    string
}

type fakeSender struct {
	mu       sync.Mutex
	codes    []sentCode
	messages []string
	failFor  map[string]bool
	err      error
}

func (f *fakeSender) SendCode(_ context.Context, email string, purpose Purpose, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.codes = append(f.codes, sentCode{Email: email, Purpose: purpose, Code: code})
	return nil
}

func (f *fakeSender) SendMessage(_ context.Context, email, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[email] {
		return errors.New("mailbox unavailable")
	}
	f.messages = append(f.messages, email+":"+subject)
	return nil
}

func (f *fakeSender) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.codes) == 0 {
		return ""
	}
	return f.codes[len(f.codes)-1].Code
}

type fakeThrottle struct {
	limit int
	seen  map[string]int
	err   error
	reset []string
}

func (f *fakeThrottle) Allow(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[key]++
	return f.seen[key] <= f.limit, nil
}

func (f *fakeThrottle) Reset(_ context.Context, key string) error {
	f.reset = append(f.reset, key)
	delete(f.seen, key)
	return nil
}

type fakeTelegram struct{ texts []string }

func (f *fakeTelegram) Notify(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

// sequenceCodes returns the given codes in order, then repeats the last one.
func sequenceCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}
