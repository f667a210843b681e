package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/internal/sso"
	"starter-api/pkg/apperror"
	"starter-api/pkg/mailer"
	"starter-api/pkg/token"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== USERS ====================

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: user %s", apperror.ErrConflict, user.Email)
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindBySSOProvider(_ context.Context, provider entity.AuthProvider, providerID string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Provider == provider && u.SSOProviderID != nil && *u.SSOProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(_ context.Context, offset, limit int, withArchived bool) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.User
	for _, u := range f.users {
		if u.Archived && !withArchived {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return []*entity.User{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.ID]; !ok {
		return fmt.Errorf("%w: user %s", apperror.ErrNotFound, user.ID)
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateSSOConfirmationCode(_ context.Context, id uuid.UUID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", apperror.ErrNotFound, id)
	}
	c := code
	u.SSOConfirmationCode = &c
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("%w: user %s", apperror.ErrNotFound, id)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) countByEmail(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			n++
		}
	}
	return n
}

// ==================== OTPS ====================

type fakeOTPRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*entity.OneTimePassword
	next      int
	conflicts int
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{rows: map[uuid.UUID]*entity.OneTimePassword{}, next: 200000}
}

func (f *fakeOTPRepo) Replace(_ context.Context, otp *entity.OneTimePassword) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflicts > 0 {
		f.conflicts--
		return fmt.Errorf("%w: concurrent OTP for %s", apperror.ErrConflict, otp.Email)
	}

	for id, row := range f.rows {
		if row.Email == otp.Email {
			delete(f.rows, id)
		}
	}

	f.next++
	otp.VerificationCode = fmt.Sprintf("%06d", f.next)
	cp := *otp
	f.rows[otp.ID] = &cp
	return nil
}

func (f *fakeOTPRepo) FindValidByCode(_ context.Context, code string, now time.Time) (*entity.OneTimePassword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.VerificationCode == code && row.ExpiresAt.After(now) {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPRepo) FindByEmail(_ context.Context, email string) (*entity.OneTimePassword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeOTPRepo) DeleteExpired(_ context.Context, now time.Time) ([]*entity.OneTimePassword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*entity.OneTimePassword{}
	for id, row := range f.rows {
		if !row.ExpiresAt.After(now) {
			out = append(out, row)
			delete(f.rows, id)
		}
	}
	return out, nil
}

func (f *fakeOTPRepo) Update(context.Context, *entity.OneTimePassword) error {
	return fmt.Errorf("%w: one-time passwords cannot be updated", apperror.ErrUnsupportedOperation)
}

func (f *fakeOTPRepo) forEmail(email string) []*entity.OneTimePassword {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.OneTimePassword
	for _, row := range f.rows {
		if row.Email == email {
			out = append(out, row)
		}
	}
	return out
}

// ==================== ITEMS ====================

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[uuid.UUID]*entity.Item{}}
}

func (f *fakeItemRepo) Create(_ context.Context, item *entity.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeItemRepo) FindAll(_ context.Context, _, _ int) ([]*entity.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entity.Item{}
	for _, item := range f.items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeItemRepo) FindByOwner(_ context.Context, userID uuid.UUID, _, _ int) ([]*entity.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entity.Item{}
	for _, item := range f.items {
		if item.UserID == userID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *entity.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return fmt.Errorf("%w: item %s", apperror.ErrNotFound, item.ID)
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("%w: item %s", apperror.ErrNotFound, id)
	}
	delete(f.items, id)
	return nil
}

// ==================== MAIL ====================

type sentEmail struct {
	kind mailer.Kind
	to   string
	data map[string]any
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeSender) Send(_ context.Context, kind mailer.Kind, to string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{kind: kind, to: to, data: data})
	return nil
}

func (f *fakeSender) byKind(kind mailer.Kind) []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEmail
	for _, e := range f.sent {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// stalledSender blocks every send until release is closed, then fails.
type stalledSender struct {
	release  chan struct{}
	mu       sync.Mutex
	attempts []mailer.Kind
}

func newStalledSender() *stalledSender {
	return &stalledSender{release: make(chan struct{})}
}

func (s *stalledSender) Send(ctx context.Context, kind mailer.Kind, _ string, _ map[string]any) error {
	s.mu.Lock()
	s.attempts = append(s.attempts, kind)
	s.mu.Unlock()

	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return errors.New("smtp down")
}

func (s *stalledSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// ==================== SSO ====================

type fakeProvider struct {
	identity *sso.Identity
	err      error
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.example.com/authorize?state=" + state
}

func (f *fakeProvider) Exchange(context.Context, string) (*sso.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.identity
	return &cp, nil
}

// ==================== HARNESS ====================

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

const reviewerEmail = "review@example.com"

func testConfig(env utils.Environment) *utils.Config {
	return &utils.Config{
		App: utils.AppConfig{Name: "starter", Env: env},
		JWT: utils.JWTConfig{
			Secret:                    "test-secret",
			AccessExpiresSeconds:      3600,
			RefreshExpiresSeconds:     7 * 24 * 3600,
			SSOConfirmExpiresSeconds:  300,
			PasswordResetExpiresHours: 48,
		},
		Email: utils.EmailConfig{WebAppURL: "https://app.example.com"},
		OTP: utils.OTPConfig{
			ExpiryMinutes:      10,
			ReviewerEmail:      reviewerEmail,
			ReviewerExpiryDays: 30,
			PersistentCode:     "123456",
		},
	}
}

type harness struct {
	config *utils.Config
	clock  *testClock
	users  *fakeUserRepo
	otps   *fakeOTPRepo
	items  *fakeItemRepo
	mail   *fakeSender
	issuer *token.Issuer
	sso    sso.Registry
	store  *otpStore
	auth   *authService
	user   *userService
	item   *itemService
}

func newHarness(t *testing.T, env utils.Environment) *harness {
	t.Helper()

	h := &harness{
		config: testConfig(env),
		clock:  &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		users:  newFakeUserRepo(),
		otps:   newFakeOTPRepo(),
		items:  newFakeItemRepo(),
		mail:   &fakeSender{},
		sso:    sso.Registry{},
	}
	log := zap.NewNop()

	repo := &repository.Repository{User: h.users, OTP: h.otps, Item: h.items}
	h.issuer = token.NewIssuer(h.config.JWT, token.WithClock(h.clock.Now))

	h.store = NewOTPStore(h.otps, h.config, log).(*otpStore)
	h.store.now = h.clock.Now

	otpAuth := NewOTPAuthenticator(h.store, h.users, h.config, log)

	h.auth = NewAuthService(repo, h.store, otpAuth, h.issuer, h.mail, h.sso, h.config, log).(*authService)
	h.auth.now = h.clock.Now

	h.user = NewUserService(repo, h.mail, log).(*userService)
	h.user.now = h.clock.Now

	h.item = NewItemService(repo, log).(*itemService)
	h.item.now = h.clock.Now

	return h
}

// seedUser stores a customer; password may be empty for OTP-only accounts.
func (h *harness) seedUser(t *testing.T, email, password string) *entity.User {
	t.Helper()

	now := h.clock.Now()
	user := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Email:    email,
		Role:     entity.RoleCustomer,
		Language: entity.LanguageEN,
		Provider: entity.ProviderEmail,
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			t.Fatal(err)
		}
		user.PasswordHash = &hash
	}
	if err := h.users.Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}
