package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- UserStore ---

type memUserStore struct {
	mu               sync.Mutex
	nextID           int64
	users            map[int64]model.User
	setCredentialErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]model.User)}
}

func (m *memUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.User{}, driven.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserStore) Update(_ context.Context, id int64, upd model.UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return driven.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Credential = *upd.Password
	}
	if upd.Enabled != nil {
		u.Enabled = *upd.Enabled
	}
	m.users[id] = u
	return nil
}

func (m *memUserStore) SetCredential(_ context.Context, id int64, credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setCredentialErr != nil {
		return m.setCredentialErr
	}
	u, ok := m.users[id]
	if !ok {
		return driven.ErrUserNotFound
	}
	u.Credential = credential
	m.users[id] = u
	return nil
}

func (m *memUserStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return driven.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// seed inserts a user with a verbatim credential.
func (m *memUserStore) seed(name, email, credential string, enabled bool) model.User {
	u, err := m.Create(context.Background(), model.User{Name: name, Email: email, Credential: credential, Enabled: enabled})
	if err != nil {
		panic(err)
	}
	return u
}

func (m *memUserStore) credential(id int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Credential
}

// --- ResetTokenStore ---

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.ResetToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]model.ResetToken)}
}

func (m *memTokenStore) Create(_ context.Context, tok model.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.tokens[tok.TokenHash]; dup {
		return errors.New("duplicate token hash")
	}
	tok.ID = int64(len(m.tokens) + 1)
	m.tokens[tok.TokenHash] = tok
	return nil
}

func (m *memTokenStore) GetByHash(_ context.Context, hash string) (*model.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[hash]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

func (m *memTokenStore) MarkUsed(_ context.Context, hash string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[hash]
	if !ok || tok.Used || tok.IsExpired(now) {
		return false, nil
	}
	tok.Used = true
	m.tokens[hash] = tok
	return true, nil
}

func (m *memTokenStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// --- SettingsStore ---

type memSettingsStore struct {
	router    *model.RouterConfig
	smtp      *model.SMTPConfig
	wireguard *model.WireGuardConfig
	err       error
}

func (m *memSettingsStore) GetRouterConfig(_ context.Context) (*model.RouterConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.router, nil
}

func (m *memSettingsStore) SaveRouterConfig(_ context.Context, cfg model.RouterConfig) error {
	if m.err != nil {
		return m.err
	}
	m.router = &cfg
	return nil
}

func (m *memSettingsStore) GetSMTPConfig(_ context.Context) (*model.SMTPConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.smtp, nil
}

func (m *memSettingsStore) SaveSMTPConfig(_ context.Context, cfg model.SMTPConfig) error {
	if m.err != nil {
		return m.err
	}
	m.smtp = &cfg
	return nil
}

func (m *memSettingsStore) GetWireGuardConfig(_ context.Context) (*model.WireGuardConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.wireguard, nil
}

func (m *memSettingsStore) SaveWireGuardConfig(_ context.Context, cfg model.WireGuardConfig) error {
	if m.err != nil {
		return m.err
	}
	m.wireguard = &cfg
	return nil
}

// --- Mailer ---

type sentMail struct {
	cfg model.SMTPConfig
	msg model.MailMessage
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(_ context.Context, cfg model.SMTPConfig, msg model.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{cfg: cfg, msg: msg})
	return nil
}

// --- SessionIssuer ---

type mockSessions struct{}

func (mockSessions) Issue(userID int64) (string, time.Time, error) {
	return fmt.Sprintf("session-%d", userID), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (mockSessions) Verify(token string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(token, "session-%d", &id); err != nil {
		return 0, driven.ErrInvalidSession
	}
	return id, nil
}

// --- AdapterFactory ---

type mockAdapter struct {
	vendor  model.VendorTag
	execute func(ctx context.Context, req model.ProxyRequest) model.ProxyResult
}

func (a *mockAdapter) Vendor() model.VendorTag { return a.vendor }

func (a *mockAdapter) DefaultTestPath() string { return "/probe" }

func (a *mockAdapter) Execute(ctx context.Context, req model.ProxyRequest) model.ProxyResult {
	return a.execute(ctx, req)
}

func (a *mockAdapter) TestConnection(ctx context.Context) model.ProxyResult {
	return a.execute(ctx, model.ProxyRequest{Path: a.DefaultTestPath(), Method: "GET"})
}

type mockFactory struct {
	supported map[model.VendorTag]bool
	execute   func(ctx context.Context, req model.ProxyRequest) model.ProxyResult
	err       error

	mu       sync.Mutex
	profiles []model.ConnectionProfile
}

func (f *mockFactory) Supports(tag model.VendorTag) bool {
	if f.supported == nil {
		_, ok := model.ParseVendorTag(string(tag))
		return ok
	}
	return f.supported[tag]
}

func (f *mockFactory) NewAdapter(profile model.ConnectionProfile) (driven.VendorAdapter, error) {
	f.mu.Lock()
	f.profiles = append(f.profiles, profile)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &mockAdapter{vendor: profile.Vendor, execute: f.execute}, nil
}

func (f *mockFactory) built() []model.ConnectionProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ConnectionProfile(nil), f.profiles...)
}
