package httphandler_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

type mockUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[int64]model.User)}
}

func (m *mockUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.User{}, driven.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserStore) Update(_ context.Context, id int64, upd model.UserUpdate) error {
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

func (m *mockUserStore) SetCredential(_ context.Context, id int64, credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return driven.ErrUserNotFound
	}
	u.Credential = credential
	m.users[id] = u
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return driven.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

type mockTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.ResetToken
}

func (m *mockTokenStore) Create(_ context.Context, tok model.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]model.ResetToken)
	}
	m.tokens[tok.TokenHash] = tok
	return nil
}

func (m *mockTokenStore) GetByHash(_ context.Context, hash string) (*model.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tok, ok := m.tokens[hash]; ok {
		return &tok, nil
	}
	return nil, nil
}

func (m *mockTokenStore) MarkUsed(_ context.Context, hash string, now time.Time) (bool, error) {
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

type mockSettingsStore struct {
	router    *model.RouterConfig
	smtp      *model.SMTPConfig
	wireguard *model.WireGuardConfig
}

func (m *mockSettingsStore) GetRouterConfig(_ context.Context) (*model.RouterConfig, error) {
	return m.router, nil
}

func (m *mockSettingsStore) SaveRouterConfig(_ context.Context, cfg model.RouterConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	m.router = &cfg
	return nil
}

func (m *mockSettingsStore) GetSMTPConfig(_ context.Context) (*model.SMTPConfig, error) {
	return m.smtp, nil
}

func (m *mockSettingsStore) SaveSMTPConfig(_ context.Context, cfg model.SMTPConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	m.smtp = &cfg
	return nil
}

func (m *mockSettingsStore) GetWireGuardConfig(_ context.Context) (*model.WireGuardConfig, error) {
	return m.wireguard, nil
}

func (m *mockSettingsStore) SaveWireGuardConfig(_ context.Context, cfg model.WireGuardConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	m.wireguard = &cfg
	return nil
}

type mockMailer struct {
	mu   sync.Mutex
	sent []model.MailMessage
}

func (m *mockMailer) Send(_ context.Context, _ model.SMTPConfig, msg model.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) last() (model.MailMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return model.MailMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}
