package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// MinPasswordLength is the shortest password accepted on create or reset.
const MinPasswordLength = 8

// dummyHash is compared against when the email is unknown so that login
// takes the same time whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("routergate-timing-pad"), bcrypt.DefaultCost)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      model.User
}

// AccountService manages operator accounts: login, CRUD and password reset.
type AccountService struct {
	users        driven.UserStore
	tokens       *ResetTokenManager
	settings     driven.SettingsStore
	mailer       driven.Mailer
	sessions     driven.SessionIssuer
	resetBaseURL string
	bcryptCost   int
	logger       *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(
	users driven.UserStore,
	tokens *ResetTokenManager,
	settings driven.SettingsStore,
	mailer driven.Mailer,
	sessions driven.SessionIssuer,
	resetBaseURL string,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:        users,
		tokens:       tokens,
		settings:     settings,
		mailer:       mailer,
		sessions:     sessions,
		resetBaseURL: resetBaseURL,
		bcryptCost:   bcrypt.DefaultCost,
		logger:       logger,
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *AccountService) WithBcryptCost(cost int) *AccountService {
	s.bcryptCost = cost
	return s
}

// IsHashed reports whether a stored credential is a bcrypt hash rather than
// legacy plaintext.
func IsHashed(credential string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(credential, prefix) {
			return true
		}
	}
	return false
}

func (s *AccountService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Login verifies email and password and opens a session. Legacy plaintext
// credentials are upgraded to bcrypt on the first successful login.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, missing("email")
	}
	if password == "" {
		return nil, missing("password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	// Unknown and disabled accounts pay for one bcrypt comparison and never
	// reach credentialMatches, which may rewrite the stored credential.
	if user == nil || !user.Enabled {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if !s.credentialMatches(ctx, user, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &Session{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

func (s *AccountService) credentialMatches(ctx context.Context, user *model.User, password string) bool {
	if IsHashed(user.Credential) {
		return bcrypt.CompareHashAndPassword([]byte(user.Credential), []byte(password)) == nil
	}

	if subtle.ConstantTimeCompare([]byte(user.Credential), []byte(password)) != 1 {
		return false
	}

	hashed, err := s.hash(password)
	if err != nil {
		s.logger.Error("failed to hash legacy credential", "user_id", user.ID, "error", err)
		return true
	}
	if err := s.users.SetCredential(ctx, user.ID, hashed); err != nil {
		s.logger.Error("failed to upgrade legacy credential", "user_id", user.ID, "error", err)
		return true
	}
	user.Credential = hashed
	s.logger.Info("upgraded legacy plaintext credential", "user_id", user.ID)
	return true
}

// Authenticate resolves a session token to an enabled user.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.sessions.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil || !user.Enabled {
		return nil, driven.ErrInvalidSession
	}
	return user, nil
}

// EnsureAdmin seeds an initial account when no users exist. It reports
// whether an account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := s.CreateUser(ctx, "Administrator", email, password, true); err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return true, nil
}

// ListUsers returns all accounts.
func (s *AccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// GetUser returns the account or driven.ErrUserNotFound.
func (s *AccountService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, driven.ErrUserNotFound
	}
	return user, nil
}

// CreateUser validates and stores a new account with a hashed password.
func (s *AccountService) CreateUser(ctx context.Context, name, email, password string, enabled bool) (model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return model.User{}, missing("name")
	}
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.User{}, err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.Create(ctx, model.User{Name: name, Email: email, Credential: hashed, Enabled: enabled})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

// UpdateUser applies upd. A new password is hashed before it is stored.
func (s *AccountService) UpdateUser(ctx context.Context, id int64, upd model.UserUpdate) error {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return missing("name")
		}
		upd.Name = &trimmed
	}
	if upd.Email != nil {
		trimmed := strings.TrimSpace(*upd.Email)
		if err := validateEmail(trimmed); err != nil {
			return err
		}
		upd.Email = &trimmed
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return err
		}
		hashed, err := s.hash(*upd.Password)
		if err != nil {
			return err
		}
		upd.Password = &hashed
	}
	if upd.IsEmpty() {
		return nil
	}

	if err := s.users.Update(ctx, id, upd); err != nil {
		return err
	}

	s.logger.Info("user updated", "user_id", id)
	return nil
}

// DeleteUser removes the account.
func (s *AccountService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// RequestPasswordReset issues a token and mails a reset link when email
// belongs to an enabled account. The caller always sees success.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return missing("email")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("password reset lookup failed", "error", err)
		return nil
	}
	if user == nil || !user.Enabled {
		s.logger.Info("password reset requested for unknown or disabled account")
		return nil
	}

	token, expiresAt, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to issue reset token", "user_id", user.ID, "error", err)
		return nil
	}

	if err := s.sendResetMail(ctx, user, token, expiresAt); err != nil {
		s.logger.Warn("failed to send reset email", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *AccountService) sendResetMail(ctx context.Context, user *model.User, token string, expiresAt time.Time) error {
	cfg, err := s.settings.GetSMTPConfig(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		return ErrSMTPNotConfigured
	}

	link := ResetLink(s.resetBaseURL, token)
	body := fmt.Sprintf(
		"Hello %s,\n\nA password reset was requested for your routergate account.\n\n[Reset your password](%s)\n\nThe link is valid until %s. If you did not request this, you can ignore this email.\n",
		user.Name, link, expiresAt.UTC().Format("2006-01-02 15:04 MST"),
	)

	return s.mailer.Send(ctx, *cfg, model.MailMessage{
		To:       user.Email,
		Subject:  "Password reset",
		TextBody: body,
	})
}

// ResetLink appends the token to base as a query parameter.
func ResetLink(base, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}

// ResetPassword consumes token and sets a new password for its owner.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return missing("token")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	status, userID, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return err
	}
	if status != model.ResetTokenValid {
		return statusError(status)
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.tokens.Consume(ctx, token); err != nil {
		return err
	}

	// The token is already spent at this point; a failed write means the
	// user has to request a new link.
	if err := s.users.SetCredential(ctx, userID, hashed); err != nil {
		s.logger.Error("reset token consumed but password was not updated", "user_id", userID, "error", err)
		if errors.Is(err, driven.ErrUserNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", userID)
	return nil
}

func validateEmail(email string) error {
	return validateAddress("email", email)
}

func validateAddress(field, email string) error {
	if email == "" {
		return missing(field)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid(field, "not a valid address")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return missing("password")
	}
	if len(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	return nil
}
