package service

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubroster/internal/auth"
	"clubroster/internal/config"
	"clubroster/internal/models"
	"clubroster/internal/provider"
	"clubroster/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserGone           = errors.New("session user no longer exists")
	ErrValidation         = errors.New("validation failed")
	ErrEmptyUpdate        = errors.New("no fields to update")
)

type Service struct {
	cfg  config.Config
	st   *store.Store
	exch provider.Exchanger
}

func New(cfg config.Config, st *store.Store, exch provider.Exchanger) *Service {
	return &Service{cfg: cfg, st: st, exch: exch}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := netmail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// newSession mints an opaque token for the user and stores only its
// hash. The raw token is returned once and never again.
func (s *Service) newSession(ctx context.Context, userID string) (string, error) {
	raw, hash, err := auth.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.cfg.SessionTTL()),
		CreatedAt: now,
	}
	if err := s.st.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	return raw, nil
}

// Register creates a password account and logs it in. The very first
// account on an empty user table becomes admin; everyone after that
// starts as member_editor.
func (s *Service) Register(ctx context.Context, email, name, password string) (string, models.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return "", models.User{}, validationf("invalid email address")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.User{}, validationf("name is required")
	}
	if len(password) < s.cfg.PasswordMinLength {
		return "", models.User{}, validationf("password must be at least %d characters", s.cfg.PasswordMinLength)
	}

	n, err := s.st.CountUsers(ctx)
	if err != nil {
		return "", models.User{}, err
	}
	role := models.RoleMemberEditor
	if n == 0 {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", models.User{}, err
	}
	u := models.User{
		UserID:       store.NewID("user"),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: &hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.st.CreateUser(ctx, u); err != nil {
		return "", models.User{}, err
	}
	token, err := s.newSession(ctx, u.UserID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, models.User, error) {
	u, err := s.st.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}
	// Delegated-only accounts carry no digest and cannot password-login.
	if u.PasswordHash == nil || !auth.VerifyPassword(*u.PasswordHash, password) {
		return "", models.User{}, ErrInvalidCredentials
	}
	token, err := s.newSession(ctx, u.UserID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

// ExchangeDelegatedSession swaps an external provider session id for a
// local session, creating the account on first sight. The first
// delegated account while no admin exists becomes admin.
func (s *Service) ExchangeDelegatedSession(ctx context.Context, sessionID string) (string, models.User, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", models.User{}, validationf("session id is required")
	}
	if s.exch == nil {
		return "", models.User{}, provider.ErrUnavailable
	}
	id, err := s.exch.Exchange(ctx, sessionID)
	if err != nil {
		return "", models.User{}, err
	}

	email := normalizeEmail(id.Email)
	u, err := s.st.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		// Refresh the profile the provider owns.
		var picture *string
		if p := strings.TrimSpace(id.Picture); p != "" {
			picture = &p
		}
		name := strings.TrimSpace(id.Name)
		if name == "" {
			name = u.Name
		}
		if err := s.st.UpdateUserProfile(ctx, u.UserID, name, picture); err != nil {
			return "", models.User{}, err
		}
		u.Name = name
		u.Picture = picture
	case errors.Is(err, store.ErrNotFound):
		admins, err := s.st.CountAdmins(ctx)
		if err != nil {
			return "", models.User{}, err
		}
		role := models.RoleMemberEditor
		if admins == 0 {
			role = models.RoleAdmin
		}
		u = models.User{
			UserID:    store.NewID("user"),
			Email:     email,
			Name:      strings.TrimSpace(id.Name),
			Role:      role,
			CreatedAt: time.Now().UTC(),
		}
		if p := strings.TrimSpace(id.Picture); p != "" {
			u.Picture = &p
		}
		if err := s.st.CreateUser(ctx, u); err != nil {
			return "", models.User{}, err
		}
	default:
		return "", models.User{}, err
	}

	token, err := s.newSession(ctx, u.UserID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

// ValidateSession resolves a raw token to its user. Expired rows stay
// in the table and are rejected here; a session whose user has been
// deleted surfaces ErrUserGone so the API can answer 404 rather than 401.
func (s *Service) ValidateSession(ctx context.Context, rawToken string) (models.User, models.Session, error) {
	if rawToken == "" {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	sess, err := s.st.GetSessionByTokenHash(ctx, auth.HashToken(rawToken))
	if err != nil {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	u, err := s.st.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, models.Session{}, ErrUserGone
	}
	if err != nil {
		return models.User{}, models.Session{}, err
	}
	return u, sess, nil
}

// Logout is idempotent; an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.st.DeleteSessionByTokenHash(ctx, auth.HashToken(rawToken))
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.st.ListUsers(ctx)
}

// CreateUser is the admin path for provisioning accounts. An empty
// password leaves the account delegated-only.
func (s *Service) CreateUser(ctx context.Context, email, name, role, password string) (models.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return models.User{}, validationf("invalid email address")
	}
	if !models.ValidRole(role) {
		return models.User{}, validationf("invalid role %q", role)
	}
	u := models.User{
		UserID:    store.NewID("user"),
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if password != "" {
		if len(password) < s.cfg.PasswordMinLength {
			return models.User{}, validationf("password must be at least %d characters", s.cfg.PasswordMinLength)
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = &hash
	}
	if err := s.st.CreateUser(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpdateUser changes name and/or role; empty fields keep their value.
func (s *Service) UpdateUser(ctx context.Context, id, name, role string) (models.User, error) {
	u, err := s.st.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = u.Name
	}
	if role == "" {
		role = u.Role
	} else if !models.ValidRole(role) {
		return models.User{}, validationf("invalid role %q", role)
	}
	if err := s.st.UpdateUser(ctx, id, name, role); err != nil {
		return models.User{}, err
	}
	u.Name = name
	u.Role = role
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.st.DeleteUser(ctx, id)
}
