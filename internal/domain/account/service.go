package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/medicareperu/clinic-api/internal/platform/auth"
)

// PatientProvisioner keeps the patient row in sync with the account.
type PatientProvisioner interface {
	EnsureExists(ctx context.Context, accountID uuid.UUID, fullName, email string, phone *string) error
}

// RoleDirectory resolves and assigns roles for an account.
type RoleDirectory interface {
	AssignRoleByName(ctx context.Context, userID uuid.UUID, roleName string, assignedBy *uuid.UUID) error
	RoleNamesForUser(ctx context.Context, userID uuid.UUID, email string) ([]string, error)
}

const defaultRole = "paciente"

type Service struct {
	accounts Repository
	patients PatientProvisioner
	roles    RoleDirectory
	issuer   *auth.TokenIssuer
	google   *oauth2.Config

	// userInfoURL is the Google endpoint returning the authenticated
	// user's profile. Overridable in tests.
	userInfoURL string
}

func NewService(accounts Repository, patients PatientProvisioner, roles RoleDirectory,
	issuer *auth.TokenIssuer, google *oauth2.Config) *Service {
	return &Service{
		accounts:    accounts,
		patients:    patients,
		roles:       roles,
		issuer:      issuer,
		google:      google,
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

type SignupInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone"`
}

func validPhone(phone string) bool {
	if len(phone) < 6 || len(phone) > 15 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Signup registers a new email/password account, provisions the patient row,
// grants the default role, and opens a session. Email is confirmed at signup:
// there is no outbound mail delivery in this service.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("el correo electrónico no es válido")
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("la contraseña debe tener al menos 6 caracteres")
	}
	if in.Phone != nil && *in.Phone != "" && !validPhone(*in.Phone) {
		return nil, fmt.Errorf("el teléfono debe contener solo dígitos")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)
	now := time.Now()

	a := &Account{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     &hashStr,
		FullName:         strings.TrimSpace(in.FullName),
		Phone:            in.Phone,
		Provider:         ProviderEmail,
		EmailConfirmedAt: &now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, fmt.Errorf("el correo ya está registrado")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.openSession(ctx, a, true)
}

// Login authenticates an email/password account. Wrong email and wrong
// password produce the same message so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("credenciales inválidas")
	}
	if a.PasswordHash == nil {
		return nil, fmt.Errorf("credenciales inválidas")
	}
	if bcrypt.CompareHashAndPassword([]byte(*a.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("credenciales inválidas")
	}
	if a.EmailConfirmedAt == nil {
		return nil, fmt.Errorf("debes confirmar tu correo antes de iniciar sesión")
	}
	return s.openSession(ctx, a, false)
}

// GoogleEnabled reports whether sign-in with Google is configured.
func (s *Service) GoogleEnabled() bool {
	return s.google != nil && s.google.ClientID != ""
}

// GoogleAuthURL builds the consent-screen URL for the given CSRF state.
func (s *Service) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUser struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	VerifiedEmail bool   `json:"verified_email"`
}

// GoogleCallback exchanges the authorization code, fetches the Google
// profile, and provisions a passwordless account on first login.
func (s *Service) GoogleCallback(ctx context.Context, code string) (*Session, error) {
	tok, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("no se pudo completar el inicio de sesión con Google: %w", err)
	}

	resp, err := s.google.Client(ctx, tok).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("no se pudo obtener el perfil de Google: %w", err)
	}
	defer resp.Body.Close()

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("no se pudo obtener el perfil de Google: %w", err)
	}
	if gu.Email == "" {
		return nil, fmt.Errorf("la cuenta de Google no tiene correo electrónico")
	}

	email := strings.ToLower(gu.Email)
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		// First Google login: provision an account without a password.
		now := time.Now()
		a = &Account{
			ID:               uuid.New(),
			Email:            email,
			FullName:         gu.Name,
			Provider:         ProviderGoogle,
			EmailConfirmedAt: &now,
		}
		if err := s.accounts.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("create google account: %w", err)
		}
		return s.openSession(ctx, a, true)
	}
	return s.openSession(ctx, a, false)
}

// openSession provisions side tables for fresh accounts and issues a token.
func (s *Service) openSession(ctx context.Context, a *Account, fresh bool) (*Session, error) {
	if fresh {
		if err := s.roles.AssignRoleByName(ctx, a.ID, defaultRole, nil); err != nil {
			return nil, fmt.Errorf("assign default role: %w", err)
		}
	}
	if err := s.patients.EnsureExists(ctx, a.ID, a.FullName, a.Email, a.Phone); err != nil {
		return nil, fmt.Errorf("provision patient: %w", err)
	}

	roles, err := s.roles.RoleNamesForUser(ctx, a.ID, a.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}

	token, err := s.issuer.Issue(a.ID, a.Email, a.FullName, roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, Account: a, Roles: roles}, nil
}

func (s *Service) Me(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cuenta no encontrada")
	}
	return a, nil
}

// UpdateMe changes the account's display metadata and mirrors it onto the
// patient row.
func (s *Service) UpdateMe(ctx context.Context, id uuid.UUID, fullName string, phone *string) (*Account, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("el nombre completo es obligatorio")
	}
	if phone != nil && *phone != "" && !validPhone(*phone) {
		return nil, fmt.Errorf("el teléfono debe contener solo dígitos")
	}
	if err := s.accounts.UpdateProfile(ctx, id, fullName, phone); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cuenta no encontrada")
	}
	if err := s.patients.EnsureExists(ctx, a.ID, a.FullName, a.Email, a.Phone); err != nil {
		return nil, fmt.Errorf("sync patient: %w", err)
	}
	return a, nil
}
