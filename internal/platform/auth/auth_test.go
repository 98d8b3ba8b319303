package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestIssuer(ttl time.Duration) *TokenIssuer {
	return NewTokenIssuer([]byte("test-signing-key"), ttl)
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	accountID := uuid.New()

	token, err := issuer.Issue(accountID, "ana@example.com", "Ana Torres", []string{"paciente"})
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if claims.Subject != accountID.String() {
		t.Errorf("expected subject %s, got %s", accountID, claims.Subject)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("expected email ana@example.com, got %s", claims.Email)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "paciente" {
		t.Errorf("expected roles [paciente], got %v", claims.Roles)
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := newTestIssuer(-time.Minute)

	token, err := issuer.Issue(uuid.New(), "ana@example.com", "", nil)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := issuer.Parse(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestTokenIssuer_RejectsWrongKey(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	other := NewTokenIssuer([]byte("different-key"), time.Hour)

	token, err := issuer.Issue(uuid.New(), "ana@example.com", "", nil)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected error for token signed with a different key")
	}
}

func TestSessionMiddleware_MissingHeader(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	err := SessionMiddleware(issuer)(handler)(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestSessionMiddleware_MalformedToken(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	err := SessionMiddleware(issuer)(handler)(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestSessionMiddleware_SetsContext(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	accountID := uuid.New()
	token, _ := issuer.Issue(accountID, "Ana@Example.com", "Ana", []string{"paciente"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != accountID.String() {
			t.Errorf("expected user id %s, got %s", accountID, UserIDFromContext(ctx))
		}
		if UserEmailFromContext(ctx) != "ana@example.com" {
			t.Errorf("expected lowercased email, got %s", UserEmailFromContext(ctx))
		}
		if UserNameFromContext(ctx) != "Ana" {
			t.Errorf("expected name Ana, got %q", UserNameFromContext(ctx))
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := SessionMiddleware(issuer)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func requestWithIdentity(t *testing.T, issuer *TokenIssuer, email string, roles []string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	token, err := issuer.Issue(uuid.New(), email, "", roles)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole_Allows(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	c, _ := requestWithIdentity(t, issuer, "doc@example.com", []string{"medico"})

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	chain := SessionMiddleware(issuer)(RequireRole("medico")(handler))

	if err := chain(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminOverride(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	c, _ := requestWithIdentity(t, issuer, "admin@example.com", []string{AdminRole})

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	chain := SessionMiddleware(issuer)(RequireRole("medico")(handler))

	if err := chain(c); err != nil {
		t.Fatalf("expected administrator to pass, got %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	c, _ := requestWithIdentity(t, issuer, "ana@example.com", []string{"paciente"})

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	chain := SessionMiddleware(issuer)(RequireRole("medico")(handler))

	err := chain(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireAdmin_EmailBypass(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	// No roles at all: the configured email alone grants access.
	c, _ := requestWithIdentity(t, issuer, "2411080183@undc.edu.pe", nil)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	chain := SessionMiddleware(issuer)(RequireAdmin("2411080183@undc.edu.pe")(handler))

	if err := chain(c); err != nil {
		t.Fatalf("expected admin email bypass to pass, got %v", err)
	}
}

func TestRequireAdmin_RoleGrants(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	c, _ := requestWithIdentity(t, issuer, "other@example.com", []string{AdminRole})

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	chain := SessionMiddleware(issuer)(RequireAdmin("2411080183@undc.edu.pe")(handler))

	if err := chain(c); err != nil {
		t.Fatalf("expected administrator role to pass, got %v", err)
	}
}

func TestRequireAdmin_Forbidden(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	c, _ := requestWithIdentity(t, issuer, "ana@example.com", []string{"paciente"})

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	chain := SessionMiddleware(issuer)(RequireAdmin("2411080183@undc.edu.pe")(handler))

	err := chain(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}
