package security

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/models"
)

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantMsg  string
	}{
		{name: "ok", username: "ann", email: "ann@example.com", password: "pw"},
		{name: "missing username", email: "ann@example.com", password: "pw", wantMsg: "Missing required fields"},
		{name: "missing password", username: "ann", email: "ann@example.com", wantMsg: "Missing required fields"},
		{name: "bad email", username: "ann", email: "ann.example.com", password: "pw", wantMsg: "Invalid email format"},
		{name: "email without dot", username: "ann", email: "ann@example", password: "pw", wantMsg: "Invalid email format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRegistration(tc.username, tc.email, tc.password)
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !stderrors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
			if err.Error() != tc.wantMsg {
				t.Fatalf("message = %q, want %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	t.Parallel()

	if err := ValidateLogin("a@b.com", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := ValidateLogin("", ""); !stderrors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("empty login err = %v", err)
	}
}

func TestNewUserID(t *testing.T) {
	t.Parallel()

	a, b := NewUserID(), NewUserID()
	if !strings.HasPrefix(a, "user_") || len(a) <= len("user_") {
		t.Fatalf("id = %q", a)
	}
	if a == b {
		t.Fatalf("ids collide: %q", a)
	}
}

func TestTokenIssueVerify(t *testing.T) {
	t.Parallel()

	ti, err := NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := ti.Issue("user_42", "a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !regexp.MustCompile(`^mock_jwt_token_.+`).MatchString(token) {
		t.Fatalf("token = %q", token)
	}

	claims, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user_42" || claims.Email != "a@b.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenRejectsTamperingAndExpiry(t *testing.T) {
	t.Parallel()

	ti, err := NewTokenIssuer("secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := ti.Issue("user_1", "a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewTokenIssuer("another secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Fatal("token verified under a different secret")
	}
	if _, err := ti.Verify(strings.TrimPrefix(token, TokenPrefix)); err == nil {
		t.Fatal("token without prefix verified")
	}

	ti.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := ti.Verify(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestAuthenticateMock(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(ModeMock, nil)
	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer    ", "bearer abc"} {
		if _, err := a.Authenticate(header); !stderrors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("Authenticate(%q) err = %v, want unauthorized", header, err)
		}
	}

	id, err := a.Authenticate("Bearer anything")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != models.DemoUserID || id.Verified {
		t.Fatalf("identity = %+v", id)
	}
}

func TestAuthenticateSigned(t *testing.T) {
	t.Parallel()

	ti, err := NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	a := NewAuthenticator(ModeSigned, ti)

	token, err := ti.Issue("user_7", "seven@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := a.Authenticate("Bearer " + token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id != (Identity{UserID: "user_7", Email: "seven@example.com", Verified: true}) {
		t.Fatalf("identity = %+v", id)
	}

	if _, err := a.Authenticate("Bearer mock_jwt_token_garbage"); !stderrors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("garbage token err = %v", err)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Mode{"": ModeMock, "mock": ModeMock, "signed": ModeSigned} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("oauth"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSessionStore("secret", false)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := s.Save(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), "user_9", "nine@example.com"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.AddCookie(cookies[0])
	userID, email, ok := s.Load(req)
	if !ok || userID != "user_9" || email != "nine@example.com" {
		t.Fatalf("Load = %q, %q, %v", userID, email, ok)
	}

	if _, _, ok := s.Load(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("Load without cookie reported a session")
	}
}

func TestSessionClear(t *testing.T) {
	t.Parallel()

	s, err := NewSessionStore("secret", false)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := s.Clear(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("cookies = %+v, want expired cookie", cookies)
	}
}
