package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc, err := NewTokenService(Config{
		Mode:                ModeToken,
		TokenSecret:         testSecret,
		TokenTTL:            time.Hour,
		TokenIssuer:         "folio-test",
		AdminUsername:       "owner",
		AdminPasswordHash:   string(hash),
		SessionCookieName:   "folio_session",
		SessionCookieMaxAge: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService() err=%v", err)
	}
	return svc
}

func TestTokenService_LoginAndVerify(t *testing.T) {
	svc := newTestTokenService(t)

	identity, err := svc.Login("owner", "correct horse")
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}
	token, expires, err := svc.Issue(identity)
	if err != nil {
		t.Fatalf("Issue() err=%v", err)
	}
	if !expires.After(time.Now()) {
		t.Fatalf("expires=%v, want future", expires)
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.test/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	got, err := svc.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("Authenticate() err=%v", err)
	}
	if got.Subject != "owner" || !HasAtLeast(got.Roles, RoleAdmin) {
		t.Fatalf("identity=%+v, want owner admin", got)
	}
}

func TestTokenService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newTestTokenService(t)
	if _, err := svc.Login("owner", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(bad password) err=%v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("intruder", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(bad user) err=%v, want ErrInvalidCredentials", err)
	}
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := newTestTokenService(t)
	past := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return past }
	token, _, err := svc.Issue(Identity{Subject: "owner", Roles: []string{RoleAdmin}})
	if err != nil {
		t.Fatalf("Issue() err=%v", err)
	}
	svc.now = time.Now
	if _, err := svc.Verify(token); err == nil {
		t.Fatalf("Verify() expected error for expired token")
	}
}

func TestTokenService_RejectsTampered(t *testing.T) {
	svc := newTestTokenService(t)
	token, _, err := svc.Issue(Identity{Subject: "owner", Roles: []string{RoleAdmin}})
	if err != nil {
		t.Fatalf("Issue() err=%v", err)
	}
	other := newTestTokenService(t)
	other.secret = []byte(strings.Repeat("x", 32))
	if _, err := other.Verify(token); err == nil {
		t.Fatalf("Verify() expected signature error")
	}
}

func TestTokenService_MissingHeader(t *testing.T) {
	svc := newTestTokenService(t)
	req := httptest.NewRequest(http.MethodGet, "http://example.test/", nil)
	if _, err := svc.Authenticate(context.Background(), req); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Authenticate() err=%v, want ErrUnauthenticated", err)
	}
	req.Header.Set("Authorization", "Basic abc")
	if _, err := svc.Authenticate(context.Background(), req); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Authenticate(basic) err=%v, want ErrUnauthenticated", err)
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("HashPassword(short) expected error")
	}
	hash, err := HashPassword("long enough password")
	if err != nil {
		t.Fatalf("HashPassword() err=%v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("long enough password")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}
