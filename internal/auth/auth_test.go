package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/collab-blog-api/internal/config"
	"github.com/collab-blog-api/internal/models"
)

func newTestVerifier() *Verifier {
	return NewVerifier(&config.AuthConfig{
		JWTSecret:     "test-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
}

func testUser() *models.User {
	return &models.User{ID: "user-1", Username: "alice", Role: models.RoleWriter}
}

func TestIssueAndVerify(t *testing.T) {
	v := newTestVerifier()

	token, err := v.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" || claims.Role != models.RoleWriter {
		t.Errorf("Unexpected claims %+v", claims)
	}
}

func TestVerifyAcceptsBearerPrefix(t *testing.T) {
	v := newTestVerifier()
	token, err := v.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}

	claims, err := v.Verify("Bearer " + token)
	if err != nil {
		t.Fatalf("Verify with Bearer prefix failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", claims.UserID)
	}
}

func TestVerifyRejectsMissingToken(t *testing.T) {
	v := newTestVerifier()

	for _, raw := range []string{"", "   ", "Bearer "} {
		if _, err := v.Verify(raw); !errors.Is(err, ErrTokenMissing) {
			t.Errorf("Expected ErrTokenMissing for %q, got %v", raw, err)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := NewVerifier(&config.AuthConfig{
		JWTSecret:     "different-secret",
		RefreshSecret: "different-refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
	})
	token, err := other.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := newTestVerifier().Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for a foreign signature, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier(&config.AuthConfig{
		JWTSecret:     "test-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     -time.Minute,
		RefreshTTL:    time.Hour,
	})
	token, err := v.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for an expired token, got %v", err)
	}
}

func TestRefreshTokenSeparateFromAccess(t *testing.T) {
	v := newTestVerifier()
	user := testUser()

	refresh, err := v.IssueRefresh(user)
	if err != nil {
		t.Fatal(err)
	}

	userID, err := v.VerifyRefresh(refresh)
	if err != nil {
		t.Fatalf("VerifyRefresh failed: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Expected user-1, got %s", userID)
	}

	// The two token families do not cross-validate.
	if _, err := v.Verify(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected a refresh token rejected as access token, got %v", err)
	}
	access, err := v.Issue(user)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected an access token rejected as refresh token, got %v", err)
	}
}
