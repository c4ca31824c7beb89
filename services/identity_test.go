package services

import (
	"errors"
	"testing"
	"time"

	"tournament-signup-system/models"
)

func testIdentityService(ttl time.Duration) *IdentityService {
	return &IdentityService{
		secret:   []byte("test-secret"),
		tokenTTL: ttl,
		cached:   make(map[string]*IDTokenResult),
	}
}

func TestMintVerifyRoundTrip(t *testing.T) {
	s := testIdentityService(time.Hour)
	account := &models.IdentityAccount{
		UID:   "u1",
		Email: "ana@example.com",
		Admin: true,
	}

	tok, err := s.mint(account)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	got, err := s.VerifyIDToken(tok.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UID != "u1" || got.Email != "ana@example.com" || !got.Admin {
		t.Errorf("claims lost in round trip: %+v", got)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := testIdentityService(-time.Minute)
	tok, err := s.mint(&models.IdentityAccount{UID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := s.VerifyIDToken(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := testIdentityService(time.Hour)
	if _, err := s.VerifyIDToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer := testIdentityService(time.Hour)
	tok, err := issuer.mint(&models.IdentityAccount{UID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	verifier := testIdentityService(time.Hour)
	verifier.secret = []byte("a-different-secret")
	if _, err := verifier.VerifyIDToken(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

// Without forceRefresh a cached, unexpired token is returned untouched —
// stale admin claim included. The nil DB proves nothing else was consulted.
func TestIDTokenResult_CachedTokenKeepsStaleClaims(t *testing.T) {
	s := testIdentityService(time.Hour)
	stale := &IDTokenResult{
		Token:     "cached-token",
		UID:       "u1",
		Admin:     false, // promoted since, but this token predates it
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	s.cached["u1"] = stale

	got, err := s.IDTokenResult("u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != stale {
		t.Errorf("expected the cached token to be returned as-is")
	}
	if got.Admin {
		t.Errorf("cached token must keep reporting the stale claim")
	}
}
