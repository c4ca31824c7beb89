package services

import (
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"tournament-signup-system/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Identity is the opaque signed-in identity the rest of the service sees.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// IDTokenResult is a minted or verified ID token together with its custom
// claims. Admin reflects the claim set at mint time — NOT necessarily the
// account's current claim. Callers that need the truth right after a
// promotion must fetch with forceRefresh.
type IDTokenResult struct {
	Token     string
	UID       string
	Email     string
	Admin     bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionEvent notifies listeners of sign-in and sign-out. Identity is nil
// when the session for UID ended.
type SessionEvent struct {
	UID      string
	Identity *Identity
}

type idClaims struct {
	Admin bool   `json:"admin"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IdentityService is the embedded identity provider: email/password
// accounts with bcrypt hashes, HS256 ID tokens carrying an admin custom
// claim, a per-uid token cache, and session-change notification.
//
// SetCustomClaims updates the account only — it never invalidates cached
// tokens. That staleness is the point: a cached token keeps under-reporting
// admin until someone asks for a force-refreshed one.
type IdentityService struct {
	DB       *gorm.DB
	secret   []byte
	tokenTTL time.Duration

	mu        sync.Mutex
	cached    map[string]*IDTokenResult
	listeners []func(SessionEvent)
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	secret := os.Getenv("AUTH_TOKEN_SECRET")
	if secret == "" {
		log.Fatal("AUTH_TOKEN_SECRET environment variable not set")
	}
	return &IdentityService{
		DB:       db,
		secret:   []byte(secret),
		tokenTTL: time.Hour,
		cached:   make(map[string]*IDTokenResult),
	}
}

// OnSessionChange registers a listener for sign-in/sign-out events.
func (s *IdentityService) OnSessionChange(fn func(SessionEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *IdentityService) notify(ev SessionEvent) {
	s.mu.Lock()
	listeners := make([]func(SessionEvent), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// SignUp creates an identity for the email and announces the new session.
func (s *IdentityService) SignUp(email, password string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var count int64
	if err := s.DB.Model(&models.IdentityAccount{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailInUse
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account := models.IdentityAccount{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.DB.Create(&account).Error; err != nil {
		return nil, err
	}
	ident := &Identity{UID: account.UID, Email: account.Email}
	s.notify(SessionEvent{UID: ident.UID, Identity: ident})
	return ident, nil
}

// SignIn verifies credentials and announces the new session.
func (s *IdentityService) SignIn(email, password string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var account models.IdentityAccount
	if err := s.DB.First(&account, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	ident := &Identity{UID: account.UID, Email: account.Email}
	s.notify(SessionEvent{UID: ident.UID, Identity: ident})
	return ident, nil
}

// SignOut drops the cached token for uid and announces the ended session.
func (s *IdentityService) SignOut(uid string) {
	s.mu.Lock()
	delete(s.cached, uid)
	s.mu.Unlock()
	s.notify(SessionEvent{UID: uid})
}

// GetUserByEmail resolves an email to its identity.
func (s *IdentityService) GetUserByEmail(email string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var account models.IdentityAccount
	if err := s.DB.First(&account, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &Identity{UID: account.UID, Email: account.Email}, nil
}

// SetCustomClaims updates the admin claim on the account. Cached tokens are
// left alone: they keep reporting the old claim until a forced refresh.
func (s *IdentityService) SetCustomClaims(uid string, admin bool) error {
	res := s.DB.Model(&models.IdentityAccount{}).Where("uid = ?", uid).
		Update("admin", admin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IDTokenResult returns an ID token with claims for uid. With forceRefresh
// false a cached, unexpired token is returned as-is, stale claims and all.
// With forceRefresh true the account is re-read and a fresh token minted.
func (s *IdentityService) IDTokenResult(uid string, forceRefresh bool) (*IDTokenResult, error) {
	if !forceRefresh {
		s.mu.Lock()
		tok, ok := s.cached[uid]
		s.mu.Unlock()
		if ok && time.Now().Before(tok.ExpiresAt) {
			return tok, nil
		}
	}
	var account models.IdentityAccount
	if err := s.DB.First(&account, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	tok, err := s.mint(&account)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cached[uid] = tok
	s.mu.Unlock()
	return tok, nil
}

func (s *IdentityService) mint(account *models.IdentityAccount) (*IDTokenResult, error) {
	now := time.Now()
	exp := now.Add(s.tokenTTL)
	claims := &idClaims{
		Admin: account.Admin,
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &IDTokenResult{
		Token:     signed,
		UID:       account.UID,
		Email:     account.Email,
		Admin:     account.Admin,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// VerifyIDToken parses and validates a presented ID token.
func (s *IdentityService) VerifyIDToken(tokenStr string) (*IDTokenResult, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &idClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*idClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	res := &IDTokenResult{
		Token: tokenStr,
		UID:   claims.Subject,
		Email: claims.Email,
		Admin: claims.Admin,
	}
	if claims.IssuedAt != nil {
		res.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		res.ExpiresAt = claims.ExpiresAt.Time
	}
	return res, nil
}
