package services

import (
	"errors"
	"log"

	"tournament-signup-system/models"

	"github.com/gofiber/fiber/v2"
)

// AuthService ties the identity provider, the profile store and the
// session registry together behind the auth endpoints.
type AuthService struct {
	Identity *IdentityService
	Store    *Store
	Sessions *SessionRegistry
}

func NewAuthService(identity *IdentityService, store *Store, sessions *SessionRegistry) *AuthService {
	return &AuthService{Identity: identity, Store: store, Sessions: sessions}
}

// SignUpHandler registers a new user: identity first, then the profile
// document keyed by the new uid.
func (s *AuthService) SignUpHandler(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email, password, firstName and lastName are required"})
	}

	ident, err := s.Identity.SignUp(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("❌ [AUTH] signup failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to sign up"})
	}

	user := &models.User{
		UID:         ident.UID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       ident.Email,
	}
	if err := s.Store.CreateUserDocument(user); err != nil {
		// The identity exists but the profile write failed; the session
		// manager tolerates the missing document, so surface the failure
		// and let the user retry from sign-in.
		log.Printf("⚠️ [AUTH] profile document write failed for %s: %v", ident.UID, err)
		return c.Status(500).JSON(fiber.Map{"error": "account created but profile could not be saved"})
	}

	tok, err := s.Identity.IDTokenResult(ident.UID, true)
	if err != nil {
		log.Printf("❌ [AUTH] token mint failed for %s: %v", ident.UID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue token"})
	}

	return c.Status(201).JSON(fiber.Map{"token": tok.Token, "user": user})
}

func (s *AuthService) SignInHandler(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email and password are required"})
	}

	ident, err := s.Identity.SignIn(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("❌ [AUTH] signin failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to sign in"})
	}

	// Session change already forced a claim refresh through the registry;
	// mint the token the client will carry.
	tok, err := s.Identity.IDTokenResult(ident.UID, true)
	if err != nil {
		log.Printf("❌ [AUTH] token mint failed for %s: %v", ident.UID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue token"})
	}

	return c.JSON(fiber.Map{"token": tok.Token, "session": s.Sessions.Snapshot(ident)})
}

func (s *AuthService) SignOutHandler(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	s.Identity.SignOut(uid)
	return c.JSON(fiber.Map{"message": "signed out"})
}

// GetSessionHandler returns the reconciled snapshot for the caller.
func (s *AuthService) GetSessionHandler(c *fiber.Ctx) error {
	ident, _ := c.Locals("identity").(*Identity)
	if ident == nil {
		return c.Status(401).JSON(fiber.Map{"error": "no session"})
	}
	return c.JSON(s.Sessions.Snapshot(ident))
}

// RefreshSessionHandler re-runs reconciliation on demand — the server-side
// twin of pull-to-refresh.
func (s *AuthService) RefreshSessionHandler(c *fiber.Ctx) error {
	ident, _ := c.Locals("identity").(*Identity)
	if ident == nil {
		return c.Status(401).JSON(fiber.Map{"error": "no session"})
	}
	return c.JSON(s.Sessions.Refresh(ident))
}
