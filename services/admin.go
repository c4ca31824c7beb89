package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

var ErrEmailRequired = errors.New("email is required")

// IdentityAdmin is the slice of the identity provider the role-assignment
// operation needs.
type IdentityAdmin interface {
	GetUserByEmail(email string) (*Identity, error)
	SetCustomClaims(uid string, admin bool) error
}

// ProfileAdmin marks the stored profile document as admin.
type ProfileAdmin interface {
	SetUserAdmin(uid string) error
}

// AdminService is the trusted role-assignment collaborator. Given an email
// it resolves the identity, sets the admin custom claim, and marks the
// profile document — two separate writes with no atomicity between them.
// This is the only path by which isAdmin ever becomes true, and existing
// ID tokens keep reporting false until a forced claims refresh.
type AdminService struct {
	Identity IdentityAdmin
	Profiles ProfileAdmin
}

func NewAdminService(identity IdentityAdmin, profiles ProfileAdmin) *AdminService {
	return &AdminService{Identity: identity, Profiles: profiles}
}

// AddAdminRole promotes the user behind email to admin. Errors:
// ErrEmailRequired when no email is supplied, ErrUserNotFound when the
// email has no identity, anything else is an unknown failure.
func (s *AdminService) AddAdminRole(email string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}

	ident, err := s.Identity.GetUserByEmail(email)
	if err != nil {
		return "", err
	}

	// 1. Claim in the identity provider.
	if err := s.Identity.SetCustomClaims(ident.UID, true); err != nil {
		return "", err
	}

	// 2. Profile document. A failure here leaves claim and profile
	// inconsistent until the operation is retried.
	if err := s.Profiles.SetUserAdmin(ident.UID); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s has been assigned as administrator", email), nil
}

// AddAdminRoleHandler exposes the RPC. The route is gated by the service
// token middleware: only the trusted admin client reaches it.
func (s *AdminService) AddAdminRoleHandler(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	message, err := s.AddAdminRole(req.Email)
	switch {
	case err == nil:
	case errors.Is(err, ErrEmailRequired):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrUserNotFound):
		return c.Status(404).JSON(fiber.Map{"error": fmt.Sprintf("no user found with email %s", req.Email)})
	default:
		log.Printf("❌ [ADMIN] add-admin-role failed for %s: %v", req.Email, err)
		return c.Status(500).JSON(fiber.Map{"error": "unexpected error"})
	}

	log.Printf("✅ [ADMIN] %s promoted to administrator", req.Email)
	return c.JSON(fiber.Map{"message": message})
}
