package models

import "time"

// IdentityAccount is the identity provider's own record for a user:
// credentials plus the custom admin claim. It is deliberately a separate
// table from the User profile document — the claim and the profile flag
// have no atomicity guarantee between them, and ID tokens minted before a
// claim change keep reporting the old value until a forced refresh.
type IdentityAccount struct {
	UID          string    `json:"uid" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Admin        bool      `json:"admin" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
