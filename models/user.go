package models

// User is the profile document kept alongside an identity account,
// keyed by the identity provider's uid. Created at registration.
// IsAdmin mirrors the identity provider's admin claim; it is only ever
// set by the add-admin-role operation, which writes the claim and this
// flag as two separate, non-atomic updates.
type User struct {
	UID         string `json:"uid" gorm:"primaryKey"`
	FirstName   string `json:"firstName" gorm:"not null"`
	LastName    string `json:"lastName" gorm:"not null"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email" gorm:"not null;index"`
	IsAdmin     bool   `json:"isAdmin" gorm:"default:false"`
}

// ParticipantView is what the participants endpoint returns for one user.
// Email and phone are only filled in for admin callers.
type ParticipantView struct {
	UID         string `json:"uid"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}
