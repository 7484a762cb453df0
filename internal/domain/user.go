package domain

import "time"

// User is a registered account. PasswordHash is an opaque credential; hashing and
// verification happen outside the catalog.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	ProfilePicture string
	CreatedAt      time.Time
}

// UserCreate carries the fields of a registration.
type UserCreate struct {
	Username       string `validate:"required,min=3,max=50"`
	Email          string `validate:"required,email,max=255"`
	PasswordHash   string `validate:"required"`
	ProfilePicture string `validate:"max=2048"`
}

// UserUpdate is a partial profile update.
type UserUpdate struct {
	Username       *string `validate:"omitempty,min=3,max=50"`
	Email          *string `validate:"omitempty,email,max=255"`
	PasswordHash   *string `validate:"omitempty,min=1"`
	ProfilePicture *string `validate:"omitempty,max=2048"`
}

// UserSummary is the minimal user projection attached to resolved reviews.
type UserSummary struct {
	ID             string
	Username       string
	ProfilePicture string
}

// Summary projects the user for display next to a review.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

// Apply merges the non-nil fields of p into u.
func (p UserUpdate) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	return u
}
