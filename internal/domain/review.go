package domain

import "time"

// MinReviewContentLength is the content-quality floor for review bodies, in characters.
const MinReviewContentLength = 50

// Review is a user's star rating and write-up of a movie.
type Review struct {
	ID             string
	UserID         string
	MovieID        string
	Rating         int
	Title          string
	Content        string
	SpoilerWarning bool
	Likes          int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReviewCreate carries the fields of a new review.
type ReviewCreate struct {
	UserID         string `validate:"required"`
	MovieID        string `validate:"required"`
	Rating         int    `validate:"gte=1,lte=5"`
	Title          string `validate:"required,max=200"`
	Content        string `validate:"min=50"`
	SpoilerWarning bool
}

// ReviewUpdate is a partial review update. Ownership and the target movie cannot change.
type ReviewUpdate struct {
	Rating         *int    `validate:"omitempty,gte=1,lte=5"`
	Title          *string `validate:"omitempty,min=1,max=200"`
	Content        *string `validate:"omitempty,min=50"`
	SpoilerWarning *bool
}

// ReviewWithUser is a review joined with its author and movie projections.
type ReviewWithUser struct {
	Review
	User  UserSummary
	Movie MovieSummary
}

// MovieWithReviews is a movie together with its resolved reviews, newest first.
type MovieWithReviews struct {
	Movie
	Reviews []ReviewWithUser
}

// Apply merges the non-nil fields of u into r. UpdatedAt is left to the store.
func (u ReviewUpdate) Apply(r Review) Review {
	if u.Rating != nil {
		r.Rating = *u.Rating
	}
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Content != nil {
		r.Content = *u.Content
	}
	if u.SpoilerWarning != nil {
		r.SpoilerWarning = *u.SpoilerWarning
	}
	return r
}
