package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type User struct {
	ID         string
	ExternalID string
	Email      string
	Name       string
	Picture    string
	CreatedAt  time.Time
}

// Profile is the public view of a user returned on login.
type Profile struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Picture *string `json:"picture"`
}

func (u User) Profile() Profile {
	p := Profile{ID: u.ID, Name: u.Name, Email: u.Email}
	if u.Picture != "" {
		pic := u.Picture
		p.Picture = &pic
	}
	return p
}

// UserStore persists users. FindByIdentity matches on external id OR email
// and returns ErrUserNotFound when neither matches. Create assigns u.ID when
// empty and returns ErrUserExists on a uniqueness conflict.
type UserStore interface {
	FindByIdentity(ctx context.Context, externalID, email string) (User, error)
	Create(ctx context.Context, u *User) error
}
