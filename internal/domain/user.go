package domain

import (
	"context"
	"time"
)

type User struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Email string `gorm:"uniqueIndex;size:191" json:"email"`
	// Password travels on the wire only; the remote service owns verification.
	// Locally we keep a bcrypt hash so the offline login check behaves the same.
	Password     string `gorm:"-" json:"password,omitempty"`
	PasswordHash string `gorm:"size:191" json:"-"`
	// PendingPassword holds the opaque password of a registration the remote
	// has not acknowledged yet; replaying the registration needs it. Cleared
	// the moment the flush succeeds.
	PendingPassword string `gorm:"size:191" json:"-"`
	Name         string `gorm:"size:64" json:"name"`
	Phone        string `gorm:"size:32" json:"phone"`
	Address      string `gorm:"size:255" json:"address"`
	IsAdmin      bool   `json:"isAdmin"`
	ProfileImage string `gorm:"size:512" json:"profileImageUri,omitempty"`

	// Pending marks a row written through the local fallback and not yet
	// acknowledged by the remote.
	Pending   bool      `gorm:"index" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// Role as carried in the local session token.
func (u *User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

type UserRepository interface {
	Upsert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]User, error)
}
