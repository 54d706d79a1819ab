package domain

import (
	"context"
	"io"
)

// User represents a registered account.
type User struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Avatar       string `gorm:"size:512" json:"avatar,omitempty"`
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
}

// UserService defines profile operations for an already authenticated user.
type UserService interface {
	GetProfile(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id, name, avatar string) (*User, error)
	UploadAvatar(ctx context.Context, id string, upload AvatarUpload) (*User, error)
}

// AvatarUpload is an image submitted as a user's avatar.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
