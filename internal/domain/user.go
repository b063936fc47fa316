package domain

import (
	"context"
	"time"
)

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Pseudo       string    `gorm:"uniqueIndex;size:64;not null" json:"pseudo"`
	PasswordHash string    `gorm:"column:password_hash;size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserRole is optional per user; a missing row means the user is not an admin.
type UserRole struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64 `gorm:"uniqueIndex;not null" json:"user_id"`
	IsAdmin bool  `gorm:"not null" json:"is_admin"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserPatch carries only the fields a caller asked to change.
type UserPatch struct {
	Email        *string
	Pseudo       *string
	PasswordHash *string
}

func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Pseudo == nil && p.PasswordHash == nil
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByPseudo(ctx context.Context, pseudo string) (*User, error)
	// FindCredentialsByPseudo is the only lookup that loads PasswordHash.
	FindCredentialsByPseudo(ctx context.Context, pseudo string) (*User, error)
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, id int64, p UserPatch) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type RoleRepository interface {
	Get(ctx context.Context, userID int64) (*UserRole, error)
	Upsert(ctx context.Context, userID int64, isAdmin bool) (*UserRole, error)
	Delete(ctx context.Context, userID int64) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Caller is the authenticated principal a request acts as. The zero value is anonymous.
type Caller struct {
	UserID int64
	Pseudo string
}

func (c Caller) Anonymous() bool { return c.UserID == 0 }
