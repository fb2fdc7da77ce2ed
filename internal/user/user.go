package user

import (
	"time"

	"github.com/frahmantamala/inventory-lending/internal"
)

// User is a person who may borrow items. Accounts are owned here; the
// borrowing lifecycle only ever reads them.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string    `json:"full_name" gorm:"column:full_name;not null"`
	Role         string    `json:"role" gorm:"column:role;default:user"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

var (
	ErrNotFound      = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrDuplicateUser = internal.NewConflictError("username or email already in use", internal.ErrCodeDuplicateUser)
)
