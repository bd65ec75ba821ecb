package users

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient  Role = "CLIENT"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// IsStaff reports whether the role may manage flights and booking statuses.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleClient), string(RoleManager), string(RoleAdmin):
		return true
	default:
		return false
	}
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name      string    `json:"name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'CLIENT'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSafeResponse is the user shape embedded in booking responses.
type UserSafeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) ToSafeResponse() UserSafeResponse {
	return UserSafeResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
