package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Session      *string   `json:"-"`
	Name         *string   `json:"name"`
	Phone        *string   `json:"phone"`
	Age          *int      `json:"age"`
	Weight       *float64  `json:"weight"`
	Height       *float64  `json:"height"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionSnapshot is the denormalized copy of a user stored in the token
// cache under the session token.
type SessionSnapshot struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Session  string    `json:"session"`
}

func (u *User) Snapshot(token string) SessionSnapshot {
	return SessionSnapshot{
		ID:       u.ID,
		Username: u.Username,
		Session:  token,
	}
}
