package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	PhotoURL  *string   `json:"photoUrl" db:"photo_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	PhotoURL *string `json:"photoUrl"`
}
