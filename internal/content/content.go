package content

import (
	"time"

	"github.com/google/uuid"
)

type Tip struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Event struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	EventDate   time.Time `json:"eventDate" db:"event_date"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// SiteStats is the single aggregate row behind GET /stats.
type SiteStats struct {
	TotalUsers      int       `json:"totalUsers" db:"total_users"`
	TotalChallenges int       `json:"totalChallenges" db:"total_challenges"`
	CO2SavedKg      float64   `json:"co2SavedKg" db:"co2_saved_kg"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
