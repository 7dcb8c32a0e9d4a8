package challenge

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for challenge start/end dates.
const DateLayout = "2006-01-02"

type Challenge struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Category     string    `json:"category" db:"category"`
	ImageURL     *string   `json:"imageUrl" db:"image_url"`
	StartDate    time.Time `json:"startDate" db:"start_date"`
	EndDate      time.Time `json:"endDate" db:"end_date"`
	Participants int       `json:"participants" db:"participants"`
	CreatedBy    *string   `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type CreateChallengeRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	ImageURL     *string `json:"imageUrl"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Participants int     `json:"participants"`
}

// UpdateChallengeRequest carries the mutable fields of a challenge. Nil
// fields are left untouched; unknown payload keys are dropped on decode so
// callers cannot write arbitrary columns.
type UpdateChallengeRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"imageUrl"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}
