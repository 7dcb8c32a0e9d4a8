package participation

import (
	"time"

	"github.com/google/uuid"
)

// Status is the progress state of one user's participation in a challenge.
// The set is closed; the wire values match what clients already send.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// JoinRecord is one user's participation in one challenge. UserID is an
// opaque client identifier, not a foreign key.
type JoinRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	ChallengeID uuid.UUID `json:"challengeId" db:"challenge_id"`
	Status      Status    `json:"status" db:"status"`
	Progress    int       `json:"progress" db:"progress"`
	JoinDate    time.Time `json:"joinDate" db:"join_date"`
}

type JoinRequest struct {
	UserID      string `json:"userId"`
	ChallengeID string `json:"challengeId"`
}

type StatusUpdateRequest struct {
	Status Status `json:"status"`
}

// Outcome distinguishes the three results of a status update.
type Outcome int

const (
	OutcomeChanged Outcome = iota
	OutcomeUnchanged
	OutcomeNotFound
)
