package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecotrackAPI/internal/apperr"
	"ecotrackAPI/internal/challenge"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const featuredLimit = 6

type ChallengeService struct {
	db *pgxpool.Pool
}

func NewChallengeService(db *pgxpool.Pool) *ChallengeService {
	return &ChallengeService{db: db}
}

const challengeColumns = `id, title, description, category, image_url, start_date, end_date, participants, created_by, created_at`

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	var c challenge.Challenge
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.ImageURL,
		&c.StartDate,
		&c.EndDate,
		&c.Participants,
		&c.CreatedBy,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the catalog restricted by the filter. An empty filter
// returns everything.
func (s *ChallengeService) List(ctx context.Context, f *challenge.Filter) ([]*challenge.Challenge, error) {
	where, args := f.SQL()
	query := `SELECT ` + challengeColumns + ` FROM challenges` + where + ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	challenges := make([]*challenge.Challenge, 0)
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// Featured returns up to 6 challenges for the featured strip.
func (s *ChallengeService) Featured(ctx context.Context) ([]*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges LIMIT $1`

	rows, err := s.db.Query(ctx, query, featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("featured challenges: %w", err)
	}
	defer rows.Close()

	challenges := make([]*challenge.Challenge, 0, featuredLimit)
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// GetWithLiveCount returns one challenge with its participants field
// replaced by a live count of ledger entries. The stored counter is left
// untouched; the live value is authoritative on this read path.
func (s *ChallengeService) GetWithLiveCount(ctx context.Context, id string) (*challenge.Challenge, error) {
	challengeID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.New(apperr.InvalidArgument, "Invalid Challenge ID format")
	}

	query := `
		SELECT c.id, c.title, c.description, c.category, c.image_url,
		       c.start_date, c.end_date,
		       (SELECT COUNT(*) FROM user_challenges uc WHERE uc.challenge_id = c.id)::int AS participants,
		       c.created_by, c.created_at
		FROM challenges c
		WHERE c.id = $1
	`
	c, err := scanChallenge(s.db.QueryRow(ctx, query, challengeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "Challenge not found")
		}
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

// Create inserts a new challenge. createdBy is the verified email of the
// caller; it may be empty when creation bypasses authentication.
func (s *ChallengeService) Create(ctx context.Context, req *challenge.CreateChallengeRequest, createdBy string) (uuid.UUID, error) {
	if strings.TrimSpace(req.Title) == "" {
		return uuid.Nil, apperr.New(apperr.InvalidArgument, "Title is required")
	}
	startDate, err := time.Parse(challenge.DateLayout, req.StartDate)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.InvalidArgument, "Invalid startDate: expected YYYY-MM-DD")
	}
	endDate, err := time.Parse(challenge.DateLayout, req.EndDate)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.InvalidArgument, "Invalid endDate: expected YYYY-MM-DD")
	}
	if req.Participants < 0 {
		return uuid.Nil, apperr.New(apperr.InvalidArgument, "participants cannot be negative")
	}

	var stamp *string
	if createdBy != "" {
		stamp = &createdBy
	}

	id := uuid.New()
	query := `
		INSERT INTO challenges (id, title, description, category, image_url, start_date, end_date, participants, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.Exec(ctx, query,
		id, req.Title, req.Description, req.Category, req.ImageURL,
		startDate, endDate, req.Participants, stamp,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert challenge: %w", err)
	}
	return id, nil
}

// UpdateFields merges the supplied fields into an existing challenge and
// returns how many rows matched.
func (s *ChallengeService) UpdateFields(ctx context.Context, id string, req *challenge.UpdateChallengeRequest) (int64, error) {
	challengeID, err := uuid.Parse(id)
	if err != nil {
		return 0, apperr.New(apperr.InvalidArgument, "Invalid Challenge ID format")
	}

	var sets []string
	args := []any{challengeID}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Title != nil {
		appendSet("title", *req.Title)
	}
	if req.Description != nil {
		appendSet("description", *req.Description)
	}
	if req.Category != nil {
		appendSet("category", *req.Category)
	}
	if req.ImageURL != nil {
		appendSet("image_url", *req.ImageURL)
	}
	if req.StartDate != nil {
		t, err := time.Parse(challenge.DateLayout, *req.StartDate)
		if err != nil {
			return 0, apperr.New(apperr.InvalidArgument, "Invalid startDate: expected YYYY-MM-DD")
		}
		appendSet("start_date", t)
	}
	if req.EndDate != nil {
		t, err := time.Parse(challenge.DateLayout, *req.EndDate)
		if err != nil {
			return 0, apperr.New(apperr.InvalidArgument, "Invalid endDate: expected YYYY-MM-DD")
		}
		appendSet("end_date", t)
	}

	if len(sets) == 0 {
		return 0, apperr.New(apperr.InvalidArgument, "No updatable fields supplied")
	}

	query := `UPDATE challenges SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update challenge: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a challenge. Ledger entries referencing it are left in
// place, matching the original behavior of no cascading cleanup.
func (s *ChallengeService) Delete(ctx context.Context, id string) (int64, error) {
	challengeID, err := uuid.Parse(id)
	if err != nil {
		return 0, apperr.New(apperr.InvalidArgument, "Invalid Challenge ID format")
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, challengeID)
	if err != nil {
		return 0, fmt.Errorf("delete challenge: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ReconcileCounters recomputes every participants counter from the join
// ledger and returns how many rows were repaired. The denormalized counter
// is a cache; the ledger is the source of truth.
func (s *ChallengeService) ReconcileCounters(ctx context.Context) (int64, error) {
	query := `
		UPDATE challenges c
		SET participants = l.cnt
		FROM (
			SELECT c2.id, COALESCE(COUNT(uc.id), 0)::int AS cnt
			FROM challenges c2
			LEFT JOIN user_challenges uc ON uc.challenge_id = c2.id
			GROUP BY c2.id
		) l
		WHERE c.id = l.id AND c.participants <> l.cnt
	`
	tag, err := s.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("reconcile participant counters: %w", err)
	}
	return tag.RowsAffected(), nil
}
