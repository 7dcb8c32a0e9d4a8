package services

import (
	"context"
	"errors"
	"fmt"

	"ecotrackAPI/internal/apperr"
	"ecotrackAPI/internal/participation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code raised when the
// (user_id, challenge_id) constraint rejects a duplicate join.
const uniqueViolation = "23505"

type ParticipationService struct {
	db *pgxpool.Pool
}

func NewParticipationService(db *pgxpool.Pool) *ParticipationService {
	return &ParticipationService{db: db}
}

// Join records a user's participation in a challenge and bumps the
// challenge's denormalized participants counter. Insert and increment run
// in one transaction, so the counter can never drift on this path; a
// concurrent duplicate join loses on the unique constraint rather than on a
// racy existence check.
func (s *ParticipationService) Join(ctx context.Context, req *participation.JoinRequest) (uuid.UUID, error) {
	if req.UserID == "" || req.ChallengeID == "" {
		return uuid.Nil, apperr.New(apperr.InvalidArgument, "Missing userId or challengeId")
	}

	challengeID, err := uuid.Parse(req.ChallengeID)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.InvalidArgument, "Invalid Challenge ID format")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.New()
	insertQuery := `
		INSERT INTO user_challenges (id, user_id, challenge_id, status, progress, join_date)
		VALUES ($1, $2, $3, $4, 0, now())
	`
	_, err = tx.Exec(ctx, insertQuery, id, req.UserID, challengeID, participation.StatusNotStarted)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, apperr.New(apperr.Conflict, "Already joined this challenge")
		}
		return uuid.Nil, fmt.Errorf("insert join record: %w", err)
	}

	// The counter update matches zero rows when the challenge was deleted
	// or never existed; the join record still stands, same as the original.
	_, err = tx.Exec(ctx,
		`UPDATE challenges SET participants = participants + 1 WHERE id = $1`,
		challengeID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("increment participants: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit join: %w", err)
	}

	return id, nil
}

// ListAll dumps the whole ledger.
func (s *ParticipationService) ListAll(ctx context.Context) ([]*participation.JoinRecord, error) {
	return s.list(ctx,
		`SELECT id, user_id, challenge_id, status, progress, join_date FROM user_challenges ORDER BY join_date DESC`)
}

// ListByUser returns every join record for one user.
func (s *ParticipationService) ListByUser(ctx context.Context, userID string) ([]*participation.JoinRecord, error) {
	return s.list(ctx,
		`SELECT id, user_id, challenge_id, status, progress, join_date FROM user_challenges WHERE user_id = $1 ORDER BY join_date DESC`,
		userID)
}

func (s *ParticipationService) list(ctx context.Context, query string, args ...any) ([]*participation.JoinRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list join records: %w", err)
	}
	defer rows.Close()

	records := make([]*participation.JoinRecord, 0)
	for rows.Next() {
		var rec participation.JoinRecord
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.ChallengeID, &rec.Status, &rec.Progress, &rec.JoinDate)
		if err != nil {
			return nil, fmt.Errorf("scan join record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// SetStatus moves a join record to a new status and reports whether the
// value changed, was already set, or the record does not exist.
func (s *ParticipationService) SetStatus(ctx context.Context, userID, challengeIDRaw string, status participation.Status) (participation.Outcome, error) {
	challengeID, err := uuid.Parse(challengeIDRaw)
	if err != nil {
		return 0, apperr.New(apperr.InvalidArgument, "Invalid Challenge ID format")
	}
	if !status.Valid() {
		return 0, apperr.New(apperr.InvalidArgument,
			"Invalid status: must be one of 'Not Started', 'In Progress', 'Completed'")
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE user_challenges SET status = $3 WHERE user_id = $1 AND challenge_id = $2 AND status <> $3`,
		userID, challengeID, status,
	)
	if err != nil {
		return 0, fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return participation.OutcomeChanged, nil
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_challenges WHERE user_id = $1 AND challenge_id = $2)`,
		userID, challengeID,
	).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("check join record: %w", err)
	}
	if exists {
		return participation.OutcomeUnchanged, nil
	}
	return participation.OutcomeNotFound, nil
}
