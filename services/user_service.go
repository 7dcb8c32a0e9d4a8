package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecotrackAPI/internal/apperr"
	"ecotrackAPI/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// Register creates a user keyed by email. A nil id with a nil error means
// the email was already registered.
func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest) (*uuid.UUID, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Email is required")
	}

	id := uuid.New()
	var inserted uuid.UUID
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, photo_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id`,
		id, req.Name, email, req.PhotoURL,
	).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &inserted, nil
}
