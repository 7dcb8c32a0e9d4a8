package services

import (
	"context"
	"errors"
	"fmt"

	"ecotrackAPI/internal/content"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	recentTipsLimit     = 5
	upcomingEventsLimit = 4
)

// ContentService serves the read-only tips/events/stats endpoints.
type ContentService struct {
	db *pgxpool.Pool
}

func NewContentService(db *pgxpool.Pool) *ContentService {
	return &ContentService{db: db}
}

func (s *ContentService) ListTips(ctx context.Context) ([]*content.Tip, error) {
	return s.tips(ctx, `SELECT id, title, body, created_at FROM tips`)
}

func (s *ContentService) RecentTips(ctx context.Context) ([]*content.Tip, error) {
	return s.tips(ctx,
		`SELECT id, title, body, created_at FROM tips ORDER BY created_at DESC LIMIT $1`,
		recentTipsLimit)
}

func (s *ContentService) tips(ctx context.Context, query string, args ...any) ([]*content.Tip, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	defer rows.Close()

	tips := make([]*content.Tip, 0)
	for rows.Next() {
		var t content.Tip
		if err := rows.Scan(&t.ID, &t.Title, &t.Body, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tip: %w", err)
		}
		tips = append(tips, &t)
	}
	return tips, rows.Err()
}

func (s *ContentService) ListEvents(ctx context.Context) ([]*content.Event, error) {
	return s.events(ctx,
		`SELECT id, title, description, location, event_date, created_at FROM events`)
}

func (s *ContentService) UpcomingEvents(ctx context.Context) ([]*content.Event, error) {
	return s.events(ctx,
		`SELECT id, title, description, location, event_date, created_at FROM events ORDER BY event_date ASC LIMIT $1`,
		upcomingEventsLimit)
}

func (s *ContentService) events(ctx context.Context, query string, args ...any) ([]*content.Event, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]*content.Event, 0)
	for rows.Next() {
		var e content.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.EventDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// GetStats returns the single site-stats row, or nil when none exists yet.
func (s *ContentService) GetStats(ctx context.Context) (*content.SiteStats, error) {
	var st content.SiteStats
	err := s.db.QueryRow(ctx,
		`SELECT total_users, total_challenges, co2_saved_kg, updated_at FROM site_stats WHERE id = 1`,
	).Scan(&st.TotalUsers, &st.TotalChallenges, &st.CO2SavedKg, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}
