package services

import (
	"context"
	"sync"
	"testing"

	"ecotrackAPI/internal/apperr"
	"ecotrackAPI/internal/challenge"
	"ecotrackAPI/internal/participation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Validation happens before any query, so these cases run without a
// database.

func TestJoinRejectsMissingFields(t *testing.T) {
	svc := NewParticipationService(nil)
	ctx := context.Background()

	cases := []*participation.JoinRequest{
		{UserID: "", ChallengeID: uuid.NewString()},
		{UserID: "test-user", ChallengeID: ""},
		{},
	}
	for _, req := range cases {
		_, err := svc.Join(ctx, req)
		if err == nil {
			t.Fatalf("Expected error for %+v", req)
		}
		if apperr.KindOf(err) != apperr.InvalidArgument {
			t.Errorf("Expected InvalidArgument for %+v, got %v", req, apperr.KindOf(err))
		}
	}
}

func TestJoinRejectsMalformedChallengeID(t *testing.T) {
	svc := NewParticipationService(nil)

	_, err := svc.Join(context.Background(), &participation.JoinRequest{
		UserID:      "test-user",
		ChallengeID: "not-a-uuid",
	})
	if err == nil {
		t.Fatal("Expected error for malformed challenge id")
	}
	if apperr.KindOf(err) != apperr.InvalidArgument {
		t.Errorf("Expected InvalidArgument, got %v", apperr.KindOf(err))
	}
}

func TestSetStatusValidation(t *testing.T) {
	svc := NewParticipationService(nil)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, "test-user", "not-a-uuid", participation.StatusCompleted)
	if apperr.KindOf(err) != apperr.InvalidArgument {
		t.Errorf("Expected InvalidArgument for bad id, got %v", err)
	}

	_, err = svc.SetStatus(ctx, "test-user", uuid.NewString(), participation.Status("Done"))
	if apperr.KindOf(err) != apperr.InvalidArgument {
		t.Errorf("Expected InvalidArgument for unknown status, got %v", err)
	}
}

func createTestChallenge(t *testing.T, pool *pgxpool.Pool, participants int) uuid.UUID {
	t.Helper()

	svc := NewChallengeService(pool)
	id, err := svc.Create(context.Background(), &challenge.CreateChallengeRequest{
		Title:        "Plastic-free week",
		Category:     "test-" + uuid.NewString(),
		StartDate:    "2025-03-01",
		EndDate:      "2025-03-08",
		Participants: participants,
	}, "test-creator@example.com")
	if err != nil {
		t.Fatalf("Failed to create challenge: %v", err)
	}
	return id
}

func liveCount(t *testing.T, pool *pgxpool.Pool, challengeID uuid.UUID) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM user_challenges WHERE challenge_id = $1`, challengeID,
	).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count join records: %v", err)
	}
	return n
}

func TestJoinFlow(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewParticipationService(pool)
	challenges := NewChallengeService(pool)
	ctx := context.Background()

	challengeID := createTestChallenge(t, pool, 0)
	u1 := "test-" + uuid.NewString()
	u2 := "test-" + uuid.NewString()

	// First join succeeds and the live count moves to 1.
	if _, err := svc.Join(ctx, &participation.JoinRequest{UserID: u1, ChallengeID: challengeID.String()}); err != nil {
		t.Fatalf("First join failed: %v", err)
	}
	if n := liveCount(t, pool, challengeID); n != 1 {
		t.Errorf("Expected live count 1, got %d", n)
	}

	// A duplicate join conflicts and leaves exactly one record.
	_, err := svc.Join(ctx, &participation.JoinRequest{UserID: u1, ChallengeID: challengeID.String()})
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("Expected Conflict on duplicate join, got %v", err)
	}
	if n := liveCount(t, pool, challengeID); n != 1 {
		t.Errorf("Expected live count still 1 after duplicate, got %d", n)
	}

	// A second user brings the live count to 2.
	if _, err := svc.Join(ctx, &participation.JoinRequest{UserID: u2, ChallengeID: challengeID.String()}); err != nil {
		t.Fatalf("Second user join failed: %v", err)
	}
	if n := liveCount(t, pool, challengeID); n != 2 {
		t.Errorf("Expected live count 2, got %d", n)
	}

	// The denormalized counter moved in lockstep, and the read path
	// reports the live value.
	c, err := challenges.GetWithLiveCount(ctx, challengeID.String())
	if err != nil {
		t.Fatalf("GetWithLiveCount failed: %v", err)
	}
	if c.Participants != 2 {
		t.Errorf("Expected 2 participants on read path, got %d", c.Participants)
	}

	var stored int
	if err := pool.QueryRow(ctx, `SELECT participants FROM challenges WHERE id = $1`, challengeID).Scan(&stored); err != nil {
		t.Fatalf("Failed to read stored counter: %v", err)
	}
	if stored != 2 {
		t.Errorf("Expected stored counter 2, got %d", stored)
	}
}

func TestConcurrentJoinsSamePair(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewParticipationService(pool)
	ctx := context.Background()

	challengeID := createTestChallenge(t, pool, 0)
	userID := "test-" + uuid.NewString()

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Join(ctx, &participation.JoinRequest{
				UserID:      userID,
				ChallengeID: challengeID.String(),
			})
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperr.KindOf(err) == apperr.Conflict:
			conflicts++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("Expected exactly 1 successful join, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflicts)
	}
	if n := liveCount(t, pool, challengeID); n != 1 {
		t.Errorf("Expected exactly 1 join record, got %d", n)
	}
}

func TestSetStatusThreeWayOutcome(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewParticipationService(pool)
	ctx := context.Background()

	challengeID := createTestChallenge(t, pool, 0)
	userID := "test-" + uuid.NewString()

	if _, err := svc.Join(ctx, &participation.JoinRequest{UserID: userID, ChallengeID: challengeID.String()}); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	outcome, err := svc.SetStatus(ctx, userID, challengeID.String(), participation.StatusInProgress)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if outcome != participation.OutcomeChanged {
		t.Errorf("Expected Changed, got %v", outcome)
	}

	outcome, err = svc.SetStatus(ctx, userID, challengeID.String(), participation.StatusInProgress)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if outcome != participation.OutcomeUnchanged {
		t.Errorf("Expected Unchanged, got %v", outcome)
	}

	outcome, err = svc.SetStatus(ctx, "test-nobody", challengeID.String(), participation.StatusCompleted)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if outcome != participation.OutcomeNotFound {
		t.Errorf("Expected NotFound, got %v", outcome)
	}
}

func TestListByUser(t *testing.T) {
	pool := setupTestDB(t)
	svc := NewParticipationService(pool)
	ctx := context.Background()

	c1 := createTestChallenge(t, pool, 0)
	c2 := createTestChallenge(t, pool, 0)
	userID := "test-" + uuid.NewString()

	for _, cid := range []uuid.UUID{c1, c2} {
		if _, err := svc.Join(ctx, &participation.JoinRequest{UserID: userID, ChallengeID: cid.String()}); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
	}

	records, err := svc.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Status != participation.StatusNotStarted {
			t.Errorf("Expected fresh joins to be Not Started, got %q", rec.Status)
		}
		if rec.Progress != 0 {
			t.Errorf("Expected fresh joins to have progress 0, got %d", rec.Progress)
		}
	}
}
