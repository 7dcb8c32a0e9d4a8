package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ecotrackAPI/internal/challenge"
	"ecotrackAPI/middleware"
	"ecotrackAPI/services"

	"github.com/gorilla/mux"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

// ListChallenges handles GET /challenges with optional categories, date and
// participant-count filters.
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter, err := challenge.ParseFilter(r.URL.Query())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	challenges, err := h.challengeService.List(ctx, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

// FeaturedChallenges handles GET /challenges/sort.
func (h *ChallengeHandler) FeaturedChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	challenges, err := h.challengeService.Featured(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

// GetChallenge handles GET /challenges/{id}. The participants field in the
// response is the live ledger count, not the stored counter.
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	c, err := h.challengeService.GetWithLiveCount(ctx, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

// CreateChallenge handles POST /challenges. The route is behind auth, so
// the verified email stamps createdBy.
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	email, _ := middleware.GetUserEmail(ctx)

	var req challenge.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.challengeService.Create(ctx, &req, email)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"insertedId": id})
}

// UpdateChallenge handles PATCH /challenges/{id}. Only known mutable fields
// are applied.
func (h *ChallengeHandler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	var req challenge.UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	matched, err := h.challengeService.UpdateFields(ctx, id, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"matchedCount": matched})
}

// DeleteChallenge handles DELETE /challenges/{id}.
func (h *ChallengeHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	deleted, err := h.challengeService.Delete(ctx, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"deletedCount": deleted})
}
