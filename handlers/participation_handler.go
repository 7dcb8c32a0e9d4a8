package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ecotrackAPI/internal/participation"
	"ecotrackAPI/services"

	"github.com/gorilla/mux"
)

type ParticipationHandler struct {
	participationService *services.ParticipationService
}

func NewParticipationHandler(participationService *services.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{
		participationService: participationService,
	}
}

// JoinChallenge handles POST /userChallenges.
func (h *ParticipationHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req participation.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.participationService.Join(ctx, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"insertedId": id})
}

// ListJoins handles GET /userChallenges, the full ledger dump.
func (h *ParticipationHandler) ListJoins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := h.participationService.ListAll(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}

// ListJoinsByUser handles GET /userChallenges/{userId}.
func (h *ParticipationHandler) ListJoinsByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := mux.Vars(r)["userId"]

	records, err := h.participationService.ListByUser(ctx, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}

// UpdateJoinStatus handles PATCH /userChallenges/{userId}/{challengeId} and
// reports the three-way outcome of the transition.
func (h *ParticipationHandler) UpdateJoinStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	userID := vars["userId"]
	challengeID := vars["challengeId"]

	var req participation.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.participationService.SetStatus(ctx, userID, challengeID, req.Status)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	switch outcome {
	case participation.OutcomeChanged:
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Status updated successfully"})
	case participation.OutcomeUnchanged:
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Status unchanged (already set to this value)"})
	default:
		respondWithJSON(w, http.StatusNotFound, map[string]string{
			"error": "Challenge not found for this user",
			"code":  "not_found",
		})
	}
}
