package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ecotrackAPI/internal/apperr"
	"ecotrackAPI/internal/user"
	"ecotrackAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterUser handles POST /users. Registration is keyed by email; a
// repeat registration answers with a nil insertedId.
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.userService.Register(ctx, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if id == nil {
		respondWithJSON(w, http.StatusOK, map[string]any{
			"message":    "User already exists",
			"insertedId": nil,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"insertedId": id})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error", "code": "internal"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps an error through the shared taxonomy so every
// handler reports the same status and code for the same failure class.
func respondWithAppError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	respondWithJSON(w, kind.HTTPStatus(), map[string]string{
		"error": apperr.MessageOf(err),
		"code":  kind.Code(),
	})
}
