package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecotrackAPI/internal/apperr"
)

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body
}

func TestRespondWithAppErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.New(apperr.InvalidArgument, "Invalid Challenge ID format"), http.StatusBadRequest, "invalid_argument"},
		{apperr.New(apperr.Conflict, "Already joined this challenge"), http.StatusBadRequest, "conflict"},
		{apperr.New(apperr.NotFound, "Challenge not found"), http.StatusNotFound, "not_found"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal"},
	}

	for _, c := range cases {
		rr := httptest.NewRecorder()
		respondWithAppError(rr, c.err)

		if rr.Code != c.status {
			t.Errorf("%s: expected status %d, got %d", c.code, c.status, rr.Code)
		}
		body := decodeErrorBody(t, rr)
		if body["code"] != c.code {
			t.Errorf("Expected code %q, got %q", c.code, body["code"])
		}
		if body["error"] == "" {
			t.Errorf("%s: expected a human-readable message", c.code)
		}
	}
}

func TestRespondWithAppErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithAppError(rr, fmt.Errorf("scan challenge: %w", errors.New("column mismatch")))

	body := decodeErrorBody(t, rr)
	if body["error"] != "An unexpected error occurred" {
		t.Errorf("Internal detail leaked to client: %q", body["error"])
	}
}

func TestRespondWithJSONSetsContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithJSON(rr, http.StatusOK, map[string]string{"message": "ok"})

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}
}
