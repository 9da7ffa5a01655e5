package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/reveriehq/reverie-backend/internal/apperrors"
	"github.com/reveriehq/reverie-backend/internal/services"
)

// Service instances, set once at startup.
var (
	journalService    *services.JournalService
	collectionService *services.CollectionService
)

// Init wires the handler package to its services. Must be called before any
// route is served.
func Init(journal *services.JournalService, collections *services.CollectionService) {
	journalService = journal
	collectionService = collections
}

// extractBearerToken pulls the token out of an Authorization header.
// Returns "" when the header is missing or not a Bearer scheme.
func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// sessionToken returns the caller's session token, or "".
func sessionToken(r *http.Request) string {
	return extractBearerToken(r.Header.Get("Authorization"))
}

// errorResponse is the failure envelope every endpoint shares.
type errorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Remaining  *int   `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to its status and envelope. Unknown errors
// become a generic 500; internals are never exposed.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		resp := errorResponse{Success: false, Message: domainErr.Message}
		if domainErr.Code == apperrors.CodeRateLimited {
			resp.RetryAfter = domainErr.RetryAfter
			remaining := domainErr.Remaining
			resp.Remaining = &remaining
		}
		writeJSON(w, domainErr.HTTPStatus(), resp)
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Success: false,
		Message: "Something went wrong",
	})
}
