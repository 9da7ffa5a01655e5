package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reveriehq/reverie-backend/internal/models"
	"github.com/reveriehq/reverie-backend/internal/services"
)

type JournalResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Entry   *models.Entry `json:"entry,omitempty"`
}

type GetJournalsResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Entries []*models.Entry `json:"entries"`
	Total   int             `json:"total"`
}

type DraftResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Draft   *models.Draft `json:"draft,omitempty"`
}

// WriteJournal publishes a new journal entry for the authenticated user.
func WriteJournal(w http.ResponseWriter, r *http.Request) {
	var input services.JournalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	entry, err := journalService.CreateEntry(r.Context(), sessionToken(r), &input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, JournalResponse{
		Success: true,
		Message: "Journal entry created successfully",
		Entry:   entry,
	})
}

// UpdateJournal edits an existing entry owned by the authenticated user.
func UpdateJournal(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Message: "Invalid entry ID",
		})
		return
	}

	var input services.JournalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	entry, err := journalService.UpdateEntry(r.Context(), sessionToken(r), entryID, &input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Message: "Journal entry updated successfully",
		Entry:   entry,
	})
}

// DeleteJournal removes an entry owned by the authenticated user.
func DeleteJournal(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Message: "Invalid entry ID",
		})
		return
	}

	if err := journalService.DeleteEntry(r.Context(), sessionToken(r), entryID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Message: "Journal entry deleted successfully",
	})
}

// GetJournalEntry returns a single entry owned by the authenticated user.
func GetJournalEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Message: "Invalid entry ID",
		})
		return
	}

	entry, err := journalService.GetEntry(r.Context(), sessionToken(r), entryID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Entry:   entry,
	})
}

// GetJournalEntries returns the authenticated user's entries, newest first.
// Optional query params: collection_id ("unorganized" for entries without a
// collection), mood, limit, skip.
func GetJournalEntries(w http.ResponseWriter, r *http.Request) {
	filter := services.EntryFilter{
		CollectionID: r.URL.Query().Get("collection_id"),
		Mood:         r.URL.Query().Get("mood"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	if skipStr := r.URL.Query().Get("skip"); skipStr != "" {
		if parsed, err := strconv.Atoi(skipStr); err == nil && parsed >= 0 {
			filter.Skip = parsed
		}
	}

	entries, err := journalService.ListEntries(r.Context(), sessionToken(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GetJournalsResponse{
		Success: true,
		Entries: entries,
		Total:   len(entries),
	})
}

// SaveDraft autosaves the user's single draft slot. Sending all-blank fields
// clears the draft. Never rate limited.
func SaveDraft(w http.ResponseWriter, r *http.Request) {
	var input services.DraftInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, DraftResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	draft, err := journalService.SaveDraft(r.Context(), sessionToken(r), &input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DraftResponse{
		Success: true,
		Message: "Draft saved",
		Draft:   draft,
	})
}

// GetDraft returns the user's draft, if any.
func GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := journalService.GetDraft(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DraftResponse{
		Success: true,
		Draft:   draft,
	})
}
