package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reveriehq/reverie-backend/internal/apperrors"
	"github.com/reveriehq/reverie-backend/internal/database"
	"github.com/reveriehq/reverie-backend/internal/ratelimit"
	"github.com/reveriehq/reverie-backend/internal/services"
)

// newTestRouter wires real services onto the route table. Redis is left nil;
// requests carrying no session token fail authentication before any backend
// is touched, which is all these tests exercise.
func newTestRouter() *chi.Mux {
	limiter := ratelimit.New(database.RedisClient, 2, 2, time.Hour)
	journal := services.NewJournalService(limiter, services.NewPixabayService("test-key"))
	collections := services.NewCollectionService(limiter, journal)
	Init(journal, collections)

	r := chi.NewRouter()
	r.Post("/api/journals", WriteJournal)
	r.Get("/api/journals/{id}", GetJournalEntry)
	r.Get("/api/moods", GetMoods)
	return r
}

func TestWriteJournalRequiresAuth(t *testing.T) {
	router := newTestRouter()

	body := `{"title":"Morning pages","content":"text","mood":"happy"}`
	req := httptest.NewRequest(http.MethodPost, "/api/journals", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Success {
		t.Error("success should be false")
	}
}

func TestWriteJournalRejectsMalformedBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/journals", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetJournalEntryRejectsBadID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/journals/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetMoodsCatalog(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/moods", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp GetMoodsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Moods) != 9 {
		t.Fatalf("got %d moods, want 9", len(resp.Moods))
	}
	for i := 1; i < len(resp.Moods); i++ {
		if resp.Moods[i].Score > resp.Moods[i-1].Score {
			t.Error("catalog should be ordered highest score first")
			break
		}
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"user not found", apperrors.ErrUserNotFound, http.StatusNotFound},
		{"forbidden", apperrors.Forbidden("Collection does not belong to you"), http.StatusForbidden},
		{"validation", apperrors.Validation("Title, content and mood are required"), http.StatusBadRequest},
		{"unknown errors stay generic", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestWriteErrorRateLimitMetadata(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperrors.RateLimited(0, 1800))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.RetryAfter != 1800 {
		t.Errorf("retry_after = %d, want 1800", resp.RetryAfter)
	}
	if resp.Remaining == nil || *resp.Remaining != 0 {
		t.Errorf("remaining = %v, want 0", resp.Remaining)
	}
}
