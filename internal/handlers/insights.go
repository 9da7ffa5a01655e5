package handlers

import (
	"net/http"

	"github.com/reveriehq/reverie-backend/internal/services"
)

type GetInsightsResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message,omitempty"`
	Insights *services.MoodInsights `json:"insights,omitempty"`
}

// GetMoodInsights returns the authenticated user's mood analytics for the
// requested period (?period=7d|30d|90d, default 30d).
func GetMoodInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := services.GetMoodInsights(r.Context(), sessionToken(r), r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GetInsightsResponse{
		Success:  true,
		Insights: insights,
	})
}
