package handlers

import (
	"net/http"

	"github.com/reveriehq/reverie-backend/internal/moods"
)

type GetMoodsResponse struct {
	Success bool               `json:"success"`
	Moods   []moods.Definition `json:"moods"`
}

// GetMoods returns the static mood catalog for the write UI.
func GetMoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetMoodsResponse{
		Success: true,
		Moods:   moods.All(),
	})
}
