package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reveriehq/reverie-backend/internal/models"
	"github.com/reveriehq/reverie-backend/internal/services"
)

type CollectionResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Collection *models.Collection `json:"collection,omitempty"`
}

type GetCollectionsResponse struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message,omitempty"`
	Collections []*models.Collection `json:"collections"`
	Total       int                  `json:"total"`
}

type GetCollectionResponse struct {
	Success bool                            `json:"success"`
	Message string                          `json:"message,omitempty"`
	Data    *services.CollectionWithEntries `json:"data,omitempty"`
}

type DeleteCollectionResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	DeletedEntryCount int    `json:"deleted_entry_count"`
}

// CreateCollection creates a new collection for the authenticated user.
func CreateCollection(w http.ResponseWriter, r *http.Request) {
	var input services.CollectionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, CollectionResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	collection, err := collectionService.Create(r.Context(), sessionToken(r), &input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CollectionResponse{
		Success:    true,
		Message:    "Collection created successfully",
		Collection: collection,
	})
}

// GetCollections returns the authenticated user's collections in creation order.
func GetCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := collectionService.List(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GetCollectionsResponse{
		Success:     true,
		Collections: collections,
		Total:       len(collections),
	})
}

// GetCollection returns one collection with its entries. The reserved id
// "unorganized" resolves to the virtual grouping of entries with no collection.
func GetCollection(w http.ResponseWriter, r *http.Request) {
	data, err := collectionService.Get(r.Context(), sessionToken(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GetCollectionResponse{
		Success: true,
		Data:    data,
	})
}

// DeleteCollection deletes a collection owned by the authenticated user and
// reports how many entries the cascade removed.
func DeleteCollection(w http.ResponseWriter, r *http.Request) {
	collectionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, DeleteCollectionResponse{
			Success: false,
			Message: "Invalid collection ID",
		})
		return
	}

	deleted, err := collectionService.Delete(r.Context(), sessionToken(r), collectionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteCollectionResponse{
		Success:           true,
		Message:           "Collection deleted successfully",
		DeletedEntryCount: deleted,
	})
}
