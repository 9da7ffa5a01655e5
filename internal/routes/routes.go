package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/reveriehq/reverie-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Journaling routes
	r.Post("/api/journals", handlers.WriteJournal)
	r.Get("/api/journals", handlers.GetJournalEntries)
	r.Get("/api/journals/draft", handlers.GetDraft)
	r.Post("/api/journals/draft", handlers.SaveDraft)
	r.Get("/api/journals/{id}", handlers.GetJournalEntry)
	r.Put("/api/journals/{id}", handlers.UpdateJournal)
	r.Delete("/api/journals/{id}", handlers.DeleteJournal)

	// Collection routes
	r.Post("/api/collections", handlers.CreateCollection)
	r.Get("/api/collections", handlers.GetCollections)
	r.Get("/api/collections/{id}", handlers.GetCollection)
	r.Delete("/api/collections/{id}", handlers.DeleteCollection)

	// Mood catalog and analytics
	r.Get("/api/moods", handlers.GetMoods)
	r.Get("/api/insights", handlers.GetMoodInsights)
}
