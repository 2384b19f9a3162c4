package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mdnote/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetNote)
			r.Patch("/", h.UpdateNote)
			r.Delete("/", h.DeleteNote)

			r.Get("/tags", h.GetNoteTags)
			r.Put("/tags/{tagID}", h.AddTagToNote)
			r.Delete("/tags/{tagID}", h.RemoveTagFromNote)

			r.Get("/backlinks", h.GetBacklinks)
			r.Get("/links", h.GetOutgoingLinks)
			r.Post("/links/sync", h.SyncLinks)
		})
	})

	r.Post("/links", h.AddLink)
	r.Delete("/links/{source}/{target}", h.RemoveLink)

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.ListFolders)
		r.Post("/", h.CreateFolder)
		r.Get("/{id}", h.GetFolder)
		r.Patch("/{id}", h.UpdateFolder)
		r.Delete("/{id}", h.DeleteFolder)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.ListTags)
		r.Post("/", h.CreateTag)
		r.Get("/{id}", h.GetTag)
		r.Patch("/{id}", h.UpdateTag)
		r.Delete("/{id}", h.DeleteTag)
	})

	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	r.Post("/maintenance/reindex", h.Reindex)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
