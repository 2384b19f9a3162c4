package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetBacklinks handles GET /api/notes/{id}/backlinks.
//
//	@Summary	Notes linking to this note, with context
//	@Tags		links
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	BacklinksResponse
//	@Security	BearerAuth
//	@Router		/notes/{id}/backlinks [get]
func (h *Handler) GetBacklinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back, err := h.svc.GetBacklinks(r.Context(), id)
	if err != nil {
		writeError(w, "get backlinks", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Backlinks: back})
}

// GetOutgoingLinks handles GET /api/notes/{id}/links.
//
//	@Summary	Notes this note links to
//	@Tags		links
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	OutgoingLinksResponse
//	@Security	BearerAuth
//	@Router		/notes/{id}/links [get]
func (h *Handler) GetOutgoingLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	links, err := h.svc.GetOutgoingLinks(r.Context(), id)
	if err != nil {
		writeError(w, "get outgoing links", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, OutgoingLinksResponse{Links: links})
}

// SyncLinks handles POST /api/notes/{id}/links/sync.
//
//	@Summary		Re-derive a note's outgoing links
//	@Description	Scans the given content, or the stored content when the body is empty.
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		SyncLinksRequest	false	"Content to scan"
//	@Success		200		{object}	SyncLinksResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/links/sync [post]
func (h *Handler) SyncLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SyncLinksRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	n, err := h.svc.SyncBacklinks(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, "sync links", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, SyncLinksResponse{Links: n})
}

// AddLink handles POST /api/links.
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	var req AddLinkRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := h.svc.AddLink(r.Context(), req); err != nil {
		writeError(w, "add link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveLink handles DELETE /api/links/{source}/{target}.
func (h *Handler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	source, target := chi.URLParam(r, "source"), chi.URLParam(r, "target")
	if err := h.svc.RemoveLink(r.Context(), source, target); err != nil {
		writeError(w, "remove link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the knowledge graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Graph(r.Context())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
