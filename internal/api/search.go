package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/models"
)

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Description	q is an FTS5 query; matches in snippets are wrapped in ==.
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit := queryInt(r, "limit", index.DefaultSearchSize)
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Reindex handles POST /api/maintenance/reindex.
//
//	@Summary	Rebuild the search index and link graph from note rows
//	@Tags		maintenance
//	@Produce	json
//	@Success	200	{object}	ReindexResponse
//	@Security	BearerAuth
//	@Router		/maintenance/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Reindex(r.Context())
	if err != nil {
		writeError(w, "reindex", err)
		return
	}
	writeJSON(w, http.StatusOK, reindexResponse(st))
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings handles PUT /api/settings. The body replaces every setting.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if !decodeJSON(w, r, &req, false) {
		return
	}
	s, err := h.svc.UpdateSettings(r.Context(), req)
	if err != nil {
		writeError(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
