package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListTags handles GET /api/tags.
//
//	@Summary	List tags with note counts
//	@Tags		tags
//	@Produce	json
//	@Success	200	{object}	TagListResponse
//	@Security	BearerAuth
//	@Router		/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// GetTag handles GET /api/tags/{id}.
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.svc.GetTag(r.Context(), id)
	if err != nil {
		writeError(w, "get tag", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTag handles POST /api/tags.
//
//	@Summary	Create a tag
//	@Tags		tags
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateTagRequest	true	"Tag to create"
//	@Success	201		{object}	models.Tag
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/tags [post]
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	t, err := h.svc.CreateTag(r.Context(), req)
	if err != nil {
		writeError(w, "create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTag handles PATCH /api/tags/{id}.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateTagRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	t, err := h.svc.UpdateTag(r.Context(), id, req)
	if err != nil {
		writeError(w, "update tag", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTag handles DELETE /api/tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTag(r.Context(), id); err != nil {
		writeError(w, "delete tag", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNoteTags handles GET /api/notes/{id}/tags.
func (h *Handler) GetNoteTags(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tags, err := h.svc.GetNoteTags(r.Context(), id)
	if err != nil {
		writeError(w, "get note tags", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, NoteTagsResponse{Tags: tags})
}

// AddTagToNote handles PUT /api/notes/{id}/tags/{tagID}. Repeating it is a no-op.
func (h *Handler) AddTagToNote(w http.ResponseWriter, r *http.Request) {
	id, tagID := chi.URLParam(r, "id"), chi.URLParam(r, "tagID")
	if err := h.svc.AddTagToNote(r.Context(), id, tagID); err != nil {
		writeError(w, "add tag to note", err, slog.String("id", id), slog.String("tag_id", tagID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveTagFromNote handles DELETE /api/notes/{id}/tags/{tagID}.
func (h *Handler) RemoveTagFromNote(w http.ResponseWriter, r *http.Request) {
	id, tagID := chi.URLParam(r, "id"), chi.URLParam(r, "tagID")
	if err := h.svc.RemoveTagFromNote(r.Context(), id, tagID); err != nil {
		writeError(w, "remove tag from note", err, slog.String("id", id), slog.String("tag_id", tagID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
