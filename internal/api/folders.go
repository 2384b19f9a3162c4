package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListFolders handles GET /api/folders.
//
//	@Summary	List folders with note counts
//	@Tags		folders
//	@Produce	json
//	@Success	200	{object}	FolderListResponse
//	@Security	BearerAuth
//	@Router		/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.ListFolders(r.Context())
	if err != nil {
		writeError(w, "list folders", err)
		return
	}
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: folders})
}

// GetFolder handles GET /api/folders/{id}.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := h.svc.GetFolder(r.Context(), id)
	if err != nil {
		writeError(w, "get folder", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// CreateFolder handles POST /api/folders.
//
//	@Summary	Create a folder
//	@Tags		folders
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateFolderRequest	true	"Folder to create"
//	@Success	201		{object}	models.Folder
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	f, err := h.svc.CreateFolder(r.Context(), req)
	if err != nil {
		writeError(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// UpdateFolder handles PATCH /api/folders/{id}.
//
//	@Summary	Rename or move a folder
//	@Tags		folders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Folder id"
//	@Param		body	body		UpdateFolderRequest	true	"Fields to change"
//	@Success	200		{object}	models.Folder
//	@Failure	400		{object}	errResponse	"Empty name or cyclic parent"
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/folders/{id} [patch]
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateFolderRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	f, err := h.svc.UpdateFolder(r.Context(), id, req)
	if err != nil {
		writeError(w, "update folder", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DeleteFolder handles DELETE /api/folders/{id}.
//
//	@Summary	Delete a folder
//	@Tags		folders
//	@Produce	json
//	@Param		id				path		string	true	"Folder id"
//	@Param		delete_notes	query		bool	false	"Delete the folder's notes instead of moving them to the root"
//	@Success	200				{object}	models.FolderDeletion
//	@Failure	404				{object}	errResponse
//	@Security	BearerAuth
//	@Router		/folders/{id} [delete]
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleteNotes, _ := strconv.ParseBool(r.URL.Query().Get("delete_notes"))
	res, err := h.svc.DeleteFolder(r.Context(), id, deleteNotes)
	if err != nil {
		writeError(w, "delete folder", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
