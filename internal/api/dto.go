package api

import (
	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/internal/noteservice"
)

// Request bodies are the service inputs.
type (
	CreateNoteRequest   = noteservice.CreateNoteInput
	UpdateNoteRequest   = noteservice.UpdateNoteInput
	CreateFolderRequest = noteservice.CreateFolderInput
	UpdateFolderRequest = noteservice.UpdateFolderInput
	CreateTagRequest    = noteservice.CreateTagInput
	UpdateTagRequest    = noteservice.UpdateTagInput
	AddLinkRequest      = noteservice.AddLinkInput
)

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListResponse wraps paginated note listings.
type NoteListResponse = noteservice.NotePage

// GraphResponse wraps the knowledge graph.
type GraphResponse = noteservice.Graph

// SyncLinksRequest optionally supplies the content to scan; without it the
// stored note content is used.
type SyncLinksRequest struct {
	Content *string `json:"content"`
}

// SyncLinksResponse reports how many distinct targets were linked.
type SyncLinksResponse struct {
	Links int `json:"links" example:"3"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results" validate:"required"`
}

// BacklinksResponse wraps the incoming links of a note.
type BacklinksResponse struct {
	Backlinks []models.Backlink `json:"backlinks" validate:"required"`
}

// OutgoingLinksResponse wraps the notes a note links to.
type OutgoingLinksResponse struct {
	Links []models.NoteSummary `json:"links" validate:"required"`
}

// FolderListResponse wraps folder listings.
type FolderListResponse struct {
	Folders []models.FolderListItem `json:"folders" validate:"required"`
}

// TagListResponse wraps tag listings.
type TagListResponse struct {
	Tags []models.TagWithCount `json:"tags" validate:"required"`
}

// NoteTagsResponse wraps the tags of one note.
type NoteTagsResponse struct {
	Tags []models.Tag `json:"tags" validate:"required"`
}

// ReindexResponse reports what a reindex rebuilt.
type ReindexResponse struct {
	Indexed int `json:"indexed"`
	Links   int `json:"links"`
}

func reindexResponse(st index.SyncStats) ReindexResponse {
	return ReindexResponse{Indexed: st.Indexed, Links: st.Links}
}
