// Package models defines the domain types for mdnote.
package models

// Note is a canonical note row. Timestamps are milliseconds since epoch.
type Note struct {
	ID        string  `json:"id"`
	FolderID  *string `json:"folder_id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// NoteSummary is the lightweight form returned by listings; Excerpt holds
// the first characters of the content instead of the full body.
type NoteSummary struct {
	ID        string  `json:"id"`
	FolderID  *string `json:"folder_id"`
	Title     string  `json:"title"`
	Excerpt   string  `json:"excerpt"`
	UpdatedAt int64   `json:"updated_at"`
}

// Folder is a node in the folder forest.
type Folder struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	CreatedAt int64   `json:"created_at"`
}

// FolderListItem is a folder with the number of notes directly inside it.
type FolderListItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	NoteCount int64   `json:"note_count"`
}

// FolderDeletion reports what happened to the notes of a deleted folder.
type FolderDeletion struct {
	MovedNotes   int64 `json:"moved_notes"`
	DeletedNotes int64 `json:"deleted_notes"`
}

// Tag is a named, colored label.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TagWithCount is a tag with the number of notes carrying it.
type TagWithCount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	NoteCount int64  `json:"note_count"`
}

// Backlink is an inbound edge seen from its target.
type Backlink struct {
	SourceID    string  `json:"source_id"`
	SourceTitle string  `json:"source_title"`
	Context     *string `json:"context"`
}

// Link represents a directed edge between two notes.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphNode is a note in the link graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SearchResult is one full-text hit. Lower Rank is more relevant.
type SearchResult struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Rank    float64 `json:"rank"`
}
