package index

import (
	"context"

	"github.com/starford/mdnote/internal/models"
)

// NoteIndex is the storage surface used by the service layer.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	CreateNote(ctx context.Context, folderID *string, title, content string) (*models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, u NoteUpdate) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context, f NoteFilter) ([]models.NoteSummary, int, error)

	CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error)
	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	ListFolders(ctx context.Context) ([]models.FolderListItem, error)
	UpdateFolder(ctx context.Context, id string, u FolderUpdate) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id string, deleteNotes bool) (models.FolderDeletion, error)

	CreateTag(ctx context.Context, name string, color *string) (*models.Tag, error)
	GetTag(ctx context.Context, id string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.TagWithCount, error)
	UpdateTag(ctx context.Context, id string, u TagUpdate) (*models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	AddTagToNote(ctx context.Context, noteID, tagID string) error
	RemoveTagFromNote(ctx context.Context, noteID, tagID string) error
	GetNoteTags(ctx context.Context, noteID string) ([]models.Tag, error)

	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
	RebuildSearchIndex(ctx context.Context) (int, error)

	AddLink(ctx context.Context, sourceID, targetID string, linkContext *string) error
	RemoveLink(ctx context.Context, sourceID, targetID string) error
	SyncBacklinks(ctx context.Context, sourceID, content string) (int, error)
	GetBacklinks(ctx context.Context, targetID string) ([]models.Backlink, error)
	GetOutgoingLinks(ctx context.Context, sourceID string) ([]models.NoteSummary, error)
	Graph(ctx context.Context) ([]models.GraphNode, []models.Link, error)
	RebuildLinks(ctx context.Context) (int, error)

	GetSettings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error)

	ImportNote(ctx context.Context, f ImportFile) (ImportResult, error)
	ImportedChecksums(ctx context.Context) (map[string]string, error)

	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
