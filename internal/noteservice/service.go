// Package noteservice is the application layer shared by the REST and MCP
// transports: input validation, change events, link auto-sync, and a
// settings cache on top of the index.
package noteservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/internal/sse"
)

const settingsKey = "settings"

// Publisher receives change notifications; *sse.Broker implements it.
type Publisher interface {
	PublishChange(entity, kind, id string)
}

type nopPublisher struct{}

func (nopPublisher) PublishChange(string, string, string) {}

// Options configures a Service.
type Options struct {
	// AutoSyncLinks re-derives a note's outgoing links whenever its content
	// is written through the service.
	AutoSyncLinks bool
	// SettingsTTL caches GetSettings; zero disables the cache.
	SettingsTTL time.Duration
	Events      Publisher
	Logger      *slog.Logger
}

// NoteDetail is a note with its tags and incoming links.
type NoteDetail struct {
	models.Note
	Tags      []models.Tag      `json:"tags"`
	Backlinks []models.Backlink `json:"backlinks"`
}

// NotePage is one page of ListNotes.
type NotePage struct {
	Notes []models.NoteSummary `json:"notes"`
	Total int                  `json:"total"`
}

// Graph is the full link graph.
type Graph struct {
	Nodes []models.GraphNode `json:"nodes"`
	Links []models.Link      `json:"links"`
}

// Service coordinates index operations for the transports.
type Service struct {
	db       index.NoteIndex
	events   Publisher
	logger   *slog.Logger
	autoSync bool
	settings *cache.Cache
}

// NewService creates a new note service.
func NewService(db index.NoteIndex, opts Options) *Service {
	s := &Service{
		db:       db,
		events:   opts.Events,
		logger:   opts.Logger,
		autoSync: opts.AutoSyncLinks,
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.SettingsTTL > 0 {
		s.settings = cache.New(opts.SettingsTTL, 2*opts.SettingsTTL)
	}
	return s
}

// --- notes ---

// CreateNote validates and stores a note, then syncs its links.
func (s *Service) CreateNote(ctx context.Context, in CreateNoteInput) (*models.Note, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid("create note", err)
	}
	n, err := s.db.CreateNote(ctx, in.FolderID, in.Title, in.Content)
	if err != nil {
		return nil, err
	}
	s.events.PublishChange(sse.EntityNote, sse.Created, n.ID)
	if in.Content != "" {
		s.autoSyncLinks(ctx, n.ID, n.Content)
	}
	return n, nil
}

// GetNote returns a note.
func (s *Service) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return s.db.GetNote(ctx, id)
}

// GetNoteDetail returns a note with its tags and backlinks.
func (s *Service) GetNoteDetail(ctx context.Context, id string) (*NoteDetail, error) {
	n, err := s.db.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	tags, err := s.db.GetNoteTags(ctx, id)
	if err != nil {
		return nil, err
	}
	back, err := s.db.GetBacklinks(ctx, id)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{Note: *n, Tags: tags, Backlinks: back}, nil
}

// UpdateNote applies a partial update. A content change re-syncs links.
func (s *Service) UpdateNote(ctx context.Context, id string, in UpdateNoteInput) (*models.Note, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid("update note", err)
	}
	n, err := s.db.UpdateNote(ctx, id, index.NoteUpdate{
		Title:    in.Title,
		Content:  in.Content,
		FolderID: in.FolderID,
	})
	if err != nil {
		return nil, err
	}
	s.events.PublishChange(sse.EntityNote, sse.Updated, n.ID)
	if in.Content != nil {
		s.autoSyncLinks(ctx, n.ID, n.Content)
	}
	return n, nil
}

// DeleteNote removes a note and everything hanging off it.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if err := s.db.DeleteNote(ctx, id); err != nil {
		return err
	}
	s.events.PublishChange(sse.EntityNote, sse.Deleted, id)
	return nil
}

// ListNotes returns one page of summaries.
func (s *Service) ListNotes(ctx context.Context, f index.NoteFilter) (*NotePage, error) {
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	items, total, err := s.db.ListNotes(ctx, f)
	if err != nil {
		return nil, err
	}
	return &NotePage{Notes: items, Total: total}, nil
}

// autoSyncLinks refreshes outgoing links after a content write. The note is
// already stored, so a failure is logged rather than returned.
func (s *Service) autoSyncLinks(ctx context.Context, id, content string) {
	if !s.autoSync {
		return
	}
	n, err := s.db.SyncBacklinks(ctx, id, content)
	if err != nil {
		s.logger.Warn("link auto-sync failed", slog.String("id", id), slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("links synced", slog.String("id", id), slog.Int("links", n))
	s.events.PublishChange(sse.EntityLinks, sse.Updated, id)
}

// --- folders ---

// CreateFolder validates and stores a folder.
func (s *Service) CreateFolder(ctx context.Context, in CreateFolderInput) (*models.Folder, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid("create folder", err)
	}
	f, err := s.db.CreateFolder(ctx, in.Name, in.ParentID)
	if err != nil {
		return nil, err
	}
	s.events.PublishChange(sse.EntityFolder, sse.Created, f.ID)
	return f, nil
}

// GetFolder returns a folder.
func (s *Service) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.db.GetFolder(ctx, id)
}

// ListFolders returns every folder with note counts.
func (s *Service) ListFolders(ctx context.Context) ([]models.FolderListItem, error) {
	return s.db.ListFolders(ctx)
}

// UpdateFolder renames or moves a folder.
func (s *Service) UpdateFolder(ctx context.Context, id string, in UpdateFolderInput) (*models.Folder, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid("update folder", err)
	}
	f, err := s.db.UpdateFolder(ctx, id, index.FolderUpdate{Name: in.Name, ParentID: in.ParentID})
	if err != nil {
		return nil, err
	}
	s.events.PublishChange(sse.EntityFolder, sse.Updated, f.ID)
	return f, nil
}

// DeleteFolder removes a folder, detaching or deleting its notes.
func (s *Service) DeleteFolder(ctx context.Context, id string, deleteNotes bool) (models.FolderDeletion, error) {
	res, err := s.db.DeleteFolder(ctx, id, deleteNotes)
	if err != nil {
		return res, err
	}
	s.events.PublishChange(sse.EntityFolder, sse.Deleted, id)
	if res.DeletedNotes > 0 {
		s.events.PublishChange(sse.EntityLinks, sse.Updated, id)
	}
	return res, nil
}

// --- tags ---

// CreateTag validates and stores a tag.
func (s *Service) CreateTag(ctx context.Context, in CreateTagInput) (*models.Tag, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid("create tag", err)
	}
	t, err := s.db.CreateTag(ctx, in.Name, in.Color)
	if err != nil {
		return nil, err
	}
	s.events.PublishChange(sse.EntityTag, sse.Created, t.ID)
	return t, nil
}

// GetTag returns a tag.
func (s *Service) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	return s.db.GetTag(ctx, id)
}

// ListTags returns every tag with note counts.
func (s *Service) ListTags(ctx context.Context) ([]models.TagWithCount, error) {
	return s.db.ListTags(ctx)
}

// UpdateTag renames or recolors a tag.
func (s *Service) UpdateTag(ctx context.Context, id string, in UpdateTagInput) (*models.Tag, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid("update tag", err)
	}
	t, err := s.db.UpdateTag(ctx, id, index.TagUpdate{Name: in.Name, Color: in.Color})
	if err != nil {
		return nil, err
	}
	s.events.PublishChange(sse.EntityTag, sse.Updated, t.ID)
	return t, nil
}

// DeleteTag removes a tag.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	if err := s.db.DeleteTag(ctx, id); err != nil {
		return err
	}
	s.events.PublishChange(sse.EntityTag, sse.Deleted, id)
	return nil
}

// AddTagToNote tags a note.
func (s *Service) AddTagToNote(ctx context.Context, noteID, tagID string) error {
	if err := s.db.AddTagToNote(ctx, noteID, tagID); err != nil {
		return err
	}
	s.events.PublishChange(sse.EntityNote, sse.Updated, noteID)
	return nil
}

// RemoveTagFromNote untags a note.
func (s *Service) RemoveTagFromNote(ctx context.Context, noteID, tagID string) error {
	if err := s.db.RemoveTagFromNote(ctx, noteID, tagID); err != nil {
		return err
	}
	s.events.PublishChange(sse.EntityNote, sse.Updated, noteID)
	return nil
}

// GetNoteTags returns the tags of a note.
func (s *Service) GetNoteTags(ctx context.Context, noteID string) ([]models.Tag, error) {
	return s.db.GetNoteTags(ctx, noteID)
}

// --- links ---

// AddLink records an explicit edge.
func (s *Service) AddLink(ctx context.Context, in AddLinkInput) error {
	if err := in.Validate(); err != nil {
		return invalid("add link", err)
	}
	if err := s.db.AddLink(ctx, in.SourceID, in.TargetID, in.Context); err != nil {
		return err
	}
	s.events.PublishChange(sse.EntityLinks, sse.Updated, in.SourceID)
	return nil
}

// RemoveLink deletes an edge.
func (s *Service) RemoveLink(ctx context.Context, sourceID, targetID string) error {
	if err := s.db.RemoveLink(ctx, sourceID, targetID); err != nil {
		return err
	}
	s.events.PublishChange(sse.EntityLinks, sse.Updated, sourceID)
	return nil
}

// SyncBacklinks replaces a note's outgoing edges with the references in
// content. With a nil content the stored note content is scanned.
func (s *Service) SyncBacklinks(ctx context.Context, sourceID string, content *string) (int, error) {
	text := ""
	if content != nil {
		text = *content
	} else {
		n, err := s.db.GetNote(ctx, sourceID)
		if err != nil {
			return 0, err
		}
		text = n.Content
	}
	n, err := s.db.SyncBacklinks(ctx, sourceID, text)
	if err != nil {
		return 0, err
	}
	s.events.PublishChange(sse.EntityLinks, sse.Updated, sourceID)
	return n, nil
}

// GetBacklinks returns the notes linking to id.
func (s *Service) GetBacklinks(ctx context.Context, id string) ([]models.Backlink, error) {
	return s.db.GetBacklinks(ctx, id)
}

// GetOutgoingLinks returns the notes id links to.
func (s *Service) GetOutgoingLinks(ctx context.Context, id string) ([]models.NoteSummary, error) {
	return s.db.GetOutgoingLinks(ctx, id)
}

// Graph returns all nodes and links for graph visualization.
func (s *Service) Graph(ctx context.Context) (*Graph, error) {
	nodes, links, err := s.db.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return &Graph{Nodes: nodes, Links: links}, nil
}

// --- search & maintenance ---

// Search delegates full-text search to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	return s.db.Search(ctx, query, limit)
}

// Reindex rebuilds the search index and the link graph.
func (s *Service) Reindex(ctx context.Context) (index.SyncStats, error) {
	st, err := index.Sync(ctx, s.db, s.logger)
	if err != nil {
		return st, err
	}
	s.events.PublishChange(sse.EntityLinks, sse.Updated, "")
	return st, nil
}

// --- settings ---

// GetSettings returns the settings, served from cache when enabled.
func (s *Service) GetSettings(ctx context.Context) (models.Settings, error) {
	if s.settings != nil {
		if v, ok := s.settings.Get(settingsKey); ok {
			return v.(models.Settings), nil
		}
	}
	st, err := s.db.GetSettings(ctx)
	if err != nil {
		return st, err
	}
	if s.settings != nil {
		s.settings.SetDefault(settingsKey, st)
	}
	return st, nil
}

// UpdateSettings validates and stores every setting.
func (s *Service) UpdateSettings(ctx context.Context, st models.Settings) (models.Settings, error) {
	if err := validateSettings(st); err != nil {
		return models.Settings{}, invalid("update settings", err)
	}
	out, err := s.db.UpdateSettings(ctx, st)
	if err != nil {
		return out, err
	}
	if s.settings != nil {
		s.settings.SetDefault(settingsKey, out)
	}
	s.events.PublishChange(sse.EntitySettings, sse.Updated, "")
	return out, nil
}
