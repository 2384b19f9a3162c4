// Package inbox imports Markdown files dropped into a directory as notes
// and exports notes back out as Markdown files.
package inbox

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/mdnote/internal/checksum"
	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/internal/storage"
)

// EventCallback is called after an import changed a note. kind is
// "created" or "updated".
type EventCallback func(kind string, note *models.Note)

// Importer turns inbox files into notes.
type Importer struct {
	db     index.NoteIndex
	store  storage.Provider
	logger *slog.Logger
	cb     EventCallback
}

// NewImporter returns an importer reading from store. cb may be nil.
func NewImporter(db index.NoteIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) *Importer {
	return &Importer{db: db, store: store, logger: logger, cb: cb}
}

// Scan imports every file whose checksum differs from its last import.
// Per-file failures are logged and skipped. Returns the number of notes
// created or updated.
func (im *Importer) Scan(ctx context.Context) (int, error) {
	metas, err := im.store.List("")
	if err != nil {
		return 0, err
	}
	known, err := im.db.ImportedChecksums(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, m := range metas {
		if known[m.Path] == m.Checksum {
			continue
		}
		ok, err := im.importFile(ctx, m.Path)
		if err != nil {
			im.logger.Warn("inbox: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// importFile reads and imports one file. It reports whether a note was
// created or updated.
func (im *Importer) importFile(ctx context.Context, rel string) (bool, error) {
	data, err := im.store.Read(rel)
	if err != nil {
		return false, err
	}
	title, content := splitTitle(rel, string(data))
	res, err := im.db.ImportNote(ctx, index.ImportFile{
		Path:     rel,
		Checksum: checksum.Sum(data),
		Title:    title,
		Content:  content,
	})
	if err != nil {
		return false, err
	}
	if res.Status == index.ImportUnchanged {
		return false, nil
	}
	im.logger.Debug("inbox: imported",
		slog.String("path", rel),
		slog.String("id", res.Note.ID),
		slog.String("status", string(res.Status)))
	if im.cb != nil {
		im.cb(string(res.Status), res.Note)
	}
	return true, nil
}

// splitTitle takes the title from a leading "# " heading, which is then
// dropped from the content. Without one the file name is the title.
func splitTitle(rel, data string) (title, content string) {
	data = strings.TrimPrefix(data, "\ufeff")
	first, rest, _ := strings.Cut(data, "\n")
	first = strings.TrimRight(first, "\r")
	if h, ok := strings.CutPrefix(first, "# "); ok && strings.TrimSpace(h) != "" {
		return strings.TrimSpace(h), strings.TrimLeft(rest, "\r\n")
	}
	return strings.TrimSuffix(path.Base(rel), path.Ext(rel)), data
}
