package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/pkg/nullable"
)

// Listing defaults.
const (
	ExcerptLength    = 200
	DefaultListLimit = 50
)

// NoteUpdate is a partial note update. Nil pointers and an absent FolderID
// leave the stored value unchanged; nullable.Null clears the folder.
type NoteUpdate struct {
	Title    *string
	Content  *string
	FolderID nullable.Field[string]
}

// NoteFilter selects notes for ListNotes. With neither FolderID nor TagID,
// only root-level notes are listed; TagID alone spans every folder.
type NoteFilter struct {
	FolderID *string
	TagID    *string
	Limit    int
	Offset   int
}

func newID() string { return ulid.Make().String() }

const noteColumns = `id, folder_id, title, content, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	var (
		n      models.Note
		folder sql.NullString
	)
	if err := row.Scan(&n.ID, &folder, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.FolderID = stringPtr(folder)
	return &n, nil
}

func getNote(q querier, op, id string) (*models.Note, error) {
	n, err := scanNote(q.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(op, "note", id)
	}
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return n, nil
}

func requireFolder(q querier, op, id string) error {
	var one int
	err := q.QueryRow(`SELECT 1 FROM folders WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(op, "folder", id)
	}
	return apperr.Storage(op, err)
}

func requireNote(q querier, op, id string) error {
	var one int
	err := q.QueryRow(`SELECT 1 FROM notes WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(op, "note", id)
	}
	return apperr.Storage(op, err)
}

// CreateNote stores a new note with a fresh time-ordered id. created_at and
// updated_at are equal on creation.
func (db *DB) CreateNote(ctx context.Context, folderID *string, title, content string) (*models.Note, error) {
	const op = "index: create note"
	return locked(ctx, db, op, func() (*models.Note, error) {
		if folderID != nil {
			if err := requireFolder(db.conn, op, *folderID); err != nil {
				return nil, err
			}
		}
		now := db.now()
		n := &models.Note{
			ID:        newID(),
			FolderID:  folderID,
			Title:     title,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := db.conn.Exec(`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			n.ID, nullString(folderID), n.Title, n.Content, n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		return n, nil
	})
}

// GetNote returns the note with the given id.
func (db *DB) GetNote(ctx context.Context, id string) (*models.Note, error) {
	const op = "index: get note"
	return locked(ctx, db, op, func() (*models.Note, error) {
		return getNote(db.conn, op, id)
	})
}

// UpdateNote applies a partial update. updated_at always moves to now (never
// before created_at).
func (db *DB) UpdateNote(ctx context.Context, id string, u NoteUpdate) (*models.Note, error) {
	const op = "index: update note"
	return locked(ctx, db, op, func() (*models.Note, error) {
		var out *models.Note
		err := db.inTx(op, func(tx *sql.Tx) error {
			cur, err := getNote(tx, op, id)
			if err != nil {
				return err
			}

			var a assignments
			a.set(colUpdatedAt, max(db.now(), cur.CreatedAt))
			if u.Title != nil {
				a.set(colTitle, *u.Title)
			}
			if u.Content != nil {
				a.set(colContent, *u.Content)
			}
			if u.FolderID.Present() {
				if fid, ok := u.FolderID.Get(); ok {
					if err := requireFolder(tx, op, fid); err != nil {
						return err
					}
				}
				a.set(colFolderID, nullString(u.FolderID.Ptr()))
			}

			query, args := a.update(tblNotes, id)
			res, err := tx.Exec(query, args...)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return apperr.NotFound(op, "note", id)
			}
			out, err = getNote(tx, op, id)
			return err
		})
		return out, err
	})
}

// DeleteNote removes a note together with its tag associations, its search
// entry, and every edge where it is source or target.
func (db *DB) DeleteNote(ctx context.Context, id string) error {
	const op = "index: delete note"
	return db.do(ctx, op, func() error {
		return db.inTx(op, func(tx *sql.Tx) error {
			return deleteNoteTx(tx, op, id)
		})
	})
}

func deleteNoteTx(tx *sql.Tx, op, id string) error {
	res, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(op, "note", id)
	}
	if _, err := tx.Exec(`DELETE FROM note_tags WHERE note_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM backlinks WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
		return err
	}
	return nil
}

// ListNotes returns one page of note summaries, most recently updated first,
// and the size of the filtered set before paging.
func (db *DB) ListNotes(ctx context.Context, f NoteFilter) ([]models.NoteSummary, int, error) {
	const op = "index: list notes"
	type page struct {
		items []models.NoteSummary
		total int
	}
	p, err := locked(ctx, db, op, func() (page, error) {
		var q noteQuery
		if f.TagID != nil {
			q.add(predHasTag, *f.TagID)
		}
		if f.FolderID != nil {
			q.add(predInFolder, *f.FolderID)
		} else if f.TagID == nil {
			q.add(predRootLevel)
		}

		var total int
		if err := db.conn.QueryRow(`SELECT COUNT(*)`+q.from(), q.args...).Scan(&total); err != nil {
			return page{}, apperr.Storage(op, err)
		}

		limit, offset := f.Limit, f.Offset
		if limit <= 0 {
			limit = DefaultListLimit
		}
		if offset < 0 {
			offset = 0
		}
		args := append(append([]any{}, q.args...), limit, offset)
		rows, err := db.conn.Query(`SELECT `+summaryColumns+q.from()+
			` ORDER BY n.updated_at DESC, n.id DESC LIMIT ? OFFSET ?`, args...)
		if err != nil {
			return page{}, apperr.Storage(op, err)
		}
		items, err := scanSummaries(rows)
		if err != nil {
			return page{}, apperr.Storage(op, err)
		}
		return page{items: items, total: total}, nil
	})
	return p.items, p.total, err
}

var summaryColumns = fmt.Sprintf(`n.id, n.folder_id, n.title, substr(n.content, 1, %d), n.updated_at`, ExcerptLength)

func scanSummaries(rows *sql.Rows) ([]models.NoteSummary, error) {
	defer rows.Close()
	out := []models.NoteSummary{}
	for rows.Next() {
		var (
			s      models.NoteSummary
			folder sql.NullString
		)
		if err := rows.Scan(&s.ID, &folder, &s.Title, &s.Excerpt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.FolderID = stringPtr(folder)
		out = append(out, s)
	}
	return out, rows.Err()
}
