package index

import (
	"context"
	"database/sql"
	"errors"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
)

// ImportStatus tells what ImportNote did with a file.
type ImportStatus string

const (
	ImportCreated   ImportStatus = "created"
	ImportUpdated   ImportStatus = "updated"
	ImportUnchanged ImportStatus = "unchanged"
)

// ImportFile is one Markdown file read from the inbox.
type ImportFile struct {
	Path     string
	Checksum string
	Title    string
	Content  string
}

// ImportResult is the outcome of ImportNote.
type ImportResult struct {
	Note   *models.Note
	Status ImportStatus
}

// ImportNote creates or refreshes the note backing an inbox file. A file
// whose checksum matches the last import is left alone. The note's
// outgoing links are re-derived from the imported content.
func (db *DB) ImportNote(ctx context.Context, f ImportFile) (ImportResult, error) {
	const op = "index: import note"
	if f.Path == "" {
		return ImportResult{}, apperr.Invalid(op, "import path is required")
	}
	return locked(ctx, db, op, func() (ImportResult, error) {
		var res ImportResult
		err := db.inTx(op, func(tx *sql.Tx) error {
			var prevSum, noteID string
			err := tx.QueryRow(`SELECT checksum, note_id FROM imports WHERE path = ?`, f.Path).Scan(&prevSum, &noteID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}

			var cur *models.Note
			if noteID != "" {
				cur, err = getNote(tx, op, noteID)
				if err != nil && !errors.Is(err, apperr.ErrNotFound) {
					return err
				}
			}

			now := db.now()
			switch {
			case cur != nil && prevSum == f.Checksum:
				res = ImportResult{Note: cur, Status: ImportUnchanged}
				return nil
			case cur != nil:
				var a assignments
				a.set(colTitle, f.Title)
				a.set(colContent, f.Content)
				a.set(colUpdatedAt, max(now, cur.CreatedAt))
				query, args := a.update(tblNotes, cur.ID)
				if _, err := tx.Exec(query, args...); err != nil {
					return err
				}
				res.Status = ImportUpdated
				noteID = cur.ID
			default:
				noteID = newID()
				_, err := tx.Exec(`INSERT INTO notes (`+noteColumns+`) VALUES (?, NULL, ?, ?, ?, ?)`,
					noteID, f.Title, f.Content, now, now)
				if err != nil {
					return err
				}
				res.Status = ImportCreated
			}

			_, err = tx.Exec(`INSERT OR REPLACE INTO imports (path, checksum, note_id, imported_at) VALUES (?, ?, ?, ?)`,
				f.Path, f.Checksum, noteID, now)
			if err != nil {
				return err
			}
			if _, err := replaceOutgoing(tx, noteID, f.Content); err != nil {
				return err
			}
			res.Note, err = getNote(tx, op, noteID)
			return err
		})
		if err != nil {
			return ImportResult{}, err
		}
		return res, nil
	})
}

// ImportedChecksums maps every imported path to the checksum of its last
// import.
func (db *DB) ImportedChecksums(ctx context.Context) (map[string]string, error) {
	const op = "index: imported checksums"
	return locked(ctx, db, op, func() (map[string]string, error) {
		rows, err := db.conn.Query(`SELECT path, checksum FROM imports`)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		defer rows.Close()
		out := make(map[string]string)
		for rows.Next() {
			var p, sum string
			if err := rows.Scan(&p, &sum); err != nil {
				return nil, apperr.Storage(op, err)
			}
			out[p] = sum
		}
		return out, apperr.Storage(op, rows.Err())
	})
}
