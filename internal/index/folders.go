package index

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/pkg/nullable"
)

// FolderUpdate is a partial folder update; see NoteUpdate for the semantics.
type FolderUpdate struct {
	Name     *string
	ParentID nullable.Field[string]
}

func getFolder(q querier, op, id string) (*models.Folder, error) {
	var (
		f      models.Folder
		parent sql.NullString
	)
	err := q.QueryRow(`SELECT id, name, parent_id, created_at FROM folders WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &parent, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(op, "folder", id)
	}
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	f.ParentID = stringPtr(parent)
	return &f, nil
}

// CreateFolder adds a folder, optionally under parentID.
func (db *DB) CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	const op = "index: create folder"
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Invalid(op, "folder name is required")
	}
	return locked(ctx, db, op, func() (*models.Folder, error) {
		if parentID != nil {
			if err := requireFolder(db.conn, op, *parentID); err != nil {
				return nil, err
			}
		}
		f := &models.Folder{
			ID:        newID(),
			Name:      name,
			ParentID:  parentID,
			CreatedAt: db.now(),
		}
		_, err := db.conn.Exec(`INSERT INTO folders (id, name, parent_id, created_at) VALUES (?, ?, ?, ?)`,
			f.ID, f.Name, nullString(parentID), f.CreatedAt)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		return f, nil
	})
}

// GetFolder returns the folder with the given id.
func (db *DB) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	const op = "index: get folder"
	return locked(ctx, db, op, func() (*models.Folder, error) {
		return getFolder(db.conn, op, id)
	})
}

// ListFolders returns every folder with its direct note count.
func (db *DB) ListFolders(ctx context.Context) ([]models.FolderListItem, error) {
	const op = "index: list folders"
	return locked(ctx, db, op, func() ([]models.FolderListItem, error) {
		rows, err := db.conn.Query(`
			SELECT f.id, f.name, f.parent_id,
			       (SELECT COUNT(*) FROM notes n WHERE n.folder_id = f.id)
			FROM folders f
			ORDER BY f.name COLLATE NOCASE, f.id
		`)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		defer rows.Close()

		out := []models.FolderListItem{}
		for rows.Next() {
			var (
				item   models.FolderListItem
				parent sql.NullString
			)
			if err := rows.Scan(&item.ID, &item.Name, &parent, &item.NoteCount); err != nil {
				return nil, apperr.Storage(op, err)
			}
			item.ParentID = stringPtr(parent)
			out = append(out, item)
		}
		if err := rows.Err(); err != nil {
			return nil, apperr.Storage(op, err)
		}
		return out, nil
	})
}

// UpdateFolder renames and/or moves a folder. Moving a folder under itself
// or one of its descendants is rejected.
func (db *DB) UpdateFolder(ctx context.Context, id string, u FolderUpdate) (*models.Folder, error) {
	const op = "index: update folder"
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, apperr.Invalid(op, "folder name cannot be empty")
	}
	return locked(ctx, db, op, func() (*models.Folder, error) {
		var out *models.Folder
		err := db.inTx(op, func(tx *sql.Tx) error {
			if _, err := getFolder(tx, op, id); err != nil {
				return err
			}

			var a assignments
			if u.Name != nil {
				a.set(colName, *u.Name)
			}
			if u.ParentID.Present() {
				if pid, ok := u.ParentID.Get(); ok {
					if err := requireFolder(tx, op, pid); err != nil {
						return err
					}
					cyclic, err := isAncestorOrSelf(tx, id, pid)
					if err != nil {
						return err
					}
					if cyclic {
						return apperr.Invalid(op, "folder cannot be moved under itself or a descendant")
					}
				}
				a.set(colParentID, nullString(u.ParentID.Ptr()))
			}

			if !a.empty() {
				query, args := a.update(tblFolders, id)
				res, err := tx.Exec(query, args...)
				if err != nil {
					return err
				}
				if n, _ := res.RowsAffected(); n == 0 {
					return apperr.NotFound(op, "folder", id)
				}
			}

			var err error
			out, err = getFolder(tx, op, id)
			return err
		})
		return out, err
	})
}

// isAncestorOrSelf reports whether folder id appears on the parent chain
// starting at start (start included). UNION stops on pre-existing cycles.
func isAncestorOrSelf(q querier, id, start string) (bool, error) {
	var n int
	err := q.QueryRow(`
		WITH RECURSIVE chain(id) AS (
			SELECT ?
			UNION
			SELECT f.parent_id FROM folders f JOIN chain c ON f.id = c.id
			WHERE f.parent_id IS NOT NULL
		)
		SELECT COUNT(*) FROM chain WHERE id = ?
	`, start, id).Scan(&n)
	return n > 0, err
}

// DeleteFolder removes a folder. With deleteNotes its notes are deleted
// with full per-note cleanup; otherwise they are moved to the root. Child
// folders become root folders.
func (db *DB) DeleteFolder(ctx context.Context, id string, deleteNotes bool) (models.FolderDeletion, error) {
	const op = "index: delete folder"
	return locked(ctx, db, op, func() (models.FolderDeletion, error) {
		var out models.FolderDeletion
		err := db.inTx(op, func(tx *sql.Tx) error {
			if _, err := getFolder(tx, op, id); err != nil {
				return err
			}

			if deleteNotes {
				ids, err := noteIDsInFolder(tx, id)
				if err != nil {
					return err
				}
				for _, nid := range ids {
					if err := deleteNoteTx(tx, op, nid); err != nil {
						return err
					}
				}
				out.DeletedNotes = int64(len(ids))
			} else {
				res, err := tx.Exec(`UPDATE notes SET folder_id = NULL WHERE folder_id = ?`, id)
				if err != nil {
					return err
				}
				out.MovedNotes, _ = res.RowsAffected()
			}

			if _, err := tx.Exec(`UPDATE folders SET parent_id = NULL WHERE parent_id = ?`, id); err != nil {
				return err
			}
			res, err := tx.Exec(`DELETE FROM folders WHERE id = ?`, id)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return apperr.NotFound(op, "folder", id)
			}
			return nil
		})
		if err != nil {
			return models.FolderDeletion{}, err
		}
		return out, nil
	})
}

func noteIDsInFolder(q querier, folderID string) ([]string, error) {
	rows, err := q.Query(`SELECT id FROM notes WHERE folder_id = ?`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
