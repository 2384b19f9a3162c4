package index

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
)

// DefaultTagColor is used when a tag is created without a color.
const DefaultTagColor = "#3b82f6"

// TagUpdate is a partial tag update.
type TagUpdate struct {
	Name  *string
	Color *string
}

func getTag(q querier, op, id string) (*models.Tag, error) {
	var t models.Tag
	err := q.QueryRow(`SELECT id, name, color FROM tags WHERE id = ?`, id).Scan(&t.ID, &t.Name, &t.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(op, "tag", id)
	}
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return &t, nil
}

// CreateTag adds a tag. Names are unique; a duplicate is a storage error.
func (db *DB) CreateTag(ctx context.Context, name string, color *string) (*models.Tag, error) {
	const op = "index: create tag"
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Invalid(op, "tag name is required")
	}
	return locked(ctx, db, op, func() (*models.Tag, error) {
		t := &models.Tag{ID: newID(), Name: name, Color: DefaultTagColor}
		if color != nil && *color != "" {
			t.Color = *color
		}
		if _, err := db.conn.Exec(`INSERT INTO tags (id, name, color) VALUES (?, ?, ?)`, t.ID, t.Name, t.Color); err != nil {
			return nil, apperr.Storage(op, err)
		}
		return t, nil
	})
}

// GetTag returns the tag with the given id.
func (db *DB) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	const op = "index: get tag"
	return locked(ctx, db, op, func() (*models.Tag, error) {
		return getTag(db.conn, op, id)
	})
}

// ListTags returns every tag with the number of notes carrying it.
func (db *DB) ListTags(ctx context.Context) ([]models.TagWithCount, error) {
	const op = "index: list tags"
	return locked(ctx, db, op, func() ([]models.TagWithCount, error) {
		rows, err := db.conn.Query(`
			SELECT t.id, t.name, t.color,
			       (SELECT COUNT(*) FROM note_tags nt WHERE nt.tag_id = t.id)
			FROM tags t
			ORDER BY t.name COLLATE NOCASE
		`)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		defer rows.Close()

		out := []models.TagWithCount{}
		for rows.Next() {
			var t models.TagWithCount
			if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.NoteCount); err != nil {
				return nil, apperr.Storage(op, err)
			}
			out = append(out, t)
		}
		if err := rows.Err(); err != nil {
			return nil, apperr.Storage(op, err)
		}
		return out, nil
	})
}

// UpdateTag renames and/or recolors a tag.
func (db *DB) UpdateTag(ctx context.Context, id string, u TagUpdate) (*models.Tag, error) {
	const op = "index: update tag"
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, apperr.Invalid(op, "tag name cannot be empty")
	}
	return locked(ctx, db, op, func() (*models.Tag, error) {
		var a assignments
		if u.Name != nil {
			a.set(colName, *u.Name)
		}
		if u.Color != nil {
			a.set(colColor, *u.Color)
		}
		if !a.empty() {
			query, args := a.update(tblTags, id)
			res, err := db.conn.Exec(query, args...)
			if err != nil {
				return nil, apperr.Storage(op, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return nil, apperr.NotFound(op, "tag", id)
			}
		}
		return getTag(db.conn, op, id)
	})
}

// DeleteTag removes a tag and every association to it.
func (db *DB) DeleteTag(ctx context.Context, id string) error {
	const op = "index: delete tag"
	return db.do(ctx, op, func() error {
		return db.inTx(op, func(tx *sql.Tx) error {
			if _, err := tx.Exec(`DELETE FROM note_tags WHERE tag_id = ?`, id); err != nil {
				return err
			}
			res, err := tx.Exec(`DELETE FROM tags WHERE id = ?`, id)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return apperr.NotFound(op, "tag", id)
			}
			return nil
		})
	})
}

// AddTagToNote associates a tag with a note. Re-adding is a no-op.
func (db *DB) AddTagToNote(ctx context.Context, noteID, tagID string) error {
	const op = "index: add tag to note"
	return db.do(ctx, op, func() error {
		if err := requireNote(db.conn, op, noteID); err != nil {
			return err
		}
		if _, err := getTag(db.conn, op, tagID); err != nil {
			return err
		}
		_, err := db.conn.Exec(`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`, noteID, tagID)
		return apperr.Storage(op, err)
	})
}

// RemoveTagFromNote drops an association. Removing a missing pair is not an error.
func (db *DB) RemoveTagFromNote(ctx context.Context, noteID, tagID string) error {
	const op = "index: remove tag from note"
	return db.do(ctx, op, func() error {
		_, err := db.conn.Exec(`DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?`, noteID, tagID)
		return apperr.Storage(op, err)
	})
}

// GetNoteTags returns the tags of a note, by name.
func (db *DB) GetNoteTags(ctx context.Context, noteID string) ([]models.Tag, error) {
	const op = "index: get note tags"
	return locked(ctx, db, op, func() ([]models.Tag, error) {
		rows, err := db.conn.Query(`
			SELECT t.id, t.name, t.color
			FROM tags t
			JOIN note_tags nt ON nt.tag_id = t.id
			WHERE nt.note_id = ?
			ORDER BY t.name COLLATE NOCASE
		`, noteID)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		defer rows.Close()

		out := []models.Tag{}
		for rows.Next() {
			var t models.Tag
			if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
				return nil, apperr.Storage(op, err)
			}
			out = append(out, t)
		}
		if err := rows.Err(); err != nil {
			return nil, apperr.Storage(op, err)
		}
		return out, nil
	})
}
