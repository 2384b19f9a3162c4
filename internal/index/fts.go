package index

import (
	"context"
	"database/sql"
	"strings"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
)

// Snippet markers wrap matched terms; SnippetEllipsis marks truncation.
const (
	SnippetOpen       = "=="
	SnippetClose      = "=="
	SnippetEllipsis   = "..."
	snippetTokens     = 64
	DefaultSearchSize = 20
)

// Search runs an FTS5 MATCH query over note titles and content, best match
// first (lower rank is more relevant). A blank query returns no results; a
// malformed one fails with apperr.KindQuerySyntax.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	const op = "index: search"
	if strings.TrimSpace(query) == "" {
		return []models.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchSize
	}
	return locked(ctx, db, op, func() ([]models.SearchResult, error) {
		// Column -1 lets FTS5 pick the column with the best match, so a hit
		// that is only in the title still gets highlighted.
		rows, err := db.conn.Query(`
			SELECT id, title, snippet(notes_fts, -1, ?, ?, ?, ?), rank
			FROM notes_fts
			WHERE notes_fts MATCH ?
			ORDER BY rank
			LIMIT ?
		`, SnippetOpen, SnippetClose, SnippetEllipsis, snippetTokens, query, limit)
		if err != nil {
			return nil, searchErr(op, err)
		}
		defer rows.Close()

		out := []models.SearchResult{}
		for rows.Next() {
			var r models.SearchResult
			if err := rows.Scan(&r.ID, &r.Title, &r.Snippet, &r.Rank); err != nil {
				return nil, apperr.Storage(op, err)
			}
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			return nil, searchErr(op, err)
		}
		return out, nil
	})
}

// searchErr separates rejected MATCH expressions from other engine
// failures. The statement text is fixed, so an SQL logic error can only come
// from the query string.
func searchErr(op string, err error) error {
	if code, ok := resultCode(err); ok && code == sqliteError {
		return apperr.QuerySyntax(op, err)
	}
	return apperr.Storage(op, err)
}

// RebuildSearchIndex discards the FTS table content and repopulates it from
// the notes table. Returns the number of indexed notes.
func (db *DB) RebuildSearchIndex(ctx context.Context) (int, error) {
	const op = "index: rebuild search index"
	return locked(ctx, db, op, func() (int, error) {
		var n int64
		err := db.inTx(op, func(tx *sql.Tx) error {
			if _, err := tx.Exec(`DELETE FROM notes_fts`); err != nil {
				return err
			}
			if _, err := tx.Exec(`INSERT INTO notes_fts (id, title, content) SELECT id, title, content FROM notes`); err != nil {
				return err
			}
			return tx.QueryRow(`SELECT COUNT(*) FROM notes_fts`).Scan(&n)
		})
		return int(n), err
	})
}
