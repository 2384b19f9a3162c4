package index

import (
	"context"
	"database/sql"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/internal/parser"
)

const upsertLinkSQL = `
	INSERT INTO backlinks (source_id, target_id, context) VALUES (?, ?, ?)
	ON CONFLICT (source_id, target_id) DO UPDATE SET context = excluded.context`

// AddLink records that source mentions target, replacing the context of an
// existing edge. Both notes must exist; self links are rejected.
func (db *DB) AddLink(ctx context.Context, sourceID, targetID string, linkContext *string) error {
	const op = "index: add link"
	if sourceID == targetID {
		return apperr.Invalid(op, "a note cannot link to itself")
	}
	return db.do(ctx, op, func() error {
		if err := requireNote(db.conn, op, sourceID); err != nil {
			return err
		}
		if err := requireNote(db.conn, op, targetID); err != nil {
			return err
		}
		_, err := db.conn.Exec(upsertLinkSQL, sourceID, targetID, nullString(linkContext))
		return apperr.Storage(op, err)
	})
}

// RemoveLink deletes the edge source→target if present.
func (db *DB) RemoveLink(ctx context.Context, sourceID, targetID string) error {
	const op = "index: remove link"
	return db.do(ctx, op, func() error {
		_, err := db.conn.Exec(`DELETE FROM backlinks WHERE source_id = ? AND target_id = ?`, sourceID, targetID)
		return apperr.Storage(op, err)
	})
}

// SyncBacklinks replaces every outgoing edge of sourceID with the references
// found in content. Self references are skipped; for repeated targets the
// last match's context wins. Returns the number of distinct edges stored.
func (db *DB) SyncBacklinks(ctx context.Context, sourceID, content string) (int, error) {
	const op = "index: sync backlinks"
	return locked(ctx, db, op, func() (int, error) {
		var n int
		err := db.inTx(op, func(tx *sql.Tx) error {
			if err := requireNote(tx, op, sourceID); err != nil {
				return err
			}
			var err error
			n, err = replaceOutgoing(tx, sourceID, content)
			return err
		})
		return n, err
	})
}

func replaceOutgoing(tx *sql.Tx, sourceID, content string) (int, error) {
	if _, err := tx.Exec(`DELETE FROM backlinks WHERE source_id = ?`, sourceID); err != nil {
		return 0, err
	}
	refs := parser.ScanRefs(content, sourceID)
	if len(refs) == 0 {
		return 0, nil
	}
	stmt, err := tx.Prepare(upsertLinkSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	targets := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		if _, err := stmt.Exec(sourceID, r.Target, r.Context); err != nil {
			return 0, err
		}
		targets[r.Target] = struct{}{}
	}
	return len(targets), nil
}

// GetBacklinks returns the notes linking to targetID with their current
// titles. Edges whose source note no longer exists are skipped.
func (db *DB) GetBacklinks(ctx context.Context, targetID string) ([]models.Backlink, error) {
	const op = "index: get backlinks"
	return locked(ctx, db, op, func() ([]models.Backlink, error) {
		rows, err := db.conn.Query(`
			SELECT b.source_id, n.title, b.context
			FROM backlinks b
			JOIN notes n ON n.id = b.source_id
			WHERE b.target_id = ?
			ORDER BY n.updated_at DESC, n.id DESC
		`, targetID)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		defer rows.Close()

		out := []models.Backlink{}
		for rows.Next() {
			var (
				bl  models.Backlink
				ctxt sql.NullString
			)
			if err := rows.Scan(&bl.SourceID, &bl.SourceTitle, &ctxt); err != nil {
				return nil, apperr.Storage(op, err)
			}
			bl.Context = stringPtr(ctxt)
			out = append(out, bl)
		}
		if err := rows.Err(); err != nil {
			return nil, apperr.Storage(op, err)
		}
		return out, nil
	})
}

// GetOutgoingLinks returns summaries of the notes sourceID links to. Edges
// whose target note no longer exists are skipped.
func (db *DB) GetOutgoingLinks(ctx context.Context, sourceID string) ([]models.NoteSummary, error) {
	const op = "index: get outgoing links"
	return locked(ctx, db, op, func() ([]models.NoteSummary, error) {
		rows, err := db.conn.Query(`SELECT `+summaryColumns+`
			FROM backlinks b
			JOIN notes n ON n.id = b.target_id
			WHERE b.source_id = ?
			ORDER BY n.updated_at DESC, n.id DESC
		`, sourceID)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		out, err := scanSummaries(rows)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		return out, nil
	})
}

// Graph returns every note and every edge whose endpoints both exist.
func (db *DB) Graph(ctx context.Context) ([]models.GraphNode, []models.Link, error) {
	const op = "index: graph"
	type graph struct {
		nodes []models.GraphNode
		links []models.Link
	}
	g, err := locked(ctx, db, op, func() (graph, error) {
		g := graph{nodes: []models.GraphNode{}, links: []models.Link{}}

		rows, err := db.conn.Query(`SELECT id, title FROM notes ORDER BY id`)
		if err != nil {
			return g, apperr.Storage(op, err)
		}
		for rows.Next() {
			var n models.GraphNode
			if err := rows.Scan(&n.ID, &n.Title); err != nil {
				rows.Close()
				return g, apperr.Storage(op, err)
			}
			g.nodes = append(g.nodes, n)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return g, apperr.Storage(op, err)
		}

		rows, err = db.conn.Query(`
			SELECT b.source_id, b.target_id
			FROM backlinks b
			JOIN notes s ON s.id = b.source_id
			JOIN notes t ON t.id = b.target_id
			ORDER BY b.source_id, b.target_id
		`)
		if err != nil {
			return g, apperr.Storage(op, err)
		}
		defer rows.Close()
		for rows.Next() {
			var l models.Link
			if err := rows.Scan(&l.Source, &l.Target); err != nil {
				return g, apperr.Storage(op, err)
			}
			g.links = append(g.links, l)
		}
		return g, apperr.Storage(op, rows.Err())
	})
	return g.nodes, g.links, err
}

// RebuildLinks re-derives the whole link graph from note content. Returns
// the number of edges stored.
func (db *DB) RebuildLinks(ctx context.Context) (int, error) {
	const op = "index: rebuild links"
	return locked(ctx, db, op, func() (int, error) {
		total := 0
		err := db.inTx(op, func(tx *sql.Tx) error {
			type src struct{ id, content string }
			rows, err := tx.Query(`SELECT id, content FROM notes`)
			if err != nil {
				return err
			}
			var notes []src
			for rows.Next() {
				var s src
				if err := rows.Scan(&s.id, &s.content); err != nil {
					rows.Close()
					return err
				}
				notes = append(notes, s)
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}

			if _, err := tx.Exec(`DELETE FROM backlinks`); err != nil {
				return err
			}
			for _, s := range notes {
				n, err := replaceOutgoing(tx, s.id, s.content)
				if err != nil {
					return err
				}
				total += n
			}
			return nil
		})
		return total, err
	})
}
