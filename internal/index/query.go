package index

import (
	"fmt"
	"strings"
)

// Dynamic SQL is assembled only from the fixed fragments in this file.
// Values always travel as bound parameters.

// predicate is one of the optional note-listing conditions.
type predicate int

const (
	predInFolder  predicate = iota // notes directly inside a folder
	predRootLevel                  // notes without a folder
	predHasTag                     // notes carrying a tag
)

var predicates = [...]struct {
	join  string
	where string
	args  int
}{
	predInFolder:  {where: "n.folder_id = ?", args: 1},
	predRootLevel: {where: "n.folder_id IS NULL"},
	predHasTag:    {join: "JOIN note_tags nt ON nt.note_id = n.id", where: "nt.tag_id = ?", args: 1},
}

// noteQuery accumulates listing predicates over `notes n`.
type noteQuery struct {
	joins []string
	where []string
	args  []any
}

// add appends p with its bound values. A wrong value count is a
// programming error.
func (q *noteQuery) add(p predicate, args ...any) {
	spec := predicates[p]
	if len(args) != spec.args {
		panic(fmt.Sprintf("index: predicate %d takes %d args, got %d", p, spec.args, len(args)))
	}
	if spec.join != "" {
		q.joins = append(q.joins, spec.join)
	}
	q.where = append(q.where, spec.where)
	q.args = append(q.args, args...)
}

// from renders the FROM/JOIN/WHERE tail shared by count and page queries.
func (q *noteQuery) from() string {
	var b strings.Builder
	b.WriteString(" FROM notes n")
	for _, j := range q.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	return b.String()
}

// table and column name the only identifiers an update may touch.
type (
	table  string
	column string
)

const (
	tblNotes   table = "notes"
	tblFolders table = "folders"
	tblTags    table = "tags"
)

const (
	colTitle     column = "title"
	colContent   column = "content"
	colFolderID  column = "folder_id"
	colUpdatedAt column = "updated_at"
	colName      column = "name"
	colParentID  column = "parent_id"
	colColor     column = "color"
)

// assignments collects `col = ?` pairs for a partial update.
type assignments struct {
	cols []column
	args []any
}

func (a *assignments) set(c column, v any) {
	a.cols = append(a.cols, c)
	a.args = append(a.args, v)
}

func (a *assignments) empty() bool { return len(a.cols) == 0 }

// update renders `UPDATE t SET ... WHERE id = ?` with id appended last.
func (a *assignments) update(t table, id string) (string, []any) {
	sets := make([]string, len(a.cols))
	for i, c := range a.cols {
		sets[i] = string(c) + " = ?"
	}
	query := "UPDATE " + string(t) + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args := append(append([]any{}, a.args...), id)
	return query, args
}
