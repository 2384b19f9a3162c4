package inbox

import (
	"context"
	"path"
	"strings"

	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/internal/storage"
)

const exportPage = 200

// Export writes every note to store as <folder path>/<title>.md, with the
// title as a leading "# " heading so the file imports back to the same
// title and content. Name collisions get the note id appended. Returns the
// number of files written.
func Export(ctx context.Context, db index.NoteIndex, store storage.Provider) (int, error) {
	folders, err := db.ListFolders(ctx)
	if err != nil {
		return 0, err
	}
	dirs := folderDirs(folders)

	written := 0
	used := make(map[string]struct{})
	export := func(filter index.NoteFilter, dir string) error {
		for offset := 0; ; offset += exportPage {
			filter.Limit, filter.Offset = exportPage, offset
			items, total, err := db.ListNotes(ctx, filter)
			if err != nil {
				return err
			}
			for _, s := range items {
				n, err := db.GetNote(ctx, s.ID)
				if err != nil {
					return err
				}
				name := path.Join(dir, fileName(n.Title)+".md")
				if _, dup := used[strings.ToLower(name)]; dup {
					name = path.Join(dir, fileName(n.Title)+"-"+n.ID+".md")
				}
				used[strings.ToLower(name)] = struct{}{}
				if err := store.Write(name, []byte(render(n))); err != nil {
					return err
				}
				written++
			}
			if offset+len(items) >= total || len(items) == 0 {
				return nil
			}
		}
	}

	if err := export(index.NoteFilter{}, ""); err != nil {
		return written, err
	}
	for _, f := range folders {
		id := f.ID
		if err := export(index.NoteFilter{FolderID: &id}, dirs[f.ID]); err != nil {
			return written, err
		}
	}
	return written, nil
}

func render(n *models.Note) string {
	return "# " + n.Title + "\n\n" + n.Content
}

// folderDirs maps folder ids to their slash-joined path from the root.
func folderDirs(folders []models.FolderListItem) map[string]string {
	byID := make(map[string]models.FolderListItem, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	out := make(map[string]string, len(folders))
	for _, f := range folders {
		var parts []string
		cur, ok := f, true
		for depth := 0; ok && depth <= len(folders); depth++ {
			parts = append(parts, fileName(cur.Name))
			if cur.ParentID == nil {
				break
			}
			cur, ok = byID[*cur.ParentID]
		}
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		out[f.ID] = path.Join(parts...)
	}
	return out
}

// fileName makes s safe as a single path element.
func fileName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	s = strings.Trim(s, ". ")
	if s == "" {
		return "untitled"
	}
	return s
}
