package mcpserver

// NoteFormatContract describes how LLM consumers should shape note titles,
// bodies, and links when creating or updating notes.
const NoteFormatContract = `# mdnote Note Format Contract

A note is a title plus a Markdown body. Notes are addressed by id, a
26-character ULID such as ` + "`" + `01HZX3J6Q8R2M4N5P7S9T0V1W2` + "`" + `.

## Fields

- **title**: REQUIRED, non-empty, at most 500 characters. Shown in lists, search, and the graph.
- **content**: Markdown body, at most 10 MiB. May be empty.
- **folder_id**: OPTIONAL folder id. Omit it to create the note at the root.

## Links

Reference another note by wrapping its id in double brackets:

` + "```" + `markdown
See [[01HZX3J6Q8R2M4N5P7S9T0V1W2]] for the design.
` + "```" + `

Rules:

1. Only ULIDs inside ` + "`" + `[[...]]` + "`" + ` count as links. Names or paths do not.
2. A note linking to itself is ignored.
3. Links to ids that do not exist yet are kept and resolve once the note appears.
4. Links are re-derived from the body whenever a note is saved. Call
   ` + "`" + `sync_backlinks` + "`" + ` if you need to refresh them explicitly.
5. Use ` + "`" + `search_notes` + "`" + ` or ` + "`" + `list_notes` + "`" + ` to find the id of the note you want to link to.

## Search

` + "`" + `search_notes` + "`" + ` takes an SQLite FTS5 query: plain words, "quoted phrases",
prefix* terms, and AND / OR / NOT. Matches in snippets are wrapped in ==double equals==.

## Example

` + "```" + `markdown
# Weekly standup 2025-01-20

Attendees: Alice, Bob.

## Action items

- Review the design doc [[01HZX3J6Q8R2M4N5P7S9T0V1W2]]
- Update the roadmap [[01HZX3KDZ5A7B9C1D3E5F7G9H1]]
` + "```" + `
`
