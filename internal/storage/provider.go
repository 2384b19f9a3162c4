// Package storage reads and writes Markdown files under a directory root.
// It backs inbox import and Markdown export; notes themselves live in the
// index database.
package storage

import "time"

// FileMeta describes one Markdown file found by List.
type FileMeta struct {
	Path      string    // relative to the provider root, slash-separated
	Checksum  string    // hex SHA-256 of the content
	UpdatedAt time.Time // file modification time
}

// Provider is the interface for Markdown file access.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to root).
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}
