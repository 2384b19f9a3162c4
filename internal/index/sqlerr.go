package index

import (
	"errors"

	"modernc.org/sqlite"
)

// sqliteError is the primary SQLITE_ERROR result code, which SQLite
// reports for SQL logic errors such as a rejected MATCH expression.
const sqliteError = 1

// resultCode extracts the primary SQLite result code from a driver error.
func resultCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		// Extended result codes are enabled; the low byte is the primary code.
		return se.Code() & 0xff, true
	}
	return mattnResultCode(err)
}
