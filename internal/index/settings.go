package index

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
)

// Setting keys.
const (
	keyTheme         = "theme"
	keyFontSize      = "font_size"
	keyFontFamily    = "font_family"
	keyAutoSaveDelay = "auto_save_delay"
	keySpellCheck    = "spell_check"
)

// GetSettings reads stored settings over the defaults. Unknown keys are
// ignored and unparsable values keep their default.
func (db *DB) GetSettings(ctx context.Context) (models.Settings, error) {
	const op = "index: get settings"
	return locked(ctx, db, op, func() (models.Settings, error) {
		s := models.DefaultSettings()
		rows, err := db.conn.Query(`SELECT key, value FROM settings`)
		if err != nil {
			return s, apperr.Storage(op, err)
		}
		defer rows.Close()
		for rows.Next() {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				return s, apperr.Storage(op, err)
			}
			switch key {
			case keyTheme:
				s.Theme = value
			case keyFontSize:
				if v, err := strconv.Atoi(value); err == nil {
					s.FontSize = v
				}
			case keyFontFamily:
				s.FontFamily = value
			case keyAutoSaveDelay:
				if v, err := strconv.Atoi(value); err == nil {
					s.AutoSaveDelay = v
				}
			case keySpellCheck:
				s.SpellCheck = value == "true"
			}
		}
		return s, apperr.Storage(op, rows.Err())
	})
}

// UpdateSettings stores every setting in one transaction.
func (db *DB) UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	const op = "index: update settings"
	return locked(ctx, db, op, func() (models.Settings, error) {
		err := db.inTx(op, func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`)
			if err != nil {
				return err
			}
			defer stmt.Close()
			for _, kv := range [][2]string{
				{keyTheme, s.Theme},
				{keyFontSize, strconv.Itoa(s.FontSize)},
				{keyFontFamily, s.FontFamily},
				{keyAutoSaveDelay, strconv.Itoa(s.AutoSaveDelay)},
				{keySpellCheck, strconv.FormatBool(s.SpellCheck)},
			} {
				if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return models.Settings{}, err
		}
		return s, nil
	})
}
