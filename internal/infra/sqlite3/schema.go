package sqlite3

import "strings"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_links (
		telegram_id INTEGER PRIMARY KEY,
		hash        TEXT    NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS legacy_subscribers (
		telegram_id INTEGER PRIMARY KEY,
		created_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activation_failures (
		charge_id     TEXT PRIMARY KEY,
		telegram_id   INTEGER NOT NULL,
		hash          TEXT    NOT NULL DEFAULT '',
		tier_id       TEXT    NOT NULL DEFAULT '',
		duration_days INTEGER NOT NULL DEFAULT 0,
		amount_stars  INTEGER NOT NULL DEFAULT 0,
		reason        TEXT    NOT NULL,
		created_at    DATETIME NOT NULL,
		reported_at   DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activation_failures_unreported
		ON activation_failures (reported_at, created_at)`,
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
