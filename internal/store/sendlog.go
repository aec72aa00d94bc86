// engine/internal/store/sendlog.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SendRecord is one delivery attempt, successful or not.
type SendRecord struct {
	ID        int64  `json:"id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Link      string `json:"link"`
	Persona   string `json:"persona"`
	SentAt    string `json:"sent_at"`
	Status    string `json:"status"` // sent | failed
	Error     string `json:"error,omitempty"`
	Replied   bool   `json:"replied"`
}

const (
	SendStatusSent   = "sent"
	SendStatusFailed = "failed"
)

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS send_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  recipient TEXT NOT NULL,
  subject TEXT NOT NULL,
  body TEXT NOT NULL,
  link TEXT NOT NULL DEFAULT '',
  persona TEXT NOT NULL DEFAULT '',
  sent_at TEXT NOT NULL,
  status TEXT NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  replied INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_send_log_link
ON send_log(link);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_send_log_sent_at
ON send_log(sent_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertSend appends one attempt and returns its id.
func InsertSend(ctx context.Context, db *sql.DB, r SendRecord) (int64, error) {
	if r.SentAt == "" {
		r.SentAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := db.ExecContext(ctx, `
INSERT INTO send_log(recipient, subject, body, link, persona, sent_at, status, error)
VALUES(?,?,?,?,?,?,?,?);`,
		r.Recipient, r.Subject, r.Body, r.Link, r.Persona, r.SentAt, r.Status, r.Error)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSends returns the most recent attempts, newest first.
func ListSends(ctx context.Context, db *sql.DB, limit int) ([]SendRecord, error) {
	if limit <= 0 || limit > 2000 {
		limit = 100
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, recipient, subject, body, link, persona, sent_at, status, error, replied
FROM send_log
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SendRecord
	for rows.Next() {
		var r SendRecord
		var replied int
		if err := rows.Scan(
			&r.ID, &r.Recipient, &r.Subject, &r.Body, &r.Link,
			&r.Persona, &r.SentAt, &r.Status, &r.Error, &replied,
		); err != nil {
			return nil, err
		}
		r.Replied = replied != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkReplied flags every sent row for link; returns how many changed.
func MarkReplied(ctx context.Context, db *sql.DB, link string) (int64, error) {
	res, err := db.ExecContext(ctx, `
UPDATE send_log
SET replied = 1
WHERE link = ? AND status = ? AND replied = 0;`, link, SendStatusSent)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SentLinks returns the link column of unreplied successful sends; the
// replies poller matches inbox messages against it.
func SentLinks(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
SELECT DISTINCT link
FROM send_log
WHERE status = ? AND replied = 0 AND link != '';`, SendStatusSent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CleanupOldSends drops attempts older than three months.
func CleanupOldSends(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM send_log
WHERE sent_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old sends: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
