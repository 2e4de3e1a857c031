// CLAUDE:SUMMARY Append-only SQLite journal of session events for operators; never read back by the search.
package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hazyhaar/feedscan/dbopen"
	"github.com/hazyhaar/feedscan/feedscan/event"
)

// JournalSchema creates the event journal table.
const JournalSchema = `
CREATE TABLE IF NOT EXISTS session_events (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL,
	state       TEXT NOT NULL,
	query       TEXT NOT NULL DEFAULT '',
	page_url    TEXT NOT NULL DEFAULT '',
	item_key    TEXT NOT NULL DEFAULT '',
	snippet     TEXT NOT NULL DEFAULT '',
	tick        INTEGER NOT NULL DEFAULT 0,
	detail      TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id, created_at);
`

// Journal appends events to an SQLite table.
type Journal struct {
	db    *sql.DB
	owned bool
}

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(JournalSchema))
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return &Journal{db: db, owned: true}, nil
}

// NewJournal wraps an already-open database. The schema must be applied.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Send(ctx context.Context, ev event.Event) error {
	_, err := dbopen.Exec(ctx, j.db, `
		INSERT INTO session_events (
			id, session_id, type, state, query, page_url,
			item_key, snippet, tick, detail, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ev.ID, ev.SessionID, string(ev.Type), ev.State, ev.Query, ev.PageURL,
		ev.ItemKey, ev.Snippet, ev.Tick, ev.Detail, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	if j.owned {
		return j.db.Close()
	}
	return nil
}
