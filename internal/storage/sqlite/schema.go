package sqlite

// schema is applied on every open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	category    TEXT NOT NULL,
	content     TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	chunk_index INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);

CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	ticket_id      TEXT NOT NULL,
	subject        TEXT NOT NULL,
	category       TEXT NOT NULL,
	escalated      INTEGER NOT NULL,
	retry_count    INTEGER NOT NULL,
	result_json    TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_ticket_id ON runs(ticket_id);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

CREATE TABLE IF NOT EXISTS escalations (
	id                        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp                 TIMESTAMP NOT NULL,
	ticket_id                 TEXT NOT NULL,
	subject                   TEXT NOT NULL,
	description               TEXT NOT NULL,
	category                  TEXT NOT NULL,
	classification_confidence REAL NOT NULL,
	num_drafts                INTEGER NOT NULL,
	num_reviews               INTEGER NOT NULL,
	final_review_score        REAL NOT NULL,
	escalation_reason         TEXT NOT NULL,
	failed_drafts             TEXT NOT NULL,
	reviewer_feedback         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_escalations_ticket_id ON escalations(ticket_id);
`
