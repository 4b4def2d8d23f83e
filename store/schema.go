package store

// schemaSQL is the base DDL. Graphs are stored whole as a msgpack snapshot
// next to the stats columns used for listing.
const schemaSQL = `
-- Graph registry
CREATE TABLE IF NOT EXISTS graphs (
    id TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    text_count INTEGER NOT NULL DEFAULT 0,
    nodes INTEGER NOT NULL DEFAULT 0,
    edges INTEGER NOT NULL DEFAULT 0,
    components INTEGER NOT NULL DEFAULT 0,
    density REAL NOT NULL DEFAULT 0,
    snapshot BLOB NOT NULL
);
`
