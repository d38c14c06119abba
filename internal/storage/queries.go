package storage

const (
	queryCreateEntriesTable = `CREATE TABLE IF NOT EXISTS entries (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (namespace, key)
	)`

	queryCreateIndexEntriesUpdated = `CREATE INDEX IF NOT EXISTS idx_entries_updated ON entries(updated_at)`

	queryUpsertEntry = `INSERT INTO entries (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	querySelectEntry = `SELECT value FROM entries WHERE namespace = ? AND key = ?`

	queryDeleteEntry = `DELETE FROM entries WHERE namespace = ? AND key = ?`

	querySelectNamespaceKeys = `SELECT key FROM entries WHERE namespace = ? ORDER BY key`
)
