package database

// migrations is an ordered list of SQL migration groups. Each entry is a slice
// of SQL statements that are executed together in a single transaction. The
// version number is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: catalog storage
	{
		`CREATE TABLE resources (
			resource_type TEXT NOT NULL,
			id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (resource_type, id)
		)`,
		`CREATE INDEX idx_resources_created ON resources(resource_type, created_at)`,

		`CREATE TABLE attribute_values (
			resource_type TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT,
			PRIMARY KEY (resource_type, resource_id, name),
			FOREIGN KEY (resource_type, resource_id) REFERENCES resources(resource_type, id) ON DELETE CASCADE
		)`,

		`CREATE TABLE relationship_links (
			from_type TEXT NOT NULL,
			from_id TEXT NOT NULL,
			relationship TEXT NOT NULL,
			to_type TEXT NOT NULL,
			to_id TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (from_type, from_id, relationship, to_type, to_id),
			FOREIGN KEY (from_type, from_id) REFERENCES resources(resource_type, id) ON DELETE CASCADE
		)`,
		`CREATE INDEX idx_links_from ON relationship_links(from_type, from_id, relationship, position)`,
		`CREATE INDEX idx_links_to ON relationship_links(to_type, to_id)`,

		`CREATE TABLE id_counters (
			resource_type TEXT PRIMARY KEY,
			value INTEGER NOT NULL DEFAULT 0
		)`,
	},
}
