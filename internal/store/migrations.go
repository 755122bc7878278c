package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per counting run (live camera or video file)
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			policy TEXT NOT NULL DEFAULT 'positional',
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Repetition events - every count change reported by the tracker
		`CREATE TABLE IF NOT EXISTS rep_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			person INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('jump', 'squat', 'bend')),
			count INTEGER NOT NULL CHECK(count >= 0),
			created_at DATETIME NOT NULL
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rep_events_session_id ON rep_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
