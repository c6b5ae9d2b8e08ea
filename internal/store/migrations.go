package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per analyzed exercise set
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			exercise_id TEXT NOT NULL,
			muscle_group TEXT NOT NULL DEFAULT '',
			overall_score TEXT NOT NULL CHECK(overall_score IN ('good', 'needs_improvement', 'poor')),
			video_path TEXT NOT NULL DEFAULT '',
			skeleton_video_path TEXT NOT NULL DEFAULT '',
			frame_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Feedback items in the order the engine produced them
		`CREATE TABLE IF NOT EXISTS feedback_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			aspect TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('ok', 'warning', 'error')),
			message TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_analyses_exercise_id ON analyses(exercise_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_items_analysis_id ON feedback_items(analysis_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
