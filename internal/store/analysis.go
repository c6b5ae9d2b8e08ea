package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/liftlens/internal/technique"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps List when the caller passes no positive limit.
const DefaultListLimit = 50

// Analysis is one stored technique analysis with its ordered feedback.
type Analysis struct {
	ID                string
	ExerciseID        string
	MuscleGroup       string
	Result            technique.Result
	VideoPath         string
	SkeletonVideoPath string
	FrameCount        int
	CreatedAt         time.Time
}

// AnalysisRepository provides CRUD operations for analyses.
type AnalysisRepository struct {
	db *sql.DB
}

// Analyses returns the analysis repository for this store.
func (s *Store) Analyses() *AnalysisRepository {
	return &AnalysisRepository{db: s.db}
}

// Create inserts an analysis and its feedback items in a single transaction.
func (r *AnalysisRepository) Create(a *Analysis) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO analyses (id, exercise_id, muscle_group, overall_score, video_path, skeleton_video_path, frame_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ExerciseID, a.MuscleGroup, string(a.Result.Overall),
		a.VideoPath, a.SkeletonVideoPath, a.FrameCount, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO feedback_items (analysis_id, position, aspect, status, message)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range a.Result.Feedback {
		if _, err := stmt.Exec(a.ID, i, item.Aspect, string(item.Status), item.Message); err != nil {
			return fmt.Errorf("insert feedback item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves an analysis with its feedback items.
func (r *AnalysisRepository) GetByID(id string) (*Analysis, error) {
	a := &Analysis{}
	var overall string

	err := r.db.QueryRow(
		`SELECT id, exercise_id, muscle_group, overall_score, video_path, skeleton_video_path, frame_count, created_at
		 FROM analyses WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.ExerciseID, &a.MuscleGroup, &overall, &a.VideoPath, &a.SkeletonVideoPath, &a.FrameCount, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a.Result.Overall = technique.Score(overall)
	if a.Result.Feedback, err = r.feedback(id); err != nil {
		return nil, err
	}
	return a, nil
}

// List retrieves the most recent analyses, newest first. An empty exerciseID
// lists every exercise.
func (r *AnalysisRepository) List(exerciseID string, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, exercise_id, muscle_group, overall_score, video_path, skeleton_video_path, frame_count, created_at
		 FROM analyses
		 WHERE (? = '' OR exercise_id = ?)
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		exerciseID, exerciseID, limit,
	)
	if err != nil {
		return nil, err
	}

	var analyses []*Analysis
	for rows.Next() {
		a := &Analysis{}
		var overall string

		err := rows.Scan(&a.ID, &a.ExerciseID, &a.MuscleGroup, &overall, &a.VideoPath, &a.SkeletonVideoPath, &a.FrameCount, &a.CreatedAt)
		if err != nil {
			rows.Close()
			return nil, err
		}

		a.Result.Overall = technique.Score(overall)
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The store runs on a single connection, so the cursor must be released
	// before the feedback queries below.
	rows.Close()

	for _, a := range analyses {
		if a.Result.Feedback, err = r.feedback(a.ID); err != nil {
			return nil, err
		}
	}

	return analyses, nil
}

// SetSkeletonVideo records the rendered skeleton video for an analysis.
func (r *AnalysisRepository) SetSkeletonVideo(id, path string) error {
	result, err := r.db.Exec(`UPDATE analyses SET skeleton_video_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an analysis and, by cascade, its feedback items.
func (r *AnalysisRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *AnalysisRepository) feedback(analysisID string) ([]technique.FeedbackItem, error) {
	rows, err := r.db.Query(
		`SELECT aspect, status, message FROM feedback_items
		 WHERE analysis_id = ? ORDER BY position`,
		analysisID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []technique.FeedbackItem{}
	for rows.Next() {
		var item technique.FeedbackItem
		var status string
		if err := rows.Scan(&item.Aspect, &status, &item.Message); err != nil {
			return nil, err
		}
		item.Status = technique.Severity(status)
		items = append(items, item)
	}

	return items, rows.Err()
}
