package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tgienger/projman/internal/models"
)

// insertTask writes one task row of the given project
func insertTask(tx *sql.Tx, projectID, position int, t models.TaskRecord) error {
	assignee := sql.NullString{String: t.Assignee, Valid: t.Assignee != ""}
	_, err := tx.Exec(`
		INSERT INTO tasks (project_id, id, position, description, priority, state, assignee, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, projectID, t.ID, position, t.Description, t.Priority.String(), t.State.String(), assignee, t.LastUpdated.UTC())
	return err
}

// ListTasks returns the tasks of a project in saved order
func (db *DB) ListTasks(projectID int) ([]models.TaskRecord, error) {
	rows, err := db.Query(`
		SELECT id, description, priority, state, assignee, updated_at
		FROM tasks
		WHERE project_id = ?
		ORDER BY position
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.TaskRecord{}
	for rows.Next() {
		var (
			t         models.TaskRecord
			priority  string
			state     string
			assignee  sql.NullString
			updatedAt time.Time
		)
		if err := rows.Scan(&t.ID, &t.Description, &priority, &state, &assignee, &updatedAt); err != nil {
			return nil, err
		}
		if t.Priority, err = models.ParsePriority(priority); err != nil {
			return nil, fmt.Errorf("task %d of project %d: %w", t.ID, projectID, err)
		}
		if t.State, err = models.ParseTaskState(state); err != nil {
			return nil, fmt.Errorf("task %d of project %d: %w", t.ID, projectID, err)
		}
		t.Assignee = assignee.String
		t.LastUpdated = updatedAt.Local()
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
