package db

import (
	"database/sql"

	"github.com/tgienger/projman/internal/models"
)

// insertProject writes a project row followed by its tasks
func insertProject(tx *sql.Tx, position int, p models.ProjectRecord) error {
	_, err := tx.Exec(`
		INSERT INTO projects (id, position, title, description, next_task_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, position, p.Title, p.Description, p.NextTaskID, p.Created.UTC())
	if err != nil {
		return err
	}

	for i, t := range p.Tasks {
		if err := insertTask(tx, p.ID, i, t); err != nil {
			return err
		}
	}
	return nil
}

// ListProjects returns every stored project with its tasks, in saved order
func (db *DB) ListProjects() ([]models.ProjectRecord, error) {
	rows, err := db.Query(`
		SELECT id, title, description, next_task_id, created_at
		FROM projects ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.ProjectRecord{}
	for rows.Next() {
		var p models.ProjectRecord
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.NextTaskID, &p.Created); err != nil {
			return nil, err
		}
		p.Created = p.Created.Local()
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load tasks for each project
	for i := range projects {
		tasks, err := db.ListTasks(projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Tasks = tasks
	}

	return projects, nil
}
