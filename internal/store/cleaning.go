package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

type CleaningStore struct {
	db *sql.DB
}

func NewCleaningStore(db *sql.DB) *CleaningStore {
	return &CleaningStore{db: db}
}

func scanCleaningTask(scanner interface{ Scan(...any) error }) (*model.CleaningTask, error) {
	var t model.CleaningTask
	var lastDoneBy sql.NullInt64

	err := scanner.Scan(&t.ID, &t.RoomID, &t.Name, &t.Area, &t.IsDone, &lastDoneBy, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastDoneBy.Valid {
		t.LastDoneBy = &lastDoneBy.Int64
	}
	return &t, nil
}

const cleaningCols = `id, room_id, name, area, is_done, last_done_by, updated_at`

func (s *CleaningStore) Create(roomID int64, name, area string) (*model.CleaningTask, error) {
	if name == "" {
		return nil, apperr.Validation("task name is required")
	}

	result, err := s.db.Exec(
		`INSERT INTO cleaning_tasks (room_id, name, area) VALUES (?, ?, ?)`,
		roomID, name, area,
	)
	if err != nil {
		return nil, fmt.Errorf("insert cleaning task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CleaningStore) GetByID(id int64) (*model.CleaningTask, error) {
	row := s.db.QueryRow(`SELECT `+cleaningCols+` FROM cleaning_tasks WHERE id = ?`, id)
	t, err := scanCleaningTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cleaning task: %w", err)
	}
	return t, nil
}

func (s *CleaningStore) ListByRoom(roomID int64) ([]model.CleaningTask, error) {
	rows, err := s.db.Query(
		`SELECT `+cleaningCols+` FROM cleaning_tasks WHERE room_id = ? ORDER BY area ASC, name ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cleaning tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.CleaningTask
	for rows.Next() {
		t, err := scanCleaningTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cleaning task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Toggle flips done state; marking done records who did it.
func (s *CleaningStore) Toggle(id, membershipID int64) (*model.CleaningTask, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.Reference("cleaning task %d not found", id)
	}

	if t.IsDone {
		_, err = s.db.Exec(
			`UPDATE cleaning_tasks SET is_done = 0, updated_at = datetime('now') WHERE id = ?`,
			id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE cleaning_tasks SET is_done = 1, last_done_by = ?, updated_at = datetime('now') WHERE id = ?`,
			membershipID, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle cleaning task: %w", err)
	}
	return s.GetByID(id)
}

func (s *CleaningStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM cleaning_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete cleaning task: %w", err)
	}
	return nil
}
