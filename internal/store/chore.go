package store

import (
	"database/sql"
	"fmt"
	"time"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var freqValue, dayOfWeek sql.NullInt64
	var startDate, lastCompleted sql.NullTime

	err := scanner.Scan(
		&c.ID, &c.RoomID, &c.Name, &c.Description, &c.Frequency, &freqValue,
		&dayOfWeek, &c.Timing, &startDate, &c.ApprovalRequired, &c.PhotoRequired,
		&lastCompleted, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if freqValue.Valid {
		v := int(freqValue.Int64)
		c.FrequencyValue = &v
	}
	if dayOfWeek.Valid {
		v := int(dayOfWeek.Int64)
		c.DayOfWeek = &v
	}
	if startDate.Valid {
		c.StartDate = &startDate.Time
	}
	if lastCompleted.Valid {
		c.LastCompleted = &lastCompleted.Time
	}
	return &c, nil
}

const choreCols = `id, room_id, name, description, frequency, frequency_value, day_of_week, timing, start_date, approval_required, photo_required, last_completed, is_active, created_at, updated_at`

// ChoreParams carries the caller-settable chore fields. last_completed is
// deliberately absent: only the completion workflow moves it.
type ChoreParams struct {
	Name             string
	Description      string
	Frequency        string
	FrequencyValue   *int
	DayOfWeek        *int
	Timing           string
	StartDate        *time.Time
	ApprovalRequired bool
	PhotoRequired    bool
	IsActive         bool
}

func validFrequency(f string) bool {
	switch f {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyCustom:
		return true
	}
	return false
}

func (s *ChoreStore) Create(roomID int64, p ChoreParams) (*model.Chore, error) {
	if p.Name == "" {
		return nil, apperr.Validation("chore name is required")
	}
	if !validFrequency(p.Frequency) {
		return nil, apperr.Validation("unknown frequency %q", p.Frequency)
	}

	result, err := s.db.Exec(
		`INSERT INTO chores (room_id, name, description, frequency, frequency_value, day_of_week, timing, start_date, approval_required, photo_required, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		roomID, p.Name, p.Description, p.Frequency, nullInt(p.FrequencyValue), nullInt(p.DayOfWeek),
		p.Timing, nullTime(p.StartDate), p.ApprovalRequired, p.PhotoRequired, p.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) ListByRoom(roomID int64) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE room_id = ? AND is_active = 1 ORDER BY name ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(id int64, p ChoreParams) (*model.Chore, error) {
	if p.Name == "" {
		return nil, apperr.Validation("chore name is required")
	}
	if !validFrequency(p.Frequency) {
		return nil, apperr.Validation("unknown frequency %q", p.Frequency)
	}

	result, err := s.db.Exec(
		`UPDATE chores
		 SET name = ?, description = ?, frequency = ?, frequency_value = ?, day_of_week = ?,
		     timing = ?, start_date = ?, approval_required = ?, photo_required = ?, is_active = ?,
		     updated_at = datetime('now')
		 WHERE id = ?`,
		p.Name, p.Description, p.Frequency, nullInt(p.FrequencyValue), nullInt(p.DayOfWeek),
		p.Timing, nullTime(p.StartDate), p.ApprovalRequired, p.PhotoRequired, p.IsActive, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperr.Reference("chore %d not found", id)
	}
	return s.GetByID(id)
}

// Delete removes the chore and every dependent record in FK-safe order.
func (s *ChoreStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	steps := []string{
		`DELETE FROM chore_verifications WHERE completion_id IN (SELECT id FROM chore_completions WHERE chore_id = ?)`,
		`DELETE FROM chore_completions WHERE chore_id = ?`,
		`DELETE FROM chore_swap_requests WHERE chore_id = ?`,
		`DELETE FROM chore_assignment_history WHERE chore_id = ?`,
		`DELETE FROM chore_assignments WHERE chore_id = ?`,
		`DELETE FROM chores WHERE id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete chore cascade: %w", err)
		}
	}
	return tx.Commit()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
