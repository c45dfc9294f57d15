package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

type RoomStore struct {
	db *sql.DB
}

func NewRoomStore(db *sql.DB) *RoomStore {
	return &RoomStore{db: db}
}

func scanRoom(scanner interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	err := scanner.Scan(&r.ID, &r.RoomCode, &r.Name, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const roomCols = `id, room_code, name, created_by, created_at, updated_at`

// generateRoomCode returns a six-character join code.
func generateRoomCode() string {
	return strings.ToUpper(uuid.NewString()[:6])
}

// Create inserts a room and its creator's admin membership in one
// transaction. Retries the join code a few times on the off chance of a
// collision.
func (s *RoomStore) Create(name string, createdBy int64) (*model.Room, *model.Membership, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var roomID int64
	for attempt := 0; ; attempt++ {
		result, err := tx.Exec(
			`INSERT INTO rooms (room_code, name, created_by) VALUES (?, ?, ?)`,
			generateRoomCode(), name, createdBy,
		)
		if err == nil {
			roomID, err = result.LastInsertId()
			if err != nil {
				return nil, nil, fmt.Errorf("last insert id: %w", err)
			}
			break
		}
		if attempt >= 3 {
			return nil, nil, fmt.Errorf("insert room: %w", err)
		}
	}

	result, err := tx.Exec(
		`INSERT INTO room_memberships (user_id, room_id, role) VALUES (?, ?, ?)`,
		createdBy, roomID, model.RoleAdmin,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert creator membership: %w", err)
	}
	membershipID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}

	room, err := s.GetByID(roomID)
	if err != nil {
		return nil, nil, err
	}

	row := s.db.QueryRow(`SELECT `+membershipCols+` FROM room_memberships WHERE id = ?`, membershipID)
	membership, err := scanMembership(row)
	if err != nil {
		return nil, nil, fmt.Errorf("get creator membership: %w", err)
	}
	return room, membership, nil
}

func (s *RoomStore) GetByID(id int64) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) GetByCode(code string) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE room_code = ?`, strings.ToUpper(code))
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room by code: %w", err)
	}
	return r, nil
}

// ListByUser returns rooms where the user holds an active membership.
func (s *RoomStore) ListByUser(userID int64) ([]model.Room, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.room_code, r.name, r.created_by, r.created_at, r.updated_at
		 FROM rooms r
		 JOIN room_memberships m ON m.room_id = r.id
		 WHERE m.user_id = ? AND m.is_active = 1
		 ORDER BY r.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms by user: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

func (s *RoomStore) UpdateName(id int64, name string) (*model.Room, error) {
	result, err := s.db.Exec(
		`UPDATE rooms SET name = ?, updated_at = datetime('now') WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperr.Reference("room %d not found", id)
	}
	return s.GetByID(id)
}
