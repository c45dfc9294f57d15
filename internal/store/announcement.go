package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

type AnnouncementStore struct {
	db *sql.DB
}

func NewAnnouncementStore(db *sql.DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

func scanAnnouncement(scanner interface{ Scan(...any) error }) (*model.Announcement, error) {
	var a model.Announcement
	err := scanner.Scan(&a.ID, &a.RoomID, &a.MembershipID, &a.Title, &a.Body, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const announcementCols = `id, room_id, membership_id, title, body, created_at, updated_at`

func (s *AnnouncementStore) Create(roomID, membershipID int64, title, body string) (*model.Announcement, error) {
	if title == "" {
		return nil, apperr.Validation("announcement title is required")
	}

	result, err := s.db.Exec(
		`INSERT INTO announcements (room_id, membership_id, title, body) VALUES (?, ?, ?, ?)`,
		roomID, membershipID, title, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert announcement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AnnouncementStore) GetByID(id int64) (*model.Announcement, error) {
	row := s.db.QueryRow(`SELECT `+announcementCols+` FROM announcements WHERE id = ?`, id)
	a, err := scanAnnouncement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return a, nil
}

func (s *AnnouncementStore) ListByRoom(roomID int64) ([]model.Announcement, error) {
	rows, err := s.db.Query(
		`SELECT `+announcementCols+` FROM announcements WHERE room_id = ? ORDER BY created_at DESC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []model.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, *a)
	}
	return announcements, rows.Err()
}

// Update edits an announcement. Only the author may edit.
func (s *AnnouncementStore) Update(id, membershipID int64, title, body string) (*model.Announcement, error) {
	if title == "" {
		return nil, apperr.Validation("announcement title is required")
	}

	a, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.Reference("announcement %d not found", id)
	}
	if a.MembershipID != membershipID {
		return nil, apperr.Authorization("only the author may edit an announcement")
	}

	_, err = s.db.Exec(
		`UPDATE announcements SET title = ?, body = ?, updated_at = datetime('now') WHERE id = ?`,
		title, body, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes an announcement. The author or a room admin may delete;
// the admin check is the handler's job via the membership store.
func (s *AnnouncementStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}
