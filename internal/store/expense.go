package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

type ExpenseStore struct {
	db *sql.DB
}

func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

func scanExpense(scanner interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	err := scanner.Scan(&e.ID, &e.RoomID, &e.PayerMembershipID, &e.Description, &e.AmountCents, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const expenseCols = `id, room_id, payer_membership_id, description, amount_cents, created_at`

// Split pairs a debtor membership with its share.
type Split struct {
	MembershipID int64
	AmountCents  int64
}

// Create records an expense and its splits in one transaction. Splits must
// sum to the expense amount.
func (s *ExpenseStore) Create(roomID, payerMembershipID int64, description string, amountCents int64, splits []Split) (*model.ExpenseWithSplits, error) {
	if description == "" {
		return nil, apperr.Validation("expense description is required")
	}
	if amountCents <= 0 {
		return nil, apperr.Validation("expense amount must be positive")
	}
	var total int64
	for _, sp := range splits {
		total += sp.AmountCents
	}
	if len(splits) > 0 && total != amountCents {
		return nil, apperr.Validation("splits sum to %d, expense is %d", total, amountCents)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO expenses (room_id, payer_membership_id, description, amount_cents) VALUES (?, ?, ?, ?)`,
		roomID, payerMembershipID, description, amountCents,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	expenseID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, sp := range splits {
		// The payer's own share starts settled.
		settled := 0
		if sp.MembershipID == payerMembershipID {
			settled = 1
		}
		_, err := tx.Exec(
			`INSERT INTO expense_splits (expense_id, membership_id, amount_cents, is_settled) VALUES (?, ?, ?, ?)`,
			expenseID, sp.MembershipID, sp.AmountCents, settled,
		)
		if err != nil {
			return nil, fmt.Errorf("insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(expenseID)
}

func (s *ExpenseStore) GetByID(id int64) (*model.ExpenseWithSplits, error) {
	row := s.db.QueryRow(`SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}

	splits, err := s.listSplits(id)
	if err != nil {
		return nil, err
	}
	return &model.ExpenseWithSplits{Expense: *e, Splits: splits}, nil
}

func (s *ExpenseStore) listSplits(expenseID int64) ([]model.ExpenseSplit, error) {
	rows, err := s.db.Query(
		`SELECT id, expense_id, membership_id, amount_cents, is_settled FROM expense_splits WHERE expense_id = ?`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	defer rows.Close()

	var splits []model.ExpenseSplit
	for rows.Next() {
		var sp model.ExpenseSplit
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.MembershipID, &sp.AmountCents, &sp.IsSettled); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		splits = append(splits, sp)
	}
	return splits, rows.Err()
}

func (s *ExpenseStore) ListByRoom(roomID int64) ([]model.ExpenseWithSplits, error) {
	rows, err := s.db.Query(
		`SELECT `+expenseCols+` FROM expenses WHERE room_id = ? ORDER BY created_at DESC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.ExpenseWithSplits
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, model.ExpenseWithSplits{Expense: *e})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expenses {
		splits, err := s.listSplits(expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Splits = splits
	}
	return expenses, nil
}

// SettleSplit marks a split paid. Settling twice is a conflict.
func (s *ExpenseStore) SettleSplit(splitID int64) error {
	result, err := s.db.Exec(
		`UPDATE expense_splits SET is_settled = 1 WHERE id = ? AND is_settled = 0`,
		splitID,
	)
	if err != nil {
		return fmt.Errorf("settle split: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var exists int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM expense_splits WHERE id = ?`, splitID).Scan(&exists); err != nil {
			return fmt.Errorf("check split: %w", err)
		}
		if exists == 0 {
			return apperr.Reference("split %d not found", splitID)
		}
		return apperr.Conflict("split already settled")
	}
	return nil
}
