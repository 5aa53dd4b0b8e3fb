package store

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("board not found")

// Board is the persisted part of a board: its id and the last notation line
// that loaded successfully.
type Board struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	conn *sql.DB
}

func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		fen TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_boards_updated ON boards(updated_at);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// SaveBoard records fen as the board's current notation, creating the row on
// first save.
func (s *Store) SaveBoard(id, fen string) error {
	_, err := s.conn.Exec(`
		INSERT INTO boards (id, fen) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET fen = excluded.fen, updated_at = CURRENT_TIMESTAMP
	`, id, fen)
	return err
}

func (s *Store) GetBoard(id string) (Board, error) {
	var b Board
	err := s.conn.QueryRow(
		"SELECT id, fen, created_at, updated_at FROM boards WHERE id = ?", id,
	).Scan(&b.ID, &b.FEN, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Board{}, ErrNotFound
	}
	return b, err
}

// ListBoards returns the most recently updated boards first.
func (s *Store) ListBoards(limit int) ([]Board, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.conn.Query(
		"SELECT id, fen, created_at, updated_at FROM boards ORDER BY updated_at DESC, id LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.FEN, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (s *Store) DeleteBoard(id string) error {
	res, err := s.conn.Exec("DELETE FROM boards WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}
