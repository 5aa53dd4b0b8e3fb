package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/benbeisheim/boardview-backend/internal/model"
	"github.com/benbeisheim/boardview-backend/internal/store"
)

// PositionStore keeps the last notation loaded on each board.
type PositionStore interface {
	SaveBoard(id, fen string) error
	GetBoard(id string) (store.Board, error)
	ListBoards(limit int) ([]store.Board, error)
	DeleteBoard(id string) error
}

type BoardManager struct {
	boards        map[string]*Session
	store         PositionStore
	geometry      model.BoardGeometry
	tickInterval  time.Duration
	maxFrameDelta time.Duration
	idleTimeout   time.Duration
	mu            sync.RWMutex
}

// NewBoardManager creates an empty manager. st may be nil, in which case
// boards live only in memory. Boards nobody has watched for idleTimeout are
// dropped from memory; zero keeps them forever.
func NewBoardManager(geo model.BoardGeometry, st PositionStore, tickInterval, maxFrameDelta, idleTimeout time.Duration) *BoardManager {
	return &BoardManager{
		boards:        make(map[string]*Session),
		store:         st,
		geometry:      geo,
		tickInterval:  tickInterval,
		maxFrameDelta: maxFrameDelta,
		idleTimeout:   idleTimeout,
	}
}

// Run advances every board once per tick and sweeps idle boards until ctx
// is done.
func (bm *BoardManager) Run(ctx context.Context) {
	ticker := time.NewTicker(bm.tickInterval)
	defer ticker.Stop()

	var sweep <-chan time.Time
	if bm.idleTimeout > 0 {
		sweeper := time.NewTicker(bm.idleTimeout / 2)
		defer sweeper.Stop()
		sweep = sweeper.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.TickAll()
		case now := <-sweep:
			bm.SweepIdle(now)
		}
	}
}

func (bm *BoardManager) TickAll() {
	for _, s := range bm.sessions() {
		s.Tick()
	}
}

// SweepIdle drops boards without viewers or activity for the idle timeout.
// Persisted boards come back from the store on the next request.
func (bm *BoardManager) SweepIdle(now time.Time) int {
	if bm.idleTimeout <= 0 {
		return 0
	}
	removed := 0
	for _, s := range bm.sessions() {
		if s.Idle(now, bm.idleTimeout) {
			log.Printf("board %s idle, unloading", s.ID)
			bm.RemoveBoard(s.ID)
			removed++
		}
	}
	return removed
}

func (bm *BoardManager) sessions() []*Session {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return maps.Values(bm.boards)
}

// CreateBoard registers a new board under boardID showing fen.
func (bm *BoardManager) CreateBoard(boardID, fen string) (*Session, error) {
	bm.mu.RLock()
	_, exists := bm.boards[boardID]
	bm.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrBoardExists, boardID)
	}

	s := NewSession(boardID, bm.geometry, bm.maxFrameDelta)
	if err := s.Load(fen); err != nil {
		return nil, err
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if _, exists := bm.boards[boardID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrBoardExists, boardID)
	}
	s.onLoad = func(fen string) { bm.persist(boardID, fen) }
	bm.persist(boardID, s.fen)
	bm.boards[boardID] = s
	return s, nil
}

// GetBoard returns the live session for boardID, reopening it from the
// store when it is not in memory.
func (bm *BoardManager) GetBoard(boardID string) (*Session, error) {
	if s, ok := bm.liveBoard(boardID); ok {
		return s, nil
	}
	if bm.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}

	saved, err := bm.store.GetBoard(boardID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("restoring board %s from store", boardID)
	s, err := bm.CreateBoard(boardID, saved.FEN)
	if errors.Is(err, ErrBoardExists) {
		// Another request restored it first.
		return bm.GetBoard(boardID)
	}
	return s, err
}

func (bm *BoardManager) liveBoard(boardID string) (*Session, bool) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	s, ok := bm.boards[boardID]
	return s, ok
}

// RemoveBoard drops the live session and disconnects its viewers. The
// stored notation is kept. It reports whether the board was live.
func (bm *BoardManager) RemoveBoard(boardID string) bool {
	bm.mu.Lock()
	s, exists := bm.boards[boardID]
	delete(bm.boards, boardID)
	bm.mu.Unlock()

	if exists {
		s.Close()
	}
	return exists
}

// DeleteBoard removes the board from memory and from the store.
func (bm *BoardManager) DeleteBoard(boardID string) error {
	live := bm.RemoveBoard(boardID)
	if bm.store == nil {
		if !live {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
		}
		return nil
	}
	err := bm.store.DeleteBoard(boardID)
	if errors.Is(err, store.ErrNotFound) {
		if live {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	return err
}

// ListBoards returns stored boards, most recently updated first. Without a
// store it lists the live boards by id.
func (bm *BoardManager) ListBoards(limit int) ([]store.Board, error) {
	if bm.store != nil {
		return bm.store.ListBoards(limit)
	}

	sessions := bm.sessions()
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	boards := make([]store.Board, 0, len(sessions))
	for _, s := range sessions {
		boards = append(boards, store.Board{ID: s.ID, FEN: s.FEN()})
	}
	return boards, nil
}

func (bm *BoardManager) Len() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return len(bm.boards)
}

// persist records fen for boardID. Failures are logged; the live board is
// already updated.
func (bm *BoardManager) persist(boardID, fen string) {
	if bm.store == nil {
		return
	}
	if err := bm.store.SaveBoard(boardID, fen); err != nil {
		log.Printf("failed to save board %s: %v", boardID, err)
	}
}
