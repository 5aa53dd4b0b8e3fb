package service

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/benbeisheim/boardview-backend/internal/model"
	"github.com/benbeisheim/boardview-backend/internal/store"
	"github.com/benbeisheim/boardview-backend/internal/ws"
)

type BoardService struct {
	boardManager *BoardManager
}

func NewBoardService(boardManager *BoardManager) *BoardService {
	return &BoardService{
		boardManager: boardManager,
	}
}

func (bs *BoardService) CreateBoard(fen string) (string, error) {
	boardID := uuid.New().String()

	if _, err := bs.boardManager.CreateBoard(boardID, fen); err != nil {
		return "", fmt.Errorf("failed to create board: %w", err)
	}
	return boardID, nil
}

func (bs *BoardService) ListBoards(limit int) ([]store.Board, error) {
	return bs.boardManager.ListBoards(limit)
}

func (bs *BoardService) DeleteBoard(boardID string) error {
	return bs.boardManager.DeleteBoard(boardID)
}

func (bs *BoardService) GetSnapshot(boardID string) (ws.Snapshot, error) {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return ws.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// LoadPosition replaces the board's position. On a malformed line the board
// is left as it was.
func (bs *BoardService) LoadPosition(boardID, fen string) (ws.Snapshot, error) {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return ws.Snapshot{}, err
	}
	if err := s.Load(fen); err != nil {
		log.Printf("board %s: rejected load %q: %v", boardID, fen, err)
		return ws.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// EditorPlacement is the placement the 2D editor should open with.
func (bs *BoardService) EditorPlacement(boardID string) (string, error) {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return "", err
	}
	return s.EditorPlacement(), nil
}

func (bs *BoardService) ApplyEditor(boardID, placement string) (ws.Snapshot, error) {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return ws.Snapshot{}, err
	}
	if _, err := s.ApplyEditor(placement); err != nil {
		return ws.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// SquareInfo parses square and reports its occupant, if any.
func (bs *BoardService) SquareInfo(boardID, square string) (model.Square, *ws.PieceView, error) {
	sq, err := model.ParseSquare(square)
	if err != nil {
		return model.NoSquare, nil, err
	}
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return model.NoSquare, nil, err
	}
	view, ok := s.SquareInfo(sq)
	if !ok {
		return sq, nil, nil
	}
	return sq, &view, nil
}

func (bs *BoardService) PointerDown(boardID, viewerID string, p ws.PointerDownPayload) (bool, error) {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return false, err
	}
	return s.PointerDown(viewerID, p.Ray, p.Hits), nil
}

func (bs *BoardService) PointerMove(boardID, viewerID string, p ws.PointerMovePayload) error {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return err
	}
	s.PointerMove(viewerID, p.Ray)
	return nil
}

func (bs *BoardService) PointerUp(boardID, viewerID string) error {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return err
	}
	return s.PointerUp(viewerID)
}

func (bs *BoardService) CancelDrag(boardID, viewerID string) error {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return err
	}
	s.CancelDrag(viewerID)
	return nil
}

func (bs *BoardService) RegisterConnection(boardID, viewerID string, conn Conn) error {
	s, err := bs.boardManager.GetBoard(boardID)
	if err != nil {
		return err
	}
	return s.RegisterConnection(viewerID, conn)
}

// UnregisterConnection never reopens a board that was unloaded or deleted.
func (bs *BoardService) UnregisterConnection(boardID, viewerID string) {
	if s, ok := bs.boardManager.liveBoard(boardID); ok {
		s.UnregisterConnection(viewerID)
	}
}

// SendStatus writes a status line to one viewer.
func (bs *BoardService) SendStatus(boardID, viewerID string, status ws.Status) error {
	return bs.send(boardID, viewerID, ws.MessageTypeStatus, status)
}

// SendError reports a failed event to the viewer that sent it.
func (bs *BoardService) SendError(boardID, viewerID, message string) error {
	return bs.send(boardID, viewerID, ws.MessageTypeError, ws.Status{Message: message, Error: true})
}

func (bs *BoardService) send(boardID, viewerID string, t ws.MessageType, payload interface{}) error {
	s, ok := bs.boardManager.liveBoard(boardID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
	}
	return s.Send(viewerID, t, payload)
}
