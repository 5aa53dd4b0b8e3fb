package controller

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/boardview-backend/internal/service"
	"github.com/benbeisheim/boardview-backend/internal/ws"
)

type WebSocketController struct {
	boardService *service.BoardService
}

func NewWebSocketController(boardService *service.BoardService) *WebSocketController {
	return &WebSocketController{
		boardService: boardService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	boardID, _ := c.Locals("wsBoardID").(string)
	if boardID == "" {
		boardID = c.Params("boardId")
	}
	viewerID, _ := c.Locals("wsViewerID").(string)

	if err := wsc.boardService.RegisterConnection(boardID, viewerID, c); err != nil {
		log.Printf("Failed to register connection: %v", err)
		sendError(c, err.Error())
		c.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Printf("read error: %v", err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("parse error: %v", err)
			wsc.reply(boardID, viewerID, "malformed message")
			continue
		}

		if err := wsc.handleMessage(boardID, viewerID, msg); err != nil {
			log.Printf("handle error: %v", err)
			wsc.reply(boardID, viewerID, err.Error())
		}
	}

	wsc.boardService.UnregisterConnection(boardID, viewerID)
}

// handleMessage applies one inbound event. Frames produced by it reach the
// viewer through the board's broadcast.
func (wsc *WebSocketController) handleMessage(boardID, viewerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeLoad:
		var p ws.LoadPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if _, err := wsc.boardService.LoadPosition(boardID, p.FEN); err != nil {
			return err
		}
		return wsc.boardService.SendStatus(boardID, viewerID, ws.Status{Message: "Loaded position"})

	case ws.MessageTypePointerDown:
		var p ws.PointerDownPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		_, err := wsc.boardService.PointerDown(boardID, viewerID, p)
		return err

	case ws.MessageTypePointerMove:
		var p ws.PointerMovePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return wsc.boardService.PointerMove(boardID, viewerID, p)

	case ws.MessageTypePointerUp:
		return wsc.boardService.PointerUp(boardID, viewerID)

	case ws.MessageTypeCancel:
		return wsc.boardService.CancelDrag(boardID, viewerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func decode(msg ws.Message, into interface{}) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, into); err != nil {
		return fmt.Errorf("bad %s payload: %w", msg.Type, err)
	}
	return nil
}

// reply reports a failed event to its sender. It goes through the board so
// it never races the board's own writes to the connection.
func (wsc *WebSocketController) reply(boardID, viewerID, errorMsg string) {
	if err := wsc.boardService.SendError(boardID, viewerID, errorMsg); err != nil {
		log.Printf("failed to send error: %v", err)
	}
}

// sendError writes to a connection no board has registered yet.
func sendError(c service.Conn, errorMsg string) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.Status{Message: errorMsg, Error: true})
	if err != nil {
		return
	}
	if err := c.WriteJSON(msg); err != nil {
		log.Printf("failed to send error: %v", err)
	}
}
