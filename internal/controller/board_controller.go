package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/boardview-backend/internal/model"
	"github.com/benbeisheim/boardview-backend/internal/service"
)

type BoardController struct {
	boardService *service.BoardService
}

func NewBoardController(boardService *service.BoardService) *BoardController {
	return &BoardController{boardService: boardService}
}

type loadRequest struct {
	FEN string `json:"fen"`
}

type editorRequest struct {
	Placement string `json:"placement"`
}

func (bc *BoardController) CreateBoard(c *fiber.Ctx) error {
	var req loadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, err)
		}
	}

	boardID, err := bc.boardService.CreateBoard(req.FEN)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Board created",
		"board_id": boardID,
	})
}

func (bc *BoardController) ListBoards(c *fiber.Ctx) error {
	boards, err := bc.boardService.ListBoards(c.QueryInt("limit", 100))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"boards": boards})
}

func (bc *BoardController) DeleteBoard(c *fiber.Ctx) error {
	if err := bc.boardService.DeleteBoard(c.Params("boardId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Board deleted"})
}

func (bc *BoardController) GetBoard(c *fiber.Ctx) error {
	snapshot, err := bc.boardService.GetSnapshot(c.Params("boardId"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(snapshot)
}

func (bc *BoardController) LoadPosition(c *fiber.Ctx) error {
	var req loadRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	snapshot, err := bc.boardService.LoadPosition(c.Params("boardId"), req.FEN)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(snapshot)
}

func (bc *BoardController) GetPlacement(c *fiber.Ctx) error {
	placement, err := bc.boardService.EditorPlacement(c.Params("boardId"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"placement": placement})
}

func (bc *BoardController) ApplyEditor(c *fiber.Ctx) error {
	var req editorRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err)
	}

	snapshot, err := bc.boardService.ApplyEditor(c.Params("boardId"), req.Placement)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(snapshot)
}

func (bc *BoardController) GetSquare(c *fiber.Ctx) error {
	sq, piece, err := bc.boardService.SquareInfo(c.Params("boardId"), c.Params("square"))
	if err != nil {
		return serviceError(c, err)
	}

	resp := fiber.Map{
		"square":   sq,
		"occupied": piece != nil,
	}
	if piece != nil {
		resp["piece"] = piece
	}
	return c.JSON(resp)
}

func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidNotation), errors.Is(err, model.ErrSquareOutOfRange):
		return errorResponse(c, fiber.StatusBadRequest, err)
	case errors.Is(err, service.ErrBoardNotFound):
		return errorResponse(c, fiber.StatusNotFound, err)
	}
	log.Printf("request %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to process board request",
	})
}

func errorResponse(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
