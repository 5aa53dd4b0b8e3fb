package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/boardview-backend/internal/config"
	"github.com/benbeisheim/boardview-backend/internal/controller"
	"github.com/benbeisheim/boardview-backend/internal/middleware"
	"github.com/benbeisheim/boardview-backend/internal/service"
	"github.com/benbeisheim/boardview-backend/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	// Without a db path boards only live as long as the process.
	var positions service.PositionStore
	if cfg.DBPath != "" {
		st, err := store.New(cfg.DBPath)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()
		positions = st
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Viewer-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: cfg.Credentials,
	}))

	// Initialize services
	boardManager := service.NewBoardManager(cfg.Geometry, positions, cfg.TickInterval(), cfg.MaxFrameDelta, cfg.IdleTimeout)
	boardService := service.NewBoardService(boardManager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go boardManager.Run(ctx)

	// Initialize controllers
	boardController := controller.NewBoardController(boardService)
	wsController := controller.NewWebSocketController(boardService)

	// WebSocket routes
	app.Use("/ws/*", middleware.EnsureViewerID())
	app.Get("/ws/board/:boardId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.Origins(),
	}))

	// REST routes
	app.Get("/api/boards", boardController.ListBoards)
	boards := app.Group("/api/board")
	boards.Post("/create", boardController.CreateBoard)
	boards.Delete("/:boardId", boardController.DeleteBoard)
	boards.Get("/:boardId", boardController.GetBoard)
	boards.Post("/:boardId/load", boardController.LoadPosition)
	boards.Get("/:boardId/placement", boardController.GetPlacement)
	boards.Post("/:boardId/editor", boardController.ApplyEditor)
	boards.Get("/:boardId/squares/:square", boardController.GetSquare)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
