package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/benbeisheim/boardview-backend/internal/model"
)

type Config struct {
	Port          string
	DBPath        string
	AllowOrigins  string
	Credentials   bool
	TickRate      int
	MaxFrameDelta time.Duration
	IdleTimeout   time.Duration
	Geometry      model.BoardGeometry
}

// maxTickRate keeps the tick interval well above zero.
const maxTickRate = 1000

// Load parses command line flags. args excludes the program name.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("boardview", flag.ContinueOnError)
	var (
		port        = fs.String("port", "3000", "Server port")
		dbPath      = fs.String("db", "./boards.db", "Database path, empty to keep boards in memory")
		origins     = fs.String("origins", "http://localhost:5173", "Comma separated allowed origins")
		credentials = fs.Bool("credentials", true, "Allow credentialed cross-origin requests")
		tickRate    = fs.Int("tick", 60, "Frame ticks per second")
		maxDelta    = fs.Duration("max-frame-delta", 100*time.Millisecond, "Longest animation step per tick")
		idleTimeout = fs.Duration("idle-timeout", 15*time.Minute, "Unload boards nobody watched for this long, 0 to keep them")
		squareSize  = fs.Float64("square-size", 1, "Edge length of one board square")
		edgePadding = fs.Float64("edge-padding", 1.2, "Board base border around the tiles")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	geo := model.DefaultGeometry()
	geo.SquareSize = *squareSize
	geo.EdgePadding = *edgePadding
	geo.TableLength = geo.BoardSpan() + geo.EdgePadding*8
	geo.TableWidth = geo.TableLength * 0.8

	cfg := Config{
		Port:          *port,
		DBPath:        *dbPath,
		AllowOrigins:  *origins,
		Credentials:   *credentials,
		TickRate:      *tickRate,
		MaxFrameDelta: *maxDelta,
		IdleTimeout:   *idleTimeout,
		Geometry:      geo,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.TickRate <= 0 || c.TickRate > maxTickRate {
		return fmt.Errorf("tick rate must be between 1 and %d, got %d", maxTickRate, c.TickRate)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("idle timeout must not be negative, got %v", c.IdleTimeout)
	}
	if c.Credentials {
		for _, o := range c.Origins() {
			if o == "*" {
				return errors.New("wildcard origin cannot be combined with credentials")
			}
		}
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("board geometry: %w", err)
	}
	return nil
}

func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Origins splits AllowOrigins for the websocket upgrader.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
