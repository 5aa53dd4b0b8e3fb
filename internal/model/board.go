package model

import (
	"errors"
	"fmt"
)

// BoardGeometry describes the board tiling and the table it stands on.
// All distances are world units; the board is centered on the origin.
type BoardGeometry struct {
	SquareSize    float64 `json:"squareSize"`
	BaseThickness float64 `json:"baseThickness"`
	TileThickness float64 `json:"tileThickness"`
	EdgePadding   float64 `json:"edgePadding"`
	HoverLift     float64 `json:"hoverLift"`
	TableSurfaceY float64 `json:"tableSurfaceY"`
	TableMargin   float64 `json:"tableMargin"`
	TableLength   float64 `json:"tableLength"`
	TableWidth    float64 `json:"tableWidth"`
}

func DefaultGeometry() BoardGeometry {
	g := BoardGeometry{
		SquareSize:    1,
		BaseThickness: 0.25,
		TileThickness: 0.08,
		EdgePadding:   1.2,
		HoverLift:     0.4,
		TableSurfaceY: 0,
		TableMargin:   0.35,
	}
	g.TableLength = g.BoardSpan() + g.EdgePadding*8
	g.TableWidth = g.TableLength * 0.8
	return g
}

// PieceBaseY is the resting height of a piece standing on a tile.
func (g BoardGeometry) PieceBaseY() float64 { return g.BaseThickness + g.TileThickness }

func (g BoardGeometry) BoardSpan() float64 { return g.SquareSize * 8 }

// BaseHalfExtent is the half-width of the board base: tiles plus edge
// padding. Anything within it on both axes counts as on the board footprint
// for off-board placement.
func (g BoardGeometry) BaseHalfExtent() float64 { return g.BoardSpan()/2 + g.EdgePadding }

func (g BoardGeometry) tableHalfX() float64 { return g.TableLength / 2 }

func (g BoardGeometry) tableHalfZ() float64 { return g.TableWidth / 2 }

func (g BoardGeometry) Validate() error {
	if g.SquareSize <= 0 {
		return errors.New("square size must be positive")
	}
	if g.EdgePadding < 0 || g.TableMargin < 0 {
		return errors.New("edge padding and table margin must not be negative")
	}
	ring := g.BaseHalfExtent() + g.TableMargin
	if ring > g.tableHalfX()-g.TableMargin || ring > g.tableHalfZ()-g.TableMargin {
		return fmt.Errorf("table %.2fx%.2f too small for board base %.2f", g.TableLength, g.TableWidth, 2*g.BaseHalfExtent())
	}
	return nil
}
