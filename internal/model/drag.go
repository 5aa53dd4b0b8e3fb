package model

// Node is something a pointer ray can hit. Pieces are top-level nodes; a
// renderer reports sub-meshes as nodes whose parent chain leads to a piece.
type Node interface {
	Parent() Node
}

// Part is a sub-mesh of a piece, such as a crown or a base.
type Part struct {
	Name  string
	Owner Node
}

func (p Part) Parent() Node { return p.Owner }

// Scene is the rendering collaborator the drag controller consults.
type Scene interface {
	// Intersect returns the nodes under ray, closest first.
	Intersect(ray Ray) []Node
}

// Orbit is the camera control that must stay still while a piece is dragged.
type Orbit interface {
	SetOrbitEnabled(enabled bool)
}

type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// DragController turns pointer events into piece moves on a PositionModel.
type DragController struct {
	model *PositionModel
	scene Scene
	orbit Orbit

	state  DragState
	active *Piece
	origin Square
	offset Vec3
}

func NewDragController(m *PositionModel, scene Scene, orbit Orbit) *DragController {
	return &DragController{model: m, scene: scene, orbit: orbit, origin: NoSquare}
}

func (d *DragController) State() DragState { return d.state }

// Active returns the dragged piece and the square it was lifted from.
// The square is NoSquare for a piece picked up off the board.
func (d *DragController) Active() (*Piece, Square) {
	return d.active, d.origin
}

// PointerDown picks the closest piece under ray and starts dragging it.
// It reports whether a drag started.
func (d *DragController) PointerDown(ray Ray) bool {
	if d.state == Dragging {
		return false
	}
	p := d.pick(ray)
	if p == nil {
		return false
	}
	d.state = Dragging
	d.active = p
	d.origin = p.square
	d.orbit.SetOrbitEnabled(false)
	if anim, ok := d.model.anim.Pending(p); ok {
		d.model.anim.Stop(p)
		// Caught mid-flight: it rests where the flight was headed.
		if !p.OnBoard() {
			p.baseY = anim.To.Y
		}
	}

	if hit, ok := ray.IntersectHorizontal(p.baseY); ok {
		d.offset = hit.Sub(p.position)
	} else {
		d.offset = Vec3{}
	}
	pos := p.position
	pos.Y = p.baseY + d.model.geo.HoverLift
	d.model.setPosition(p, pos)
	return true
}

// PointerMove slides the dragged piece in the plane of its resting height.
func (d *DragController) PointerMove(ray Ray) {
	if d.state != Dragging {
		return
	}
	hit, ok := ray.IntersectHorizontal(d.active.baseY)
	if !ok {
		return
	}
	pos := d.active.position
	pos.X = hit.X - d.offset.X
	pos.Z = hit.Z - d.offset.Z
	d.model.setPosition(d.active, pos)
}

// PointerUp drops the piece on the square under it, or on the table when it
// was released off the board.
func (d *DragController) PointerUp() error {
	if d.state != Dragging {
		return nil
	}
	p := d.active
	var err error
	if sq, ok := d.model.squares.FromWorld(p.position); ok {
		err = d.model.MoveToSquare(p, sq)
	} else {
		d.model.DropOffBoard(p, p.position, DropOptions{})
	}
	d.reset()
	return err
}

// Cancel abandons the drag: the piece drops back to its resting height and
// keeps whatever square it had, returning to that square's center if any.
func (d *DragController) Cancel() {
	if d.state == Dragging {
		p := d.active
		pos := p.position
		pos.Y = p.baseY
		if sq, ok := p.Square(); ok {
			center, _ := d.model.squares.ToWorld(sq)
			pos.X, pos.Z = center.X, center.Z
		}
		d.model.setPosition(p, pos)
	}
	d.reset()
}

func (d *DragController) reset() {
	d.state = Idle
	d.active = nil
	d.origin = NoSquare
	d.offset = Vec3{}
	d.orbit.SetOrbitEnabled(true)
}

// pick walks from the closest hit up to the piece that owns it.
func (d *DragController) pick(ray Ray) *Piece {
	hits := d.scene.Intersect(ray)
	if len(hits) == 0 {
		return nil
	}
	for n := hits[0]; n != nil; n = n.Parent() {
		if p, ok := n.(*Piece); ok && p != nil {
			if _, known := d.model.pieces[p.ID]; known {
				return p
			}
			return nil
		}
	}
	return nil
}
