package model

import "math"

const (
	DefaultAnimationDuration = 0.8
	DefaultArcHeight         = 0.25
)

// Animation is an in-flight relocation. Elapsed and Duration are seconds.
type Animation struct {
	Piece     *Piece
	From      Vec3
	To        Vec3
	Elapsed   float64
	Duration  float64
	ArcHeight float64
}

func (a *Animation) progress() float64 {
	if a.Duration <= 0 {
		return 1
	}
	return math.Min(a.Elapsed/a.Duration, 1)
}

func easeOutCubic(t float64) float64 {
	t = clamp(t, 0, 1)
	return 1 - math.Pow(1-t, 3)
}

// Animator advances relocation arcs once per frame. A piece has at most one
// animation; starting another replaces it.
type Animator struct {
	pending []*Animation
}

func NewAnimator() *Animator {
	return &Animator{}
}

// Start begins moving p from wherever it is displayed now to target.
func (a *Animator) Start(p *Piece, target Vec3, duration, arcHeight float64) {
	a.Stop(p)
	a.pending = append(a.pending, &Animation{
		Piece:     p,
		From:      p.position,
		To:        target,
		Duration:  duration,
		ArcHeight: arcHeight,
	})
}

// Stop drops any animation for p, leaving it where it currently is.
func (a *Animator) Stop(p *Piece) {
	for i, anim := range a.pending {
		if anim.Piece == p {
			a.pending = append(a.pending[:i], a.pending[i+1:]...)
			return
		}
	}
}

func (a *Animator) Pending(p *Piece) (Animation, bool) {
	for _, anim := range a.pending {
		if anim.Piece == p {
			return *anim, true
		}
	}
	return Animation{}, false
}

func (a *Animator) Len() int { return len(a.pending) }

func (a *Animator) Clear() { a.pending = nil }

// Advance moves every animation forward by dt seconds and returns the pieces
// whose displayed position changed. Finished pieces land exactly on their
// target and adopt its height as their resting height.
func (a *Animator) Advance(dt float64) []*Piece {
	if len(a.pending) == 0 {
		return nil
	}
	moved := make([]*Piece, 0, len(a.pending))
	kept := a.pending[:0]
	for _, anim := range a.pending {
		anim.Elapsed += dt
		t := anim.progress()
		eased := easeOutCubic(t)
		pos := anim.From.Lerp(anim.To, eased)
		pos.Y += math.Sin(math.Pi*eased) * anim.ArcHeight
		anim.Piece.position = pos
		if t >= 1 {
			anim.Piece.position = anim.To
			anim.Piece.baseY = anim.To.Y
		} else {
			kept = append(kept, anim)
		}
		moved = append(moved, anim.Piece)
	}
	for i := len(kept); i < len(a.pending); i++ {
		a.pending[i] = nil
	}
	a.pending = kept
	return moved
}
