package player

import (
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/solarlune/resolv"
)

// Hitbox is one live collision rectangle of a player. The rect is in
// camera-relative pixels and is rebuilt every frame from the current move.
type Hitbox struct {
	Rect fighterdata.Rect

	shape          *resolv.ConvexPolygon
	shapeW, shapeH int
}

func (h *Hitbox) set(r fighterdata.Rect) {
	h.Rect = r
	if r.Empty() {
		return
	}
	if h.shape == nil || h.shapeW != r.W || h.shapeH != r.H {
		h.shape = resolv.NewRectangle(float64(r.X), float64(r.Y), float64(r.W), float64(r.H))
		h.shapeW, h.shapeH = r.W, r.H
		return
	}
	h.shape.SetPosition(float64(r.X), float64(r.Y))
}

// Active reports whether the box has area in the current frame.
func (h *Hitbox) Active() bool {
	return !h.Rect.Empty()
}

// Intersects reports whether both boxes are active and overlap.
func (h *Hitbox) Intersects(o *Hitbox) bool {
	if !h.Active() || !o.Active() {
		return false
	}
	return h.shape.Intersection(0, 0, o.shape) != nil
}

// placeHitbox positions a frame-relative box around the sprite center
// (cx, cy). The x offset is mirrored for a player on the right.
func placeHitbox(r fighterdata.Rect, cx, cy int, mirrored bool) fighterdata.Rect {
	if r.Empty() {
		return fighterdata.Rect{}
	}
	ox := r.X
	if mirrored {
		ox = -ox
	}
	return fighterdata.Rect{
		X: cx + ox - r.W/2,
		Y: cy + r.Y - r.H/2,
		W: r.W,
		H: r.H,
	}
}
