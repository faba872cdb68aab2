package player

import (
	"github.com/automoto/duelcore/shared/fighterdata"
	"github.com/automoto/duelcore/shared/netconfig"
)

// Renderer draws sprites. It is implemented by the presentation layer.
type Renderer interface {
	DrawSprite(texture string, src, dst fighterdata.Rect, flip bool)
}

// Sprite is the draw data for the player's current frame.
type Sprite struct {
	Texture string
	Src     fighterdata.Rect
	Dst     fighterdata.Rect
	Flip    bool
}

// Sprite returns where and what to draw. Frames wider or taller than the
// first frame of their move grow toward the opponent and upward; the base
// box used for hitboxes is unchanged.
func (p *Player) Sprite() Sprite {
	frame := p.fighter.Move(p.currentMove).Frames[p.currentFrame]
	dst := fighterdata.Rect{
		X: p.x,
		Y: p.y - (p.h - p.fighter.Height),
		W: p.w,
		H: p.h,
	}
	flip := p.side == netconfig.SideRight
	if flip {
		dst.X -= p.w - p.fighter.Width
	}
	return Sprite{
		Texture: p.fighter.SpriteSheet,
		Src:     frame.Src,
		Dst:     dst,
		Flip:    flip,
	}
}

// Draw hands the current sprite to r.
func (p *Player) Draw(r Renderer) {
	s := p.Sprite()
	r.DrawSprite(s.Texture, s.Src, s.Dst, s.Flip)
}
