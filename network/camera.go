package network

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/automoto/duelcore/config"
)

// CameraPan eases the stage scroll toward the server's PAN_CAMERA value
// instead of snapping to it.
type CameraPan struct {
	tween  *gween.Tween
	value  float32
	target int32
}

// Reset jumps straight to x.
func (c *CameraPan) Reset(x int32) {
	c.tween = nil
	c.value = float32(x)
	c.target = x
}

// Target starts easing toward x from the current value.
func (c *CameraPan) Target(x int32) {
	if x == c.target && c.tween != nil {
		return
	}
	c.target = x
	if float32(x) == c.value {
		c.tween = nil
		return
	}
	c.tween = gween.New(c.value, float32(x), config.Client.CameraPanDuration, ease.OutQuad)
}

// Update advances the tween and returns the pan to use this frame.
func (c *CameraPan) Update(dt float64) int {
	if c.tween != nil {
		v, done := c.tween.Update(float32(dt))
		c.value = v
		if done {
			c.tween = nil
			c.value = float32(c.target)
		}
	}
	return int(math.Round(float64(c.value)))
}

// Active reports whether a pan is in progress.
func (c *CameraPan) Active() bool {
	return c.tween != nil
}
