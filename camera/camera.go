// Package camera provides a 2D camera system for viewport control.
package camera

import (
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"
)

// Camera controls the viewport into the arena. The world is unbounded:
// agents may drift outside the arena, so there is no wrapping and the
// camera can be zoomed out past the arena edges.
type Camera struct {
	// Center is the camera center in world coordinates
	Center r2.Vec

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Arena the camera resets to
	Arena orb.Bound

	// Zoom constraints
	MinZoom, MaxZoom float64

	fitZoom float64
}

// New creates a camera centered on the arena, zoomed so the whole arena fits
// the viewport.
func New(viewportW, viewportH float64, arena orb.Bound) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Arena:     arena,
	}
	c.updateLimits()
	c.Reset()
	return c
}

// updateLimits recomputes the fit zoom and the zoom range around it.
func (c *Camera) updateLimits() {
	c.fitZoom = 1
	if w, h := c.Arena.Right()-c.Arena.Left(), c.Arena.Top()-c.Arena.Bottom(); w > 0 && h > 0 {
		c.fitZoom = min(c.ViewportW/w, c.ViewportH/h)
	}
	c.MinZoom = c.fitZoom / 8
	c.MaxZoom = c.fitZoom * 8
	c.Zoom = clamp(c.Zoom, c.MinZoom, c.MaxZoom)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	d := r2.Scale(c.Zoom, r2.Sub(p, c.Center))
	return float32(c.ViewportW/2 + d.X), float32(c.ViewportH/2 + d.Y)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	d := r2.Vec{
		X: (float64(sx) - c.ViewportW/2) / c.Zoom,
		Y: (float64(sy) - c.ViewportH/2) / c.Zoom,
	}
	return r2.Add(c.Center, d)
}

// IsVisible returns true if a point at p with the given world radius could
// be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	return c.VisibleWorldBounds().Pad(radius).Contains(orb.Point{p.X, p.Y})
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() orb.Bound {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return orb.Bound{
		Min: orb.Point{c.Center.X - halfW, c.Center.Y - halfH},
		Max: orb.Point{c.Center.X + halfW, c.Center.Y + halfH},
	}
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateLimits()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Center = r2.Add(c.Center, r2.Vec{X: dx / c.Zoom, Y: dy / c.Zoom})
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera on the arena at the zoom that fits it.
func (c *Camera) Reset() {
	center := c.Arena.Center()
	c.Center = r2.Vec{X: center.X(), Y: center.Y()}
	c.Zoom = c.fitZoom
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
