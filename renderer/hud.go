package renderer

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"
)

// fpsSmoothing is the weight of the newest frame in the displayed rate.
const fpsSmoothing = 0.1

// smoothFPS folds the latest frame interval into an exponential moving
// average of the frame rate.
func smoothFPS(prev float64, interval time.Duration) float64 {
	if interval <= 0 {
		return prev
	}
	fps := float64(time.Second) / float64(interval)
	if prev == 0 {
		return fps
	}
	return prev + fpsSmoothing*(fps-prev)
}

// statusText is the HUD status bar line.
func statusText(frame, agents int, fps, zoom float64) string {
	return fmt.Sprintf("frame %d | %d agents | %.1f fps | zoom %.2fx | wheel: zoom, right drag: pan, R: reset",
		frame, agents, fps, zoom)
}

func pointVec(p orb.Point) r2.Vec {
	return r2.Vec{X: p.X(), Y: p.Y()}
}
