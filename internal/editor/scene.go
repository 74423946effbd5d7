package editor

import (
	"image"
	"math"

	"github.com/hoppxi/brux/internal/schedule"
)

const (
	HandleRadius = 5
	// the flat default line overhangs both edges so no end cap is visible
	flatOverhang = 5
)

type Line struct {
	From, To Point
}

// Scene is everything the surface draws, recomputed from the curve on every
// mutation. Renderers only read it.
type Scene struct {
	Width, Height int
	Polyline      []Point
	Handles       []image.Rectangle
	Cursor        *Line
}

// BuildScene lays out the wrapped curve in vp. An empty schedule draws a flat
// line at half height.
func BuildScene(vp Viewport, points []schedule.HourValue) Scene {
	scene := Scene{Width: vp.Width, Height: vp.Height}
	if !vp.Valid() {
		return scene
	}

	wrapped, err := schedule.Wrap(points)
	if err != nil {
		mid := float64(vp.Height) / 2
		scene.Polyline = []Point{
			{X: -flatOverhang, Y: mid},
			{X: float64(vp.Width) + flatOverhang, Y: mid},
		}
	} else {
		scene.Polyline = make([]Point, 0, len(wrapped))
		for _, hv := range wrapped {
			scene.Polyline = append(scene.Polyline, vp.ToPixel(hv.Hour, hv.Value))
		}
	}

	scene.Handles = make([]image.Rectangle, 0, len(scene.Polyline))
	for _, p := range scene.Polyline {
		scene.Handles = append(scene.Handles, handleAt(p))
	}
	return scene
}

// CursorAt is the vertical time cursor for hour, snapped to a whole pixel
// column.
func CursorAt(vp Viewport, hour float64) Line {
	x := math.Trunc(vp.ToPixel(hour, 0).X)
	return Line{
		From: Point{X: x, Y: 0},
		To:   Point{X: x, Y: float64(vp.Height)},
	}
}

func handleAt(p Point) image.Rectangle {
	x, y := int(math.Round(p.X)), int(math.Round(p.Y))
	return image.Rect(x-HandleRadius, y-HandleRadius, x+HandleRadius, y+HandleRadius)
}
