// Package editor maps the brightness schedule onto a resizable pixel surface
// and turns pointer clicks into point edits.
package editor

import (
	"github.com/hoppxi/brux/internal/schedule"
)

type Point struct {
	X, Y float64
}

// Viewport is the affine mapping between (hour, value) and a W×H pixel
// rectangle. The value axis is inverted so brighter draws nearer the top.
type Viewport struct {
	Width, Height int
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) ToPixel(hour, value float64) Point {
	return Point{
		X: float64(v.Width) * hour / schedule.HoursPerDay,
		Y: float64(v.Height) * (schedule.MaxValue - value) / schedule.MaxValue,
	}
}

// ToLogical is the inverse of ToPixel. The result is not clamped; the curve
// clamps on insert.
func (v Viewport) ToLogical(x, y float64) schedule.HourValue {
	return schedule.HourValue{
		Hour:  schedule.HoursPerDay * x / float64(v.Width),
		Value: schedule.MaxValue * (float64(v.Height) - y) / float64(v.Height),
	}
}
