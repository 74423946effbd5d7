// Package schedule holds the 24-hour brightness curve: its control points,
// the wrap-around interpolation over them and their on-disk encoding.
package schedule

import (
	"errors"
	"math"
	"slices"
	"sync"
	"time"
)

const (
	HoursPerDay  = 24.0
	MaxValue     = 100.0
	DefaultValue = MaxValue / 2

	// A secondary click removes every point inside this box around it.
	RemoveHourTolerance  = 0.5
	RemoveValueTolerance = 5.0
)

var (
	ErrEmptyCurve = errors.New("schedule: curve has no control points")
	ErrNotFinite  = errors.New("schedule: hour and value must be finite")
)

// HourValue is one control point: brightness Value (0-100) at Hour (0-24).
type HourValue struct {
	Hour  float64
	Value float64
}

// Curve is the ordered set of control points. It is safe for concurrent use;
// readers always work on a snapshot.
type Curve struct {
	mu     sync.RWMutex
	points []HourValue
}

func NewCurve(points ...HourValue) *Curve {
	c := &Curve{}
	c.Replace(points)
	return c
}

// Add clamps the point into the schedule domain, inserts it and keeps the
// sequence sorted by hour. Points sharing an hour are kept in insertion order.
// NaN and infinite input is refused.
func (c *Curve) Add(hour, value float64) (HourValue, error) {
	if !Finite(hour, value) {
		return HourValue{}, ErrNotFinite
	}
	hv := Clamp(hour, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.points = append(c.points, hv)
	sortByHour(c.points)
	return hv, nil
}

// Remove drops every point within the tolerance box around (hour, value)
// and reports how many were removed.
func (c *Curve) Remove(hour, value float64) int {
	if !Finite(hour, value) {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.points[:0:0]
	for _, p := range c.points {
		if math.Abs(p.Hour-hour) > RemoveHourTolerance || math.Abs(p.Value-value) > RemoveValueTolerance {
			kept = append(kept, p)
		}
	}

	removed := len(c.points) - len(kept)
	c.points = kept
	return removed
}

// Replace swaps the whole point set, clamping and sorting it. Non-finite
// points are dropped.
func (c *Curve) Replace(points []HourValue) {
	next := make([]HourValue, 0, len(points))
	for _, p := range points {
		if !Finite(p.Hour, p.Value) {
			continue
		}
		next = append(next, Clamp(p.Hour, p.Value))
	}
	sortByHour(next)

	c.mu.Lock()
	c.points = next
	c.mu.Unlock()
}

func (c *Curve) Points() []HourValue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.points)
}

func (c *Curve) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.points)
}

// Interpolate returns the scheduled brightness at hour. An empty curve is a
// flat line at DefaultValue.
func (c *Curve) Interpolate(hour float64) float64 {
	return Interpolate(c.Points(), hour)
}

// Interpolate evaluates the closed piecewise-linear curve through points,
// which must be sorted by hour. An hour that hits a control point returns
// that point's value, the first one when several share the hour.
func Interpolate(points []HourValue, hour float64) float64 {
	wrapped, err := Wrap(points)
	if err != nil {
		return DefaultValue
	}

	h := NormalizeHour(hour)
	for _, p := range points {
		if p.Hour == h {
			return p.Value
		}
	}

	for i := 0; i < len(wrapped)-1; i++ {
		a, b := wrapped[i], wrapped[i+1]
		if h < a.Hour || h >= b.Hour {
			continue
		}
		t := (h - a.Hour) / (b.Hour - a.Hour)
		return a.Value + t*(b.Value-a.Value)
	}

	// unreachable for sorted input: the wrap brackets all of [0, 24)
	return DefaultValue
}

// Wrap mirrors the last point one period before the first and the first one
// period after the last, so the curve has no seam at midnight.
func Wrap(points []HourValue) ([]HourValue, error) {
	if len(points) == 0 {
		return nil, ErrEmptyCurve
	}

	first, last := points[0], points[len(points)-1]
	wrapped := make([]HourValue, 0, len(points)+2)
	wrapped = append(wrapped, HourValue{Hour: last.Hour - HoursPerDay, Value: last.Value})
	wrapped = append(wrapped, points...)
	wrapped = append(wrapped, HourValue{Hour: first.Hour + HoursPerDay, Value: first.Value})
	return wrapped, nil
}

// Finite reports whether neither coordinate is NaN or infinite.
func Finite(hour, value float64) bool {
	return !math.IsNaN(hour) && !math.IsInf(hour, 0) && !math.IsNaN(value) && !math.IsInf(value, 0)
}

// Clamp wraps hour into [0, 24) and limits value to [0, 100].
func Clamp(hour, value float64) HourValue {
	return HourValue{
		Hour:  NormalizeHour(hour),
		Value: math.Max(0, math.Min(MaxValue, value)),
	}
}

func NormalizeHour(hour float64) float64 {
	h := math.Mod(hour, HoursPerDay)
	if h < 0 {
		h += HoursPerDay
	}
	if h >= HoursPerDay {
		h = 0
	}
	return h
}

// HourOfDay converts a wall-clock time into a fractional hour.
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func sortByHour(points []HourValue) {
	slices.SortStableFunc(points, func(a, b HourValue) int {
		switch {
		case a.Hour < b.Hour:
			return -1
		case a.Hour > b.Hour:
			return 1
		}
		return 0
	})
}
