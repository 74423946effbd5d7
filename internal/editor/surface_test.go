package editor

import (
	"image"
	"math"
	"testing"

	"github.com/hoppxi/brux/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportRoundTrip(t *testing.T) {
	vp := Viewport{Width: 600, Height: 200}

	p := vp.ToPixel(6, 75)
	assert.Equal(t, Point{X: 150, Y: 50}, p)

	hv := vp.ToLogical(p.X, p.Y)
	assert.InDelta(t, 6.0, hv.Hour, 1e-9)
	assert.InDelta(t, 75.0, hv.Value, 1e-9)

	assert.Equal(t, Point{X: 0, Y: 200}, vp.ToPixel(0, 0))
	assert.Equal(t, Point{X: 600, Y: 0}, vp.ToPixel(24, 100))
}

func TestBuildSceneEmptyCurveIsFlat(t *testing.T) {
	scene := BuildScene(Viewport{Width: 600, Height: 200}, nil)

	assert.Equal(t, []Point{{X: -5, Y: 100}, {X: 605, Y: 100}}, scene.Polyline)
	require.Len(t, scene.Handles, 2)
	assert.Equal(t, image.Rect(-10, 95, 0, 105), scene.Handles[0])
}

func TestBuildSceneUsesWrappedCurve(t *testing.T) {
	scene := BuildScene(Viewport{Width: 240, Height: 100}, []schedule.HourValue{
		{Hour: 6, Value: 20},
		{Hour: 18, Value: 80},
	})

	assert.Equal(t, []Point{
		{X: -60, Y: 20},
		{X: 60, Y: 80},
		{X: 180, Y: 20},
		{X: 300, Y: 80},
	}, scene.Polyline)
	assert.Len(t, scene.Handles, 4)
	assert.Equal(t, image.Rect(55, 75, 65, 85), scene.Handles[1])
}

func TestBuildSceneWithoutGeometry(t *testing.T) {
	scene := BuildScene(Viewport{}, []schedule.HourValue{{Hour: 1, Value: 1}})
	assert.Empty(t, scene.Polyline)
	assert.Empty(t, scene.Handles)
}

func TestClicksRequireGeometry(t *testing.T) {
	s := NewSurface(nil)

	_, err := s.PrimaryClick(10, 10)
	assert.ErrorIs(t, err, ErrNoGeometry)

	_, err = s.SecondaryClick(10, 10)
	assert.ErrorIs(t, err, ErrNoGeometry)

	_, err = s.UpdateHour(12)
	assert.ErrorIs(t, err, ErrNoGeometry)

	assert.ErrorIs(t, s.Resize(0, 100), ErrInvalidSize)
}

func TestPrimaryClickAddsMappedPoint(t *testing.T) {
	s := NewSurface(nil)
	require.NoError(t, s.Resize(480, 200))

	added, err := s.PrimaryClick(120, 50)
	require.NoError(t, err)
	assert.Equal(t, schedule.HourValue{Hour: 6, Value: 75}, added)
	assert.Equal(t, []schedule.HourValue{{Hour: 6, Value: 75}}, s.Curve().Points())

	scene := s.Scene()
	assert.Len(t, scene.Polyline, 3)
	assert.Equal(t, Point{X: 120, Y: 50}, scene.Polyline[1])
}

func TestSecondaryClickRemovesWithinTolerance(t *testing.T) {
	curve := schedule.NewCurve(
		schedule.HourValue{Hour: 6, Value: 20},
		schedule.HourValue{Hour: 18, Value: 80},
	)
	s := NewSurface(curve)
	require.NoError(t, s.Resize(240, 100))

	// 10px per hour and 1px per value unit: (63, 83) is (6.3h, 17)
	removed, err := s.SecondaryClick(63, 83)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []schedule.HourValue{{Hour: 18, Value: 80}}, curve.Points())

	removed, err = s.SecondaryClick(120, 50)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 1, curve.Len())
}

func TestResizePreservesLogicalPoints(t *testing.T) {
	curve := schedule.NewCurve(
		schedule.HourValue{Hour: 6, Value: 20},
		schedule.HourValue{Hour: 18, Value: 80},
	)
	s := NewSurface(curve)

	require.NoError(t, s.Resize(240, 100))
	before := s.Scene()
	pointsBefore := curve.Points()

	require.NoError(t, s.Resize(480, 300))
	after := s.Scene()

	assert.Equal(t, pointsBefore, curve.Points())
	require.Len(t, after.Polyline, len(before.Polyline))
	for i := range before.Polyline {
		assert.InDelta(t, before.Polyline[i].X*2, after.Polyline[i].X, 1e-9)
		assert.InDelta(t, before.Polyline[i].Y*3, after.Polyline[i].Y, 1e-9)
	}
	assert.Equal(t, 480, after.Width)
	assert.Equal(t, 300, after.Height)
}

func TestUpdateHourMovesCursorAndInterpolates(t *testing.T) {
	curve := schedule.NewCurve(
		schedule.HourValue{Hour: 6, Value: 20},
		schedule.HourValue{Hour: 18, Value: 80},
	)
	s := NewSurface(curve)
	require.NoError(t, s.Resize(600, 200))

	v, err := s.UpdateHour(12)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, v, 1e-9)

	scene := s.Scene()
	require.NotNil(t, scene.Cursor)
	assert.Equal(t, Line{From: Point{X: 300, Y: 0}, To: Point{X: 300, Y: 200}}, *scene.Cursor)

	// survives edits and resizes
	s.AddPoint(3, 10)
	require.NoError(t, s.Resize(1200, 100))
	scene = s.Scene()
	require.NotNil(t, scene.Cursor)
	assert.Equal(t, 600.0, scene.Cursor.From.X)
	assert.Equal(t, 100.0, scene.Cursor.To.Y)
}

func TestSubscribersSeeChangeKinds(t *testing.T) {
	s := NewSurface(nil)

	var kinds []ChangeKind
	var lastPoints []schedule.HourValue
	id := s.Subscribe(func(c Change) {
		kinds = append(kinds, c.Kind)
		lastPoints = c.Points
	})

	require.NoError(t, s.Resize(240, 100))
	_, err := s.PrimaryClick(60, 80)
	require.NoError(t, err)
	_, err = s.UpdateHour(1)
	require.NoError(t, err)
	// same pixel column: no cursor change
	_, err = s.UpdateHour(1.01)
	require.NoError(t, err)
	s.Load([]schedule.HourValue{{Hour: 2, Value: 2}})

	assert.Equal(t, []ChangeKind{ChangeResize, ChangeEdit, ChangeCursor, ChangeReload}, kinds)
	assert.Equal(t, []schedule.HourValue{{Hour: 2, Value: 2}}, lastPoints)

	s.Unsubscribe(id)
	s.Clear()
	assert.Len(t, kinds, 4)
	assert.Zero(t, s.Curve().Len())
}

func TestSecondaryClickNotifiesEvenWhenNothingRemoved(t *testing.T) {
	s := NewSurface(nil)
	require.NoError(t, s.Resize(240, 100))

	edits := 0
	s.Subscribe(func(c Change) {
		if c.Kind == ChangeEdit {
			edits++
		}
	})

	_, err := s.SecondaryClick(10, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, edits)
}

func TestNonFiniteEditsAreRefused(t *testing.T) {
	s := NewSurface(schedule.NewCurve(schedule.HourValue{Hour: 6, Value: 20}))
	require.NoError(t, s.Resize(240, 100))

	notified := 0
	s.Subscribe(func(Change) { notified++ })

	_, err := s.PrimaryClick(math.NaN(), 10)
	assert.ErrorIs(t, err, schedule.ErrNotFinite)
	_, err = s.PrimaryClick(10, math.Inf(-1))
	assert.ErrorIs(t, err, schedule.ErrNotFinite)
	_, err = s.AddPoint(math.Inf(1), 50)
	assert.ErrorIs(t, err, schedule.ErrNotFinite)

	assert.Zero(t, notified)
	assert.Equal(t, []schedule.HourValue{{Hour: 6, Value: 20}}, s.Curve().Points())
}

func TestSceneIsACopy(t *testing.T) {
	s := NewSurface(schedule.NewCurve(schedule.HourValue{Hour: 6, Value: 20}))
	require.NoError(t, s.Resize(240, 100))

	scene := s.Scene()
	scene.Polyline[0] = Point{X: -1, Y: -1}
	assert.NotEqual(t, Point{X: -1, Y: -1}, s.Scene().Polyline[0])
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "edit", ChangeEdit.String())
	assert.Equal(t, "cursor", ChangeCursor.String())
	assert.Equal(t, "ChangeKind(9)", ChangeKind(9).String())
}
