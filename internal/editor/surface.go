package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hoppxi/brux/internal/schedule"
)

var (
	ErrNoGeometry  = errors.New("editor: surface has not been sized")
	ErrInvalidSize = errors.New("editor: surface size must be positive")
)

type ChangeKind int

const (
	// ChangeEdit is a user edit of the point set; it is the only kind that
	// needs persisting.
	ChangeEdit ChangeKind = iota
	ChangeResize
	ChangeReload
	ChangeCursor
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeEdit:
		return "edit"
	case ChangeResize:
		return "resize"
	case ChangeReload:
		return "reload"
	case ChangeCursor:
		return "cursor"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

type Change struct {
	Kind   ChangeKind
	Points []schedule.HourValue
	Scene  Scene
}

// Surface owns the schedule curve and its current scene. Pointer handlers
// mutate it; the applier only calls UpdateHour.
type Surface struct {
	mu         sync.Mutex
	curve      *schedule.Curve
	viewport   Viewport
	scene      Scene
	cursorHour float64
	hasCursor  bool

	subsMu sync.Mutex
	subs   map[uuid.UUID]func(Change)
	order  []uuid.UUID
}

func NewSurface(curve *schedule.Curve) *Surface {
	if curve == nil {
		curve = schedule.NewCurve()
	}
	return &Surface{
		curve: curve,
		subs:  make(map[uuid.UUID]func(Change)),
	}
}

func (s *Surface) Curve() *schedule.Curve {
	return s.curve
}

func (s *Surface) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Scene returns a copy of the current scene.
func (s *Surface) Scene() Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyScene()
}

func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	s.mu.Lock()
	s.viewport = Viewport{Width: width, Height: height}
	s.rebuild()
	change := s.change(ChangeResize)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// PrimaryClick adds the point under pixel (x, y).
func (s *Surface) PrimaryClick(x, y float64) (schedule.HourValue, error) {
	s.mu.Lock()
	if !s.viewport.Valid() {
		s.mu.Unlock()
		return schedule.HourValue{}, ErrNoGeometry
	}
	target := s.viewport.ToLogical(x, y)
	added, err := s.curve.Add(target.Hour, target.Value)
	if err != nil {
		s.mu.Unlock()
		return schedule.HourValue{}, err
	}
	s.rebuild()
	change := s.change(ChangeEdit)
	s.mu.Unlock()

	s.notify(change)
	return added, nil
}

// SecondaryClick removes every point within tolerance of pixel (x, y). The
// scene is redrawn and subscribers notified even if nothing matched.
func (s *Surface) SecondaryClick(x, y float64) (int, error) {
	s.mu.Lock()
	if !s.viewport.Valid() {
		s.mu.Unlock()
		return 0, ErrNoGeometry
	}
	target := s.viewport.ToLogical(x, y)
	removed := s.curve.Remove(target.Hour, target.Value)
	s.rebuild()
	change := s.change(ChangeEdit)
	s.mu.Unlock()

	s.notify(change)
	return removed, nil
}

func (s *Surface) AddPoint(hour, value float64) (schedule.HourValue, error) {
	s.mu.Lock()
	added, err := s.curve.Add(hour, value)
	if err != nil {
		s.mu.Unlock()
		return schedule.HourValue{}, err
	}
	s.rebuild()
	change := s.change(ChangeEdit)
	s.mu.Unlock()

	s.notify(change)
	return added, nil
}

func (s *Surface) RemovePoint(hour, value float64) int {
	s.mu.Lock()
	removed := s.curve.Remove(hour, value)
	s.rebuild()
	change := s.change(ChangeEdit)
	s.mu.Unlock()

	s.notify(change)
	return removed
}

// Clear drops every point, leaving the flat default schedule.
func (s *Surface) Clear() {
	s.replace(nil, ChangeEdit)
}

// Import replaces the point set as a user edit, so it gets persisted.
func (s *Surface) Import(points []schedule.HourValue) {
	s.replace(points, ChangeEdit)
}

// Load replaces the point set with one read back from storage. Subscribers
// see ChangeReload and must not save it again.
func (s *Surface) Load(points []schedule.HourValue) {
	s.replace(points, ChangeReload)
}

func (s *Surface) replace(points []schedule.HourValue, kind ChangeKind) {
	s.mu.Lock()
	s.curve.Replace(points)
	s.rebuild()
	change := s.change(kind)
	s.mu.Unlock()

	s.notify(change)
}

// UpdateHour moves the time cursor to hour and returns the scheduled
// brightness there. Subscribers hear about it only when the cursor lands on
// a new pixel column.
func (s *Surface) UpdateHour(hour float64) (float64, error) {
	s.mu.Lock()
	if !s.viewport.Valid() {
		s.mu.Unlock()
		return 0, ErrNoGeometry
	}

	hour = schedule.NormalizeHour(hour)
	prev := s.scene.Cursor
	s.cursorHour, s.hasCursor = hour, true
	cursor := CursorAt(s.viewport, hour)
	s.scene.Cursor = &cursor

	moved := prev == nil || prev.From.X != cursor.From.X
	var change Change
	if moved {
		change = s.change(ChangeCursor)
	}
	s.mu.Unlock()

	if moved {
		s.notify(change)
	}
	return s.curve.Interpolate(hour), nil
}

// Subscribe registers fn for every change. Callbacks run on the goroutine
// that made the change, after the surface lock is released.
func (s *Surface) Subscribe(fn func(Change)) uuid.UUID {
	id := uuid.New()

	s.subsMu.Lock()
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.subsMu.Unlock()

	return id
}

func (s *Surface) Unsubscribe(id uuid.UUID) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	delete(s.subs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Surface) notify(change Change) {
	s.subsMu.Lock()
	fns := make([]func(Change), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// rebuild recomputes the scene from the curve. Callers hold s.mu.
func (s *Surface) rebuild() {
	s.scene = BuildScene(s.viewport, s.curve.Points())
	if s.hasCursor && s.viewport.Valid() {
		cursor := CursorAt(s.viewport, s.cursorHour)
		s.scene.Cursor = &cursor
	}
}

// change snapshots the current state. Callers hold s.mu.
func (s *Surface) change(kind ChangeKind) Change {
	return Change{
		Kind:   kind,
		Points: s.curve.Points(),
		Scene:  s.copyScene(),
	}
}

func (s *Surface) copyScene() Scene {
	scene := s.scene
	scene.Polyline = append([]Point(nil), s.scene.Polyline...)
	scene.Handles = append(scene.Handles[:0:0], s.scene.Handles...)
	if s.scene.Cursor != nil {
		cursor := *s.scene.Cursor
		scene.Cursor = &cursor
	}
	return scene
}
