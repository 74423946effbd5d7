package watchers

import (
	"slices"
	"sync"

	"github.com/hoppxi/brux/internal/editor"
	"github.com/hoppxi/brux/internal/render"
	"github.com/hoppxi/brux/internal/schedule"
	"github.com/hoppxi/brux/internal/subscribe"
	"go.uber.org/zap"
)

const (
	scheduleImageVar = "BRUX_SCHEDULE_IMAGE"
	brightnessVar    = "BRUX_BRIGHTNESS"
)

// Persister keeps the schedule file in step with the curve. Saves are
// serialised and write the curve as it is when the save runs, never the
// snapshot carried by the change.
type Persister struct {
	Store  *schedule.Store
	Curve  *schedule.Curve
	Logger *zap.Logger
	Status func(error)

	mu   sync.Mutex
	last []schedule.HourValue
}

func NewPersister(store *schedule.Store, curve *schedule.Curve, logger *zap.Logger, status func(error)) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{Store: store, Curve: curve, Logger: logger, Status: status}
}

// Changed is the surface subscriber. Only user edits are saved; reloads and
// view changes are not written back.
func (p *Persister) Changed(c editor.Change) {
	if c.Kind != editor.ChangeEdit {
		return
	}
	if err := p.Save(); err != nil {
		p.Logger.Error("saving schedule failed", zap.String("path", p.Store.Path()), zap.Error(err))
		if p.Status != nil {
			p.Status(err)
		}
	}
}

func (p *Persister) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	points := p.Curve.Points()
	if err := p.Store.Save(points); err != nil {
		return err
	}
	p.last = points
	p.Logger.Debug("schedule saved", zap.String("path", p.Store.Path()), zap.Int("points", len(points)))
	return nil
}

// Reload reads the file into surface unless it is our own last write or
// already matches the curve. It reports whether anything changed.
func (p *Persister) Reload(surface *editor.Surface) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	points, err := p.Store.Load()
	if err != nil {
		return false, err
	}
	if p.last != nil && slices.Equal(points, p.last) {
		return false, nil
	}
	if slices.Equal(points, surface.Curve().Points()) {
		return false, nil
	}
	surface.Load(points)
	p.last = points
	return true, nil
}

// Publish returns a surface subscriber that re-renders the schedule image
// and points the widget at it.
func Publish(r *render.Renderer, output string, eww bool, logger *zap.Logger) func(editor.Change) {
	return func(c editor.Change) {
		if c.Scene.Width <= 0 || c.Scene.Height <= 0 {
			return
		}
		if err := r.WritePNG(c.Scene, output); err != nil {
			logger.Warn("rendering schedule failed", zap.String("output", output), zap.Error(err))
			return
		}
		if eww {
			updateEwwNoJson(scheduleImageVar, output)
		}
	}
}

// PublishBrightness mirrors each applied level into the widget.
func PublishBrightness(res TickResult) {
	updateEww(brightnessVar, map[string]any{
		"hour":   res.Hour,
		"target": res.Target,
		"raw":    res.Desired,
	})
}

// ScheduleFileWatcher reloads the schedule when the file is edited outside
// the daemon.
func ScheduleFileWatcher(p *Persister, surface *editor.Surface, logger *zap.Logger) func(stop <-chan struct{}) {
	return func(stop <-chan struct{}) {
		events, err := subscribe.FileEvents(p.Store.Path(), stop)
		if err != nil {
			logger.Warn("cannot watch schedule file", zap.String("path", p.Store.Path()), zap.Error(err))
			<-stop
			return
		}

		for {
			select {
			case <-stop:
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				changed, err := p.Reload(surface)
				if err != nil {
					logger.Warn("reloading schedule failed", zap.Error(err))
					continue
				}
				if changed {
					logger.Info("schedule reloaded from disk", zap.Int("points", surface.Curve().Len()))
				}
			}
		}
	}
}

// SleepWatcher forces a write after resume, when firmware may have reset
// the backlight.
func SleepWatcher(a *Applier, logger *zap.Logger) func(stop <-chan struct{}) {
	return func(stop <-chan struct{}) {
		events, err := subscribe.SleepEvents(stop)
		if err != nil {
			logger.Warn("cannot watch suspend signals", zap.Error(err))
			<-stop
			return
		}

		for {
			select {
			case <-stop:
				return
			case sleeping, ok := <-events:
				if !ok {
					return
				}
				if !sleeping {
					logger.Info("resumed from suspend, reapplying brightness")
					a.Force()
				}
			}
		}
	}
}
