package watchers

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hoppxi/brux/internal/editor"
	"github.com/hoppxi/brux/internal/schedule"
	"github.com/hoppxi/brux/pkg/displayinfo"
	"github.com/hoppxi/brux/pkg/operation"
	"go.uber.org/zap"
)

// ApplyInterval is how often the applier samples the clock.
const ApplyInterval = time.Second

// HourSource resolves the scheduled brightness for an hour of day.
type HourSource interface {
	UpdateHour(hour float64) (float64, error)
}

// Monitor is the brightness capability the applier drives.
type Monitor interface {
	Brightness() (displayinfo.Range, error)
	SetBrightness(value int) error
}

type Stage string

const (
	StageSchedule Stage = "schedule"
	StageRead     Stage = "read"
	StageTransfer Stage = "transfer"
	StageWrite    Stage = "write"
)

// TickError says which step of a tick failed.
type TickError struct {
	Stage Stage
	Err   error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

type TickResult struct {
	Hour    float64
	Target  float64
	Desired int
	Current int
	Written bool
}

// Applier pushes the scheduled brightness to the monitor once per tick. A
// failed tick is reported and skipped; the loop itself never stops on error.
type Applier struct {
	Source  HourSource
	Monitor Monitor
	Now     func() time.Time
	Logger  *zap.Logger
	// Status hears every change between healthy and failing ticks.
	Status func(err error)
	// OnWrite runs after each successful write.
	OnWrite func(TickResult)

	transfer atomic.Pointer[operation.Transfer]
	force    atomic.Bool

	mu      sync.Mutex
	lastErr string
}

func NewApplier(src HourSource, mon Monitor, logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{
		Source:  src,
		Monitor: mon,
		Now:     time.Now,
		Logger:  logger,
	}
}

// SetTransfer swaps the transfer expression; safe while running.
func (a *Applier) SetTransfer(t *operation.Transfer) {
	a.transfer.Store(t)
}

// Force makes the next tick write even if the panel already shows the
// target, e.g. after resume when firmware may have reset it.
func (a *Applier) Force() {
	a.force.Store(true)
}

func (a *Applier) Tick() (TickResult, error) {
	res := TickResult{Hour: schedule.HourOfDay(a.Now())}

	target, err := a.Source.UpdateHour(res.Hour)
	if err != nil {
		return res, &TickError{Stage: StageSchedule, Err: err}
	}
	res.Target = target

	r, err := a.Monitor.Brightness()
	if err != nil {
		return res, &TickError{Stage: StageRead, Err: err}
	}
	res.Current = r.Current

	desired, err := a.transfer.Load().Apply(target, r)
	if err != nil {
		return res, &TickError{Stage: StageTransfer, Err: err}
	}
	res.Desired = desired

	if desired == r.Current && !a.force.Load() {
		return res, nil
	}

	if err := a.Monitor.SetBrightness(desired); err != nil {
		return res, &TickError{Stage: StageWrite, Err: err}
	}
	a.force.Store(false)
	res.Written = true
	return res, nil
}

// Run ticks every ApplyInterval until stop is closed.
func (a *Applier) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(ApplyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.handle(a.Tick())
		}
	}
}

func (a *Applier) handle(res TickResult, err error) {
	if err != nil {
		if errors.Is(err, editor.ErrNoGeometry) {
			a.Logger.Debug("no schedule geometry yet, skipping tick")
		} else {
			a.Logger.Warn("brightness tick failed",
				zap.Float64("hour", res.Hour),
				zap.Error(err),
			)
		}
	} else if res.Written {
		a.Logger.Info("brightness applied",
			zap.Float64("hour", res.Hour),
			zap.Float64("target", res.Target),
			zap.Int("from", res.Current),
			zap.Int("to", res.Desired),
		)
		if a.OnWrite != nil {
			a.OnWrite(res)
		}
	}

	a.report(err)
}

// report forwards err to Status only when the health state changes.
func (a *Applier) report(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	a.mu.Lock()
	changed := msg != a.lastErr
	a.lastErr = msg
	a.mu.Unlock()

	if changed && a.Status != nil {
		a.Status(err)
	}
}
