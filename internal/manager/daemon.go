package manager

import (
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hoppxi/brux/internal/editor"
	"github.com/hoppxi/brux/internal/render"
	"github.com/hoppxi/brux/internal/schedule"
	"github.com/hoppxi/brux/internal/watchers"
	"github.com/hoppxi/brux/pkg/displayinfo"
	"github.com/hoppxi/brux/pkg/operation"
	"go.uber.org/zap"
)

var errNotStarted = errors.New("daemon not started")

// Daemon owns the single editor surface and everything hanging off it.
// IPC handlers are the only writers; the applier only reads.
type Daemon struct {
	Settings  Settings
	Surface   *editor.Surface
	Store     *schedule.Store
	Persister *watchers.Persister
	Applier   *watchers.Applier
	Logger    *zap.Logger
}

// unavailableMonitor stands in when no backlight could be opened, so the
// schedule stays editable and every tick reports why nothing is written.
type unavailableMonitor struct{ err error }

func (m unavailableMonitor) Brightness() (displayinfo.Range, error) {
	return displayinfo.Range{}, m.err
}

func (m unavailableMonitor) SetBrightness(int) error { return m.err }

// NewDaemon loads the schedule, opens the monitor and wires the surface
// subscribers. Nothing runs until the watchers are started.
func NewDaemon(s Settings, logger *zap.Logger) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store := schedule.NewStore(s.ScheduleFile)
	points, err := store.Load()
	if err != nil {
		logger.Warn("schedule unreadable, starting empty", zap.String("path", store.Path()), zap.Error(err))
	}
	surface := editor.NewSurface(schedule.NewCurve(points...))

	status := &watchers.StatusReporter{Eww: s.Eww, Notify: s.NotifyErrors, Logger: logger}
	persister := watchers.NewPersister(store, surface.Curve(), logger, status.Report)
	surface.Subscribe(persister.Changed)
	if s.RenderOutput != "" {
		surface.Subscribe(watchers.Publish(render.New(), s.RenderOutput, s.Eww, logger))
	}

	var mon watchers.Monitor
	m, err := operation.OpenMonitor(s.Device, s.Method)
	if err != nil {
		logger.Error("no usable backlight", zap.String("device", s.Device), zap.Error(err))
		mon = unavailableMonitor{err: err}
	} else {
		logger.Info("monitor opened",
			zap.String("device", m.Backlight.Name),
			zap.String("technology", m.Technology()),
		)
		mon = m
	}

	transfer, err := operation.NewTransfer(s.Transfer)
	if err != nil {
		return nil, err
	}

	applier := watchers.NewApplier(surface, mon, logger)
	applier.SetTransfer(transfer)
	loc := s.Location()
	applier.Now = func() time.Time { return time.Now().In(loc) }
	applier.Status = status.Report
	if s.Eww {
		applier.OnWrite = watchers.PublishBrightness
	}

	width, height := s.Width, s.Height
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	if err := surface.Resize(width, height); err != nil {
		return nil, err
	}

	return &Daemon{
		Settings:  s,
		Surface:   surface,
		Store:     store,
		Persister: persister,
		Applier:   applier,
		Logger:    logger,
	}, nil
}

// Watchers returns the loops the manager supervises for this daemon.
func (d *Daemon) Watchers() []func(stop <-chan struct{}) {
	ws := []func(stop <-chan struct{}){
		d.Applier.Run,
		watchers.ScheduleFileWatcher(d.Persister, d.Surface, d.Logger),
		watchers.SleepWatcher(d.Applier, d.Logger),
	}
	if d.Settings.Eww {
		ws = append(ws, watchers.DisplayWatcher(d.Settings.Device))
	}
	return ws
}

// Reconfigure applies settings that can change without a restart.
func (d *Daemon) Reconfigure(s Settings) {
	if s.Transfer == d.Settings.Transfer {
		return
	}
	t, err := operation.NewTransfer(s.Transfer)
	if err != nil {
		d.Logger.Warn("ignoring transfer change", zap.Error(err))
		return
	}
	d.Applier.SetTransfer(t)
	d.Applier.Force()
	d.Settings.Transfer = s.Transfer
	d.Logger.Info("transfer updated", zap.String("expr", t.String()))
}

func (d *Daemon) openWidgets() {
	if !d.Settings.Eww {
		return
	}
	if err := exec.Command("eww", "open-many", "brux", "brux-osd").Run(); err != nil {
		d.Logger.Warn("failed to open widgets", zap.Error(err))
	}
}

// Handle runs one schedule command and returns the reply line.
func (d *Daemon) Handle(command string) string {
	if d == nil {
		return reply("", errNotStarted)
	}

	verb, rest, _ := strings.Cut(strings.TrimSpace(command), " ")
	rest = strings.TrimSpace(rest)

	msg, err := d.dispatch(strings.ToUpper(verb), rest)
	if err != nil {
		d.Logger.Debug("ipc command failed", zap.String("command", verb), zap.Error(err))
	}
	return reply(msg, err)
}

func (d *Daemon) dispatch(verb, rest string) (string, error) {
	switch verb {
	case "LIST":
		data, err := schedule.Encode(d.Surface.Curve().Points())
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "ADD":
		h, v, err := parsePair(rest)
		if err != nil {
			return "", err
		}
		p, err := d.Surface.AddPoint(h, v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("added %s", formatPoint(p)), nil

	case "REMOVE":
		h, v, err := parsePair(rest)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("removed %d", d.Surface.RemovePoint(h, v)), nil

	case "AT":
		h, err := parseFinite(rest)
		if err != nil {
			return "", fmt.Errorf("bad hour %q", rest)
		}
		return strconv.FormatFloat(d.Surface.Curve().Interpolate(h), 'f', 2, 64), nil

	case "CLEAR":
		d.Surface.Clear()
		return "cleared", nil

	case "LOAD":
		points, err := schedule.Decode([]byte(rest))
		if err != nil {
			return "", err
		}
		d.Surface.Import(points)
		return fmt.Sprintf("loaded %d points", len(points)), nil

	case "CLICK":
		button, coords, _ := strings.Cut(rest, " ")
		x, y, err := parsePair(coords)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(button) {
		case "primary":
			p, err := d.Surface.PrimaryClick(x, y)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("added %s", formatPoint(p)), nil
		case "secondary":
			n, err := d.Surface.SecondaryClick(x, y)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("removed %d", n), nil
		default:
			return "", fmt.Errorf("unknown button %q", button)
		}

	case "RESIZE":
		w, h, err := parsePair(rest)
		if err != nil {
			return "", err
		}
		if err := d.Surface.Resize(int(w), int(h)); err != nil {
			return "", err
		}
		return fmt.Sprintf("resized %dx%d", int(w), int(h)), nil

	default:
		return "", fmt.Errorf("unknown command %q", verb)
	}
}

func (d *Daemon) summary() string {
	return fmt.Sprintf("running, %d points", d.Surface.Curve().Len())
}

func parsePair(s string) (float64, float64, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want 2 numbers, got %q", s)
	}
	a, err := parseFinite(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad number %q", fields[0])
	}
	b, err := parseFinite(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad number %q", fields[1])
	}
	return a, b, nil
}

// parseFinite is strconv.ParseFloat without inf and NaN.
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, schedule.ErrNotFinite
	}
	return f, nil
}

func formatPoint(p schedule.HourValue) string {
	return fmt.Sprintf("[%s,%s]",
		strconv.FormatFloat(p.Hour, 'f', -1, 64),
		strconv.FormatFloat(p.Value, 'f', -1, 64),
	)
}

func reply(msg string, err error) string {
	if err != nil {
		return "ERR: " + err.Error()
	}
	return "OK: " + msg
}
