package watchers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hoppxi/brux/internal/editor"
	"github.com/hoppxi/brux/internal/render"
	"github.com/hoppxi/brux/internal/schedule"
	"github.com/hoppxi/brux/pkg/displayinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ewwRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *ewwRecorder) record(args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, strings.Join(args, " "))
	return nil
}

func recordEww(t *testing.T) *ewwRecorder {
	t.Helper()
	rec := &ewwRecorder{}
	prev := ewwUpdate
	ewwUpdate = rec.record
	t.Cleanup(func() { ewwUpdate = prev })
	return rec
}

func newPersistedSurface(t *testing.T) (*editor.Surface, *Persister) {
	t.Helper()
	store := schedule.NewStore(filepath.Join(t.TempDir(), ".brux"))
	surface := editor.NewSurface(nil)
	p := NewPersister(store, surface.Curve(), zap.NewNop(), nil)
	surface.Subscribe(p.Changed)
	return surface, p
}

func TestPersistSavesOnlyEdits(t *testing.T) {
	surface, p := newPersistedSurface(t)

	require.NoError(t, surface.Resize(240, 100))
	surface.Load([]schedule.HourValue{{Hour: 1, Value: 1}})
	_, err := os.Stat(p.Store.Path())
	assert.True(t, os.IsNotExist(err), "resize and reload must not save")

	_, err = surface.AddPoint(6, 20)
	require.NoError(t, err)
	points, err := p.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, []schedule.HourValue{{Hour: 1, Value: 1}, {Hour: 6, Value: 20}}, points)
}

func TestPersistReportsSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	store := schedule.NewStore(filepath.Join(blocker, ".brux"))
	var reported error
	p := NewPersister(store, schedule.NewCurve(), zap.NewNop(), func(err error) { reported = err })

	p.Changed(editor.Change{Kind: editor.ChangeEdit})
	assert.Error(t, reported)
}

func TestPersistWritesCurrentCurveNotEventSnapshot(t *testing.T) {
	surface, p := newPersistedSurface(t)
	_, err := surface.AddPoint(6, 20)
	require.NoError(t, err)

	// a late notification carrying an older snapshot
	p.Changed(editor.Change{Kind: editor.ChangeEdit, Points: nil})

	points, err := p.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, surface.Curve().Points(), points)
}

func TestConcurrentEditsLeaveFileMatchingCurve(t *testing.T) {
	for round := 0; round < 50; round++ {
		surface, p := newPersistedSurface(t)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _ = surface.AddPoint(float64(i*3), float64(10*i))
			}(i)
		}
		wg.Wait()

		points, err := p.Store.Load()
		require.NoError(t, err)
		require.Len(t, points, 8)
		require.Equal(t, surface.Curve().Points(), points, "round %d", round)
	}
}

func TestReloadSchedule(t *testing.T) {
	store := schedule.NewStore(filepath.Join(t.TempDir(), ".brux"))
	surface := editor.NewSurface(nil)
	p := NewPersister(store, surface.Curve(), zap.NewNop(), nil)

	changed, err := p.Reload(surface)
	require.NoError(t, err)
	assert.False(t, changed, "missing file is an empty schedule")

	require.NoError(t, store.Save([]schedule.HourValue{{Hour: 7, Value: 30}}))
	changed, err = p.Reload(surface)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []schedule.HourValue{{Hour: 7, Value: 30}}, surface.Curve().Points())

	changed, err = p.Reload(surface)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(store.Path(), []byte("garbage"), 0o644))
	_, err = p.Reload(surface)
	assert.Error(t, err)
	assert.Equal(t, 1, surface.Curve().Len(), "corrupt file leaves the schedule alone")
}

func TestReloadIgnoresOwnWrite(t *testing.T) {
	surface, p := newPersistedSurface(t)
	_, err := surface.AddPoint(6, 20)
	require.NoError(t, err)

	// the curve moves on before the watcher sees the earlier save
	surface.Load([]schedule.HourValue{{Hour: 6, Value: 20}, {Hour: 18, Value: 80}})

	changed, err := p.Reload(surface)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, surface.Curve().Len())
}

func TestPublishRendersAndUpdatesWidget(t *testing.T) {
	rec := recordEww(t)
	output := filepath.Join(t.TempDir(), "schedule.png")

	surface := editor.NewSurface(nil)
	surface.Subscribe(Publish(render.New(), output, true, zap.NewNop()))
	require.NoError(t, surface.Resize(240, 100))

	_, err := os.Stat(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"update BRUX_SCHEDULE_IMAGE=" + output}, rec.calls)
}

func TestPublishBrightness(t *testing.T) {
	rec := recordEww(t)
	PublishBrightness(TickResult{Hour: 12, Target: 50, Desired: 480})

	require.Len(t, rec.calls, 1)
	assert.True(t, strings.HasPrefix(rec.calls[0], "update BRUX_BRIGHTNESS={"))
	assert.Contains(t, rec.calls[0], `"raw":480`)
}

func TestStatusReporter(t *testing.T) {
	rec := recordEww(t)

	var notes []string
	prev := notify
	notify = func(text string) error {
		notes = append(notes, text)
		return nil
	}
	t.Cleanup(func() { notify = prev })

	s := &StatusReporter{Eww: true, Notify: true, Logger: zap.NewNop()}
	s.Report(errors.New("write: denied"))
	s.Report(nil)

	assert.Equal(t, []string{
		`update BRUX_STATUS={"ok":false,"message":"write: denied"}`,
		`update BRUX_STATUS={"ok":true,"message":""}`,
	}, rec.calls)
	assert.Equal(t, []string{"brux: write: denied"}, notes)
}

func TestPublishDisplayInfoSkipsMissingDevice(t *testing.T) {
	rec := recordEww(t)
	prev := displayinfo.SysfsRoot
	t.Cleanup(func() { displayinfo.SysfsRoot = prev })

	displayinfo.SysfsRoot = t.TempDir()
	assert.False(t, publishDisplayInfo(""))
	assert.Empty(t, rec.calls)

	dir := filepath.Join(displayinfo.SysfsRoot, "intel_backlight")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte("480\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte("960\n"), 0o644))

	assert.True(t, publishDisplayInfo("intel_backlight"))
	require.Len(t, rec.calls, 1)
	assert.True(t, strings.HasPrefix(rec.calls[0], "update DISPLAY_INFO={"))
	assert.NotContains(t, rec.calls[0], "null")
}
