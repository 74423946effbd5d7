package manager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c := &ConfigManager{}
	_, err := c.Load(filepath.Join(t.TempDir(), "brux.yaml"))
	require.NoError(t, err)

	s := c.Settings()
	assert.Equal(t, "auto", s.Method)
	assert.Equal(t, DefaultWidth, s.Width)
	assert.Equal(t, DefaultHeight, s.Height)
	assert.True(t, s.Eww)
	assert.False(t, s.NotifyErrors)
	assert.Equal(t, time.Local, s.Location())
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brux.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schedule:
  file: /tmp/sched.json
display:
  device: intel_backlight
  method: sysfs
  transfer: value ** 2 / 100
surface:
  width: 600
render:
  eww: false
notify:
  errors: true
timezone: Europe/Berlin
`), 0o644))

	c := &ConfigManager{}
	_, err := c.Load(path)
	require.NoError(t, err)

	s := c.Settings()
	assert.Equal(t, "/tmp/sched.json", s.ScheduleFile)
	assert.Equal(t, "intel_backlight", s.Device)
	assert.Equal(t, "sysfs", s.Method)
	assert.Equal(t, "value ** 2 / 100", s.Transfer)
	assert.Equal(t, 600, s.Width)
	assert.Equal(t, DefaultHeight, s.Height)
	assert.False(t, s.Eww)
	assert.True(t, s.NotifyErrors)
	assert.Equal(t, "Europe/Berlin", s.Timezone)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brux.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display: [unclosed"), 0o644))

	c := &ConfigManager{}
	_, err := c.Load(path)
	assert.Error(t, err)
	assert.Equal(t, "auto", c.Settings().Method, "settings fall back to defaults")
}

func TestLocationFallsBack(t *testing.T) {
	assert.Equal(t, time.Local, Settings{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", Settings{Timezone: "UTC"}.Location().String())
}
