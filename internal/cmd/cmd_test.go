package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestClock(t *testing.T) {
	tests := []struct {
		hour float64
		want string
	}{
		{0, "00:00"},
		{6.5, "06:30"},
		{13.25, "13:15"},
		{23.999, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clock(tt.hour))
	}
}

func TestWidgetArg(t *testing.T) {
	assert.Equal(t, "brux", widgetArg(nil))
	assert.Equal(t, "brux-osd", widgetArg([]string{"brux-osd"}))
}

func TestScheduleSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range scheduleCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "add", "remove", "at", "clear", "import", "export"} {
		assert.True(t, names[want], "missing schedule %s", want)
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := newLogger(debug)
		require.NoError(t, err)
		assert.Equal(t, debug, logger.Core().Enabled(zapcore.DebugLevel))
	}
}
