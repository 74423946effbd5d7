package operation

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/hoppxi/brux/pkg/displayinfo"
)

type display struct{}

// Display is the exported instance.
var Display display

// SetBrightness sets the screen brightness level, in any form brightnessctl
// accepts ("40%", "+5%", "1200").
func (d *display) SetBrightness(brightness string) error {
	cmd := exec.Command("brightnessctl", "set", brightness)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to set brightness: %w", err)
	}
	return nil
}

const (
	MethodAuto          = "auto"
	MethodLogind        = "logind"
	MethodBrightnessctl = "brightnessctl"
	MethodSysfs         = "sysfs"

	logindBus       = "org.freedesktop.login1"
	logindSession   = "/org/freedesktop/login1/session/auto"
	logindInterface = "org.freedesktop.login1.Session"
)

var ErrOutOfRange = errors.New("brightness out of device range")

// Setter writes a raw brightness value to a backlight device.
type Setter interface {
	SetBrightness(device string, value int) error
}

func NewSetter(method string) (Setter, error) {
	switch method {
	case "", MethodAuto:
		return fallbackSetter{LogindSetter{}, BrightnessctlSetter{}}, nil
	case MethodLogind:
		return LogindSetter{}, nil
	case MethodBrightnessctl:
		return BrightnessctlSetter{}, nil
	case MethodSysfs:
		return SysfsSetter{Root: displayinfo.SysfsRoot}, nil
	}
	return nil, fmt.Errorf("unknown brightness method %q", method)
}

// LogindSetter asks systemd-logind to write the value, which works without
// root for the session owner.
type LogindSetter struct{}

func (LogindSetter) SetBrightness(device string, value int) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(logindBus, dbus.ObjectPath(logindSession))
	err = obj.Call(logindInterface+".SetBrightness", 0, "backlight", device, uint32(value)).Err
	if err != nil {
		return fmt.Errorf("logind SetBrightness %s=%d: %w", device, value, err)
	}
	return nil
}

type BrightnessctlSetter struct{}

func (BrightnessctlSetter) SetBrightness(device string, value int) error {
	cmd := exec.Command("brightnessctl", "--device="+device, "set", strconv.Itoa(value))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("brightnessctl set %s=%d: %w", device, value, err)
	}
	return nil
}

// SysfsSetter writes the brightness file directly; it needs write access
// to the device (udev rule or root).
type SysfsSetter struct {
	Root string
}

func (s SysfsSetter) SetBrightness(device string, value int) error {
	path := filepath.Join(s.Root, device, "brightness")
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type fallbackSetter []Setter

func (f fallbackSetter) SetBrightness(device string, value int) error {
	var errs []error
	for _, s := range f {
		err := s.SetBrightness(device, value)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
