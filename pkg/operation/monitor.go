package operation

import (
	"fmt"

	"github.com/hoppxi/brux/pkg/displayinfo"
)

// Monitor pairs a backlight reader with a setter. It is the only capability
// the schedule applier depends on.
type Monitor struct {
	Backlight *displayinfo.Backlight
	Setter    Setter
}

// OpenMonitor finds the backlight device (first one if name is empty) and
// binds it to the given write method.
func OpenMonitor(name, method string) (*Monitor, error) {
	device, err := displayinfo.Find(displayinfo.SysfsRoot, name)
	if err != nil {
		return nil, err
	}
	setter, err := NewSetter(method)
	if err != nil {
		return nil, err
	}
	return &Monitor{Backlight: device, Setter: setter}, nil
}

func (m *Monitor) Brightness() (displayinfo.Range, error) {
	return m.Backlight.Brightness()
}

func (m *Monitor) SetBrightness(value int) error {
	r, err := m.Backlight.Brightness()
	if err != nil {
		return err
	}
	if value < r.Min || value > r.Max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, value, r.Min, r.Max)
	}
	return m.Setter.SetBrightness(m.Backlight.Name, value)
}

func (m *Monitor) Description() string {
	return m.Backlight.Description()
}

func (m *Monitor) Technology() string {
	return m.Backlight.Technology()
}
