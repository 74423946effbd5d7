package displayinfo

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// SysfsRoot is where the kernel exposes backlight devices.
var SysfsRoot = "/sys/class/backlight"

var ErrNoBacklight = errors.New("no backlight devices found")

// Range is a device reading in raw units, like the (min, current, max)
// triple of a DDC/CI monitor.
type Range struct {
	Min     int `json:"min"`
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Percent maps Current onto 0-100.
func (r Range) Percent() int {
	if r.Max <= r.Min {
		return 0
	}
	percent := int(float64(r.Current-r.Min) / float64(r.Max-r.Min) * 100.0)
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	return percent
}

// FromPercent converts a 0-100 level to the nearest raw value.
func (r Range) FromPercent(p float64) int {
	p = math.Max(0, math.Min(100, p))
	return int(math.Round(float64(r.Min) + p*float64(r.Max-r.Min)/100))
}

type DisplayInfo struct {
	Device     string `json:"device"`
	Technology string `json:"technology"`
	Level      int    `json:"level"`
	Range      Range  `json:"range"`
}

// Backlight is one device under SysfsRoot.
type Backlight struct {
	Name string
	Path string
}

// Find returns the named device, or the first one when name is empty.
func Find(root, name string) (*Backlight, error) {
	if name != "" {
		path := filepath.Join(root, name)
		if _, err := os.Stat(filepath.Join(path, "max_brightness")); err != nil {
			return nil, fmt.Errorf("backlight %s: %w", name, err)
		}
		return &Backlight{Name: name, Path: path}, nil
	}

	paths, err := filepath.Glob(filepath.Join(root, "*"))
	if err != nil || len(paths) == 0 {
		return nil, ErrNoBacklight
	}

	device := paths[0]
	return &Backlight{Name: filepath.Base(device), Path: device}, nil
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	return strconv.Atoi(s)
}

// Brightness reads (0, brightness, max_brightness).
func (b *Backlight) Brightness() (Range, error) {
	current, err := readInt(filepath.Join(b.Path, "brightness"))
	if err != nil {
		return Range{}, err
	}

	maxVal, err := readInt(filepath.Join(b.Path, "max_brightness"))
	if err != nil {
		return Range{}, err
	}

	if maxVal <= 0 {
		return Range{}, errors.New("invalid max_brightness value")
	}

	return Range{Min: 0, Current: current, Max: maxVal}, nil
}

func (b *Backlight) Description() string {
	return b.Name
}

// Technology is the kernel's control type: raw, platform or firmware.
func (b *Backlight) Technology() string {
	data, err := os.ReadFile(filepath.Join(b.Path, "type"))
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}

func GetDisplayInfo(name string) (*DisplayInfo, error) {
	device, err := Find(SysfsRoot, name)
	if err != nil {
		return nil, err
	}

	r, err := device.Brightness()
	if err != nil {
		return nil, err
	}

	return &DisplayInfo{
		Device:     device.Description(),
		Technology: device.Technology(),
		Level:      r.Percent(),
		Range:      r,
	}, nil
}

func GetDisplayInfoJSON(name string) ([]byte, error) {
	info, err := GetDisplayInfo(name)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(info, "", "  ")
}
