package schedule

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const DefaultFileName = ".brux"

// MarshalJSON encodes a point as a two element [hour, value] array.
func (hv HourValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{hv.Hour, hv.Value})
}

func (hv *HourValue) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("schedule: point must be [hour, value]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("schedule: point must have 2 elements, got %d", len(pair))
	}
	hv.Hour, hv.Value = pair[0], pair[1]
	return nil
}

// Encode serialises points as a JSON list of [hour, value] pairs.
func Encode(points []HourValue) ([]byte, error) {
	if points == nil {
		points = []HourValue{}
	}
	return json.Marshal(points)
}

func Decode(data []byte) ([]HourValue, error) {
	var points []HourValue
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, err
	}
	kept := points[:0]
	for _, p := range points {
		if Finite(p.Hour, p.Value) {
			kept = append(kept, Clamp(p.Hour, p.Value))
		}
	}
	sortByHour(kept)
	return kept, nil
}

// Store persists the point list in a single user-scoped file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

func (s *Store) Path() string {
	return s.path
}

// Load always returns a usable (possibly empty) point list. A missing,
// unreadable or corrupt file is reported through err.
func (s *Store) Load() ([]HourValue, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []HourValue{}, nil
		}
		return []HourValue{}, fmt.Errorf("read schedule %s: %w", s.path, err)
	}

	points, err := Decode(data)
	if err != nil {
		return []HourValue{}, fmt.Errorf("parse schedule %s: %w", s.path, err)
	}
	return points, nil
}

// Save writes through a temp file in the same directory and renames it over
// the target, so watchers never see a half-written schedule.
func (s *Store) Save(points []HourValue) error {
	data, err := Encode(points)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create schedule dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp schedule: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write schedule: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close schedule: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace schedule %s: %w", s.path, err)
	}
	return nil
}
