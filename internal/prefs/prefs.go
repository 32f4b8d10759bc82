package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const (
	fileName       = "prefs.json"
	currentVersion = 1
)

// ErrCorrupt reports an unreadable prefs file. Load still returns defaults.
var ErrCorrupt = errors.New("prefs file corrupt")

// Prefs are per-machine UI preferences.
type Prefs struct {
	Version  int                `json:"version"`
	Theme    string             `json:"theme,omitempty"`
	UserID   string             `json:"user_id,omitempty"`
	Expanded map[string][]int64 `json:"expanded,omitempty"` // hierarchy kind -> expanded ids
}

// ExpandedFor returns the saved expansion of a hierarchy kind.
func (p Prefs) ExpandedFor(kind string) []int64 {
	return p.Expanded[kind]
}

// SetExpanded records the expansion of a hierarchy kind.
func (p *Prefs) SetExpanded(kind string, ids []int64) {
	if p.Expanded == nil {
		p.Expanded = make(map[string][]int64)
	}
	if len(ids) == 0 {
		delete(p.Expanded, kind)
		return
	}
	p.Expanded[kind] = append([]int64(nil), ids...)
}

// Store reads and writes one prefs file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is prefs.json under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "fintree", fileName), nil
}

func (s *Store) Path() string { return s.path }

// Load returns the saved prefs. A missing file yields defaults; a corrupt one
// yields defaults and an error wrapping ErrCorrupt.
func (s *Store) Load() (Prefs, error) {
	def := Prefs{Version: currentVersion}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return def, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return def, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if p.Version == 0 {
		p.Version = currentVersion
	}
	return p, nil
}

// Save writes p atomically.
func (s *Store) Save(p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	p.Version = currentVersion
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Update loads, applies fn and saves. A corrupt file is overwritten.
func (s *Store) Update(fn func(*Prefs)) error {
	p, err := s.Load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	fn(&p)
	return s.Save(p)
}
