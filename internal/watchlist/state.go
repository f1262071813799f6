package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultGroup always exists and cannot be deleted or renamed.
const DefaultGroup = "default"

// Group is a named list of symbols.
type Group struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Symbols     []string  `json:"symbols"`
	CreatedAt   time.Time `json:"created_at"`
}

// State is the persisted watchlist document.
type State struct {
	Groups    map[string]*Group `json:"groups"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func newState() *State {
	return &State{Groups: map[string]*Group{
		DefaultGroup: {Name: DefaultGroup, Symbols: []string{}, CreatedAt: time.Now()},
	}}
}

func (s *State) clone() *State {
	out := &State{Groups: make(map[string]*Group, len(s.Groups)), UpdatedAt: s.UpdatedAt}
	for name, g := range s.Groups {
		cp := *g
		cp.Symbols = append([]string{}, g.Symbols...)
		out.Groups[name] = &cp
	}
	return out
}

// LoadState reads the watchlist from a JSON file. Returns a fresh state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return newState(), nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode watchlist %s: %w", filePath, err)
	}
	if state.Groups == nil {
		state.Groups = map[string]*Group{}
	}
	if _, ok := state.Groups[DefaultGroup]; !ok {
		state.Groups[DefaultGroup] = &Group{Name: DefaultGroup, Symbols: []string{}, CreatedAt: time.Now()}
	}
	return &state, nil
}

// SaveState writes the watchlist to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
