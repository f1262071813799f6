package watchlist

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrGroupExists   = errors.New("group already exists")
	ErrGroupNotFound = errors.New("group not found")
	ErrDefaultGroup  = errors.New("default group cannot be changed")
	ErrInvalidName   = errors.New("invalid name")
)

// Manager handles watchlist operations with concurrency safety.
// Every mutation is written to disk before it returns.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func normalizeGroup(group string) string {
	group = strings.ToLower(strings.TrimSpace(group))
	if group == "" {
		return DefaultGroup
	}
	return group
}

// CreateGroup adds an empty group.
func (m *Manager) CreateGroup(name, description string) error {
	name = normalizeGroup(name)
	return m.update(func(st *State) error {
		if _, ok := st.Groups[name]; ok {
			return fmt.Errorf("%w: %s", ErrGroupExists, name)
		}
		st.Groups[name] = &Group{Name: name, Description: description, Symbols: []string{}, CreatedAt: time.Now()}
		return nil
	})
}

// DeleteGroup removes a group and its symbols.
func (m *Manager) DeleteGroup(name string) error {
	name = normalizeGroup(name)
	if name == DefaultGroup {
		return ErrDefaultGroup
	}
	return m.update(func(st *State) error {
		if _, ok := st.Groups[name]; !ok {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, name)
		}
		delete(st.Groups, name)
		return nil
	})
}

// RenameGroup moves a group to a new name.
func (m *Manager) RenameGroup(oldName, newName string) error {
	oldName, newName = normalizeGroup(oldName), normalizeGroup(newName)
	if oldName == DefaultGroup || newName == DefaultGroup {
		return ErrDefaultGroup
	}
	return m.update(func(st *State) error {
		g, ok := st.Groups[oldName]
		if !ok {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, oldName)
		}
		if _, exists := st.Groups[newName]; exists {
			return fmt.Errorf("%w: %s", ErrGroupExists, newName)
		}
		delete(st.Groups, oldName)
		g.Name = newName
		st.Groups[newName] = g
		return nil
	})
}

// Add puts symbol into group. It reports false when the symbol was already there.
// Adding to a missing non-default group creates it.
func (m *Manager) Add(group, symbol string) (bool, error) {
	group, symbol = normalizeGroup(group), normalizeSymbol(symbol)
	if symbol == "" {
		return false, fmt.Errorf("%w: empty symbol", ErrInvalidName)
	}
	added := false
	err := m.update(func(st *State) error {
		g, ok := st.Groups[group]
		if !ok {
			g = &Group{Name: group, Symbols: []string{}, CreatedAt: time.Now()}
			st.Groups[group] = g
		}
		for _, s := range g.Symbols {
			if s == symbol {
				return errUnchanged
			}
		}
		g.Symbols = append(g.Symbols, symbol)
		added = true
		return nil
	})
	return added && err == nil, err
}

// Remove drops symbol from group. It reports false when the symbol was not there.
func (m *Manager) Remove(group, symbol string) (bool, error) {
	group, symbol = normalizeGroup(group), normalizeSymbol(symbol)
	removed := false
	err := m.update(func(st *State) error {
		g, ok := st.Groups[group]
		if !ok {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
		}
		for i, s := range g.Symbols {
			if s == symbol {
				g.Symbols = append(g.Symbols[:i], g.Symbols[i+1:]...)
				removed = true
				return nil
			}
		}
		return errUnchanged
	})
	return removed && err == nil, err
}

// Groups returns a copy of every group, sorted by name with default first.
func (m *Manager) Groups() []Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Group, 0, len(m.state.Groups))
	for _, g := range m.state.Groups {
		cp := *g
		cp.Symbols = append([]string(nil), g.Symbols...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == DefaultGroup || out[j].Name == DefaultGroup {
			return out[i].Name == DefaultGroup
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Symbols returns the symbols of one group.
func (m *Manager) Symbols(group string) ([]string, error) {
	group = normalizeGroup(group)
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.state.Groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}
	return append([]string(nil), g.Symbols...), nil
}

// AllSymbols returns every watched symbol across groups, deduplicated and sorted.
func (m *Manager) AllSymbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	for _, g := range m.state.Groups {
		for _, s := range g.Symbols {
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// GroupsOf lists the groups containing symbol.
func (m *Manager) GroupsOf(symbol string) []string {
	symbol = normalizeSymbol(symbol)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for name, g := range m.state.Groups {
		for _, s := range g.Symbols {
			if s == symbol {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}

// errUnchanged tells update that fn made no change and nothing needs saving.
var errUnchanged = errors.New("unchanged")

// update applies fn to a copy of the state and keeps the copy only once it is on disk.
func (m *Manager) update(fn func(*State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state.clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := SaveState(m.filePath, next); err != nil {
		return err
	}
	m.state = next
	return nil
}
