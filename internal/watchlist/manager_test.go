package watchlist

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, path
}

func TestManager_AddRemove(t *testing.T) {
	m, _ := newTestManager(t)

	added, err := m.Add("", " aapl ")
	if err != nil || !added {
		t.Fatalf("Add = %v, %v", added, err)
	}
	if added, _ := m.Add("default", "AAPL"); added {
		t.Error("duplicate add should report false")
	}
	if _, err := m.Add("tech", "msft"); err != nil {
		t.Fatalf("Add to new group: %v", err)
	}
	if _, err := m.Add("tech", "AAPL"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got, want := m.AllSymbols(), []string{"AAPL", "MSFT"}; !reflect.DeepEqual(got, want) {
		t.Errorf("AllSymbols = %v, want %v", got, want)
	}
	if got, want := m.GroupsOf("aapl"), []string{"default", "tech"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GroupsOf = %v, want %v", got, want)
	}

	removed, err := m.Remove("tech", "AAPL")
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	if removed, _ := m.Remove("tech", "AAPL"); removed {
		t.Error("second remove should report false")
	}
	if _, err := m.Remove("nope", "AAPL"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
	if _, err := m.Add("default", "  "); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestManager_Groups(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.CreateGroup("Energy", "oil and gas"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := m.CreateGroup("energy", ""); !errors.Is(err, ErrGroupExists) {
		t.Errorf("expected ErrGroupExists, got %v", err)
	}
	if err := m.RenameGroup("energy", "commodities"); err != nil {
		t.Fatalf("RenameGroup: %v", err)
	}
	if err := m.RenameGroup("default", "x"); !errors.Is(err, ErrDefaultGroup) {
		t.Errorf("expected ErrDefaultGroup, got %v", err)
	}
	if err := m.DeleteGroup("default"); !errors.Is(err, ErrDefaultGroup) {
		t.Errorf("expected ErrDefaultGroup, got %v", err)
	}

	groups := m.Groups()
	if len(groups) != 2 || groups[0].Name != DefaultGroup || groups[1].Name != "commodities" {
		t.Errorf("unexpected groups: %+v", groups)
	}
	if err := m.DeleteGroup("commodities"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if err := m.DeleteGroup("commodities"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestManager_Persists(t *testing.T) {
	m, path := newTestManager(t)
	if _, err := m.Add("tech", "NVDA"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	syms, err := reloaded.Symbols("tech")
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	if !reflect.DeepEqual(syms, []string{"NVDA"}) {
		t.Errorf("Symbols after reload = %v", syms)
	}
}

func TestManager_GroupsReturnsCopies(t *testing.T) {
	m, _ := newTestManager(t)
	m.Add("", "AAPL")
	groups := m.Groups()
	groups[0].Symbols[0] = "HACKED"
	if syms, _ := m.Symbols(""); syms[0] != "AAPL" {
		t.Errorf("internal state mutated through Groups(): %v", syms)
	}
}

func TestManager_SaveFailureLeavesStateUnchanged(t *testing.T) {
	m, path := newTestManager(t)
	if _, err := m.Add("tech", "AAPL"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	blocker := filepath.Join(filepath.Dir(path), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	m.filePath = filepath.Join(blocker, "watchlist.json")

	if added, err := m.Add("tech", "MSFT"); err == nil || added {
		t.Errorf("Add = %v, %v; want save error", added, err)
	}
	if err := m.CreateGroup("energy", ""); err == nil {
		t.Error("expected save error on CreateGroup")
	}
	if err := m.RenameGroup("tech", "chips"); err == nil {
		t.Error("expected save error on RenameGroup")
	}
	if removed, err := m.Remove("tech", "AAPL"); err == nil || removed {
		t.Errorf("Remove = %v, %v; want save error", removed, err)
	}

	got := m.Groups()
	if len(got) != 2 || got[1].Name != "tech" || !reflect.DeepEqual(got[1].Symbols, []string{"AAPL"}) {
		t.Errorf("state changed after failed saves: %+v", got)
	}
}
