package alert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockSentinel/internal/model"
)

func ptr(v float64) *float64 { return &v }

func TestRule_Evaluate(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value float64
		prev  *float64
		want  bool
	}{
		{"above hit", Rule{Condition: Above, Threshold: 100}, 100, nil, true},
		{"above miss", Rule{Condition: Above, Threshold: 100}, 99.9, nil, false},
		{"below hit", Rule{Condition: Below, Threshold: 30}, 29, nil, true},
		{"cross within band", Rule{Condition: Cross, Threshold: 100}, 100.5, nil, true},
		{"cross outside band", Rule{Condition: Cross, Threshold: 100}, 105, nil, false},
		{"cross straddled", Rule{Condition: Cross, Threshold: 100}, 110, ptr(90), true},
		{"cross_up needs history", Rule{Condition: CrossUp, Threshold: 70}, 75, nil, false},
		{"cross_up fired", Rule{Condition: CrossUp, Threshold: 70}, 75, ptr(65), true},
		{"cross_up already above", Rule{Condition: CrossUp, Threshold: 70}, 75, ptr(72), false},
		{"cross_down fired", Rule{Condition: CrossDown, Threshold: 30}, 28, ptr(35), true},
		{"cross_down rising", Rule{Condition: CrossDown, Threshold: 30}, 35, ptr(28), false},
	}
	for _, tt := range tests {
		if got := tt.rule.Evaluate(tt.value, tt.prev); got != tt.want {
			t.Errorf("%s: Evaluate = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRule_Validate(t *testing.T) {
	bad := []Rule{
		{Kind: KindPrice, Symbol: "", Condition: Above, Threshold: 1},
		{Kind: KindPrice, Symbol: "A", Condition: CrossUp, Threshold: 1},
		{Kind: KindPrice, Symbol: "A", Condition: Above, Threshold: 0},
		{Kind: KindTechnical, Symbol: "A", Indicator: "volume", Condition: Above},
		{Kind: KindTechnical, Symbol: "A", Indicator: "rsi", Condition: Cross},
		{Kind: "other", Symbol: "A"},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, r)
		}
	}
}

func TestRule_FormatMessage(t *testing.T) {
	r := Rule{Kind: KindPrice, Symbol: "AAPL", Condition: Above, Threshold: 200}
	if msg := r.FormatMessage(201.5); !strings.Contains(msg, "$201.50") || !strings.Contains(msg, "above") {
		t.Errorf("unexpected message: %s", msg)
	}
	r = Rule{Kind: KindTechnical, Symbol: "AAPL", Indicator: "rsi", Condition: CrossDown, Threshold: 30}
	if msg := r.FormatMessage(28); !strings.Contains(msg, "RSI cross down 30.00") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func analysis(symbol string, close, rsi float64) *model.Analysis {
	return &model.Analysis{
		Symbol:     symbol,
		Close:      close,
		Indicators: model.IndicatorSnapshot{RSI: rsi},
		Scores:     model.ScoreBreakdown{Overall: 55},
	}
}

func TestStore_CheckFiresOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	price, err := s.AddPrice("aapl", Above, 150)
	if err != nil {
		t.Fatalf("AddPrice: %v", err)
	}
	if price.ID == "" || price.Symbol != "AAPL" || !price.Active {
		t.Errorf("unexpected rule: %+v", price)
	}
	if _, err := s.AddTechnical("AAPL", "RSI", CrossDown, 30); err != nil {
		t.Fatalf("AddTechnical: %v", err)
	}
	if _, err := s.AddPrice("MSFT", Below, 300); err != nil {
		t.Fatalf("AddPrice: %v", err)
	}

	fired, err := s.Check(analysis("AAPL", 140, 40))
	if err != nil || len(fired) != 0 {
		t.Fatalf("first check fired %v, err %v", fired, err)
	}

	fired, _ = s.Check(analysis("AAPL", 155, 25))
	if len(fired) != 2 {
		t.Fatalf("expected price and rsi alerts to fire, got %+v", fired)
	}
	for _, r := range fired {
		if r.Message == "" || r.TriggeredAt == nil {
			t.Errorf("fired rule missing trigger data: %+v", r)
		}
	}

	if fired, _ := s.Check(analysis("AAPL", 160, 20)); len(fired) != 0 {
		t.Errorf("rules must fire only once, got %+v", fired)
	}
	if got := s.Symbols(); len(got) != 1 || got[0] != "MSFT" {
		t.Errorf("Symbols = %v, want [MSFT]", got)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(reloaded.Triggered(0)); got != 2 {
		t.Errorf("expected 2 triggered after reload, got %d", got)
	}
}

func TestStore_RemoveAndClear(t *testing.T) {
	s, _ := NewStore(filepath.Join(t.TempDir(), "alerts.json"))
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	a, _ := s.AddPrice("A", Above, 10)
	b, _ := s.AddPrice("B", Above, 10)
	c, _ := s.AddPrice("C", Above, 10)

	s.Check(analysis("A", 11, 50))
	s.now = func() time.Time { return base.Add(time.Hour) }
	s.Check(analysis("B", 11, 50))

	triggered := s.Triggered(1)
	if len(triggered) != 1 || triggered[0].ID != b.ID {
		t.Errorf("expected newest triggered first, got %+v", triggered)
	}

	n, err := s.ClearTriggered(base.Add(30 * time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("ClearTriggered = %d, %v", n, err)
	}
	if err := s.Remove(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cleared rule should be gone, got %v", err)
	}
	if err := s.Remove(c.ID); err != nil {
		t.Errorf("Remove: %v", err)
	}
	n, _ = s.ClearTriggered(time.Time{})
	if n != 1 || len(s.Active("")) != 0 {
		t.Errorf("expected everything cleared, removed %d, active %d", n, len(s.Active("")))
	}
}

func TestStore_LoadsTriggeredWithoutTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	raw := `[
  {"id":"old","kind":"price","symbol":"A","condition":"above","threshold":1,"active":true,"triggered":true,"created_at":"2024-01-01T00:00:00Z"},
  {"id":"new","kind":"price","symbol":"B","condition":"above","threshold":1,"active":true,"triggered":true,"created_at":"2024-02-01T00:00:00Z"}
]`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	got := s.Triggered(0)
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("expected newest first by creation time, got %+v", got)
	}
	n, err := s.ClearTriggered(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil || n != 1 {
		t.Errorf("ClearTriggered = %d, %v", n, err)
	}
}

func TestStore_SaveFailureLeavesRulesUnchanged(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewStore(filepath.Join(dir, "alerts.json"))
	kept, err := s.AddPrice("A", Above, 10)
	if err != nil {
		t.Fatalf("AddPrice: %v", err)
	}

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	s.filePath = filepath.Join(blocker, "alerts.json")

	if _, err := s.AddPrice("B", Above, 10); err == nil {
		t.Fatal("expected save error")
	}
	if err := s.Remove(kept.ID); err == nil {
		t.Fatal("expected save error on remove")
	}
	active := s.Active("")
	if len(active) != 1 || active[0].ID != kept.ID {
		t.Errorf("expected only the original rule, got %+v", active)
	}
}
