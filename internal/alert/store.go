package alert

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockSentinel/internal/model"
)

// ErrNotFound is returned when no rule has the requested ID.
var ErrNotFound = errors.New("alert not found")

// Store persists rules to a JSON file. Every mutation is written before it returns.
type Store struct {
	mu       sync.Mutex
	rules    []*Rule
	filePath string
	now      func() time.Time
}

// NewStore loads rules from filePath, starting empty when the file does not exist.
func NewStore(filePath string) (*Store, error) {
	s := &Store{filePath: filePath, now: time.Now}
	data, err := os.ReadFile(filePath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, &s.rules); err != nil {
			return nil, fmt.Errorf("decode alerts %s: %w", filePath, err)
		}
	}
	// Older files may mark a rule triggered without recording when.
	for _, r := range s.rules {
		if r.Triggered && r.TriggeredAt == nil {
			at := r.CreatedAt
			r.TriggeredAt = &at
		}
	}
	return s, nil
}

// AddPrice registers a price alert.
func (s *Store) AddPrice(symbol string, cond Condition, price float64) (Rule, error) {
	return s.add(Rule{Kind: KindPrice, Symbol: symbol, Condition: cond, Threshold: price})
}

// AddTechnical registers an indicator alert.
func (s *Store) AddTechnical(symbol, indicator string, cond Condition, threshold float64) (Rule, error) {
	return s.add(Rule{Kind: KindTechnical, Symbol: symbol, Indicator: strings.ToLower(indicator), Condition: cond, Threshold: threshold})
}

func (s *Store) add(r Rule) (Rule, error) {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	r.ID = uuid.NewString()
	r.Active = true
	r.CreatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, &r)
	if err := s.save(); err != nil {
		s.rules = s.rules[:len(s.rules)-1]
		return Rule{}, err
	}
	return r, nil
}

// Remove deletes a rule by ID.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rules {
		if r.ID == id {
			prev := s.rules
			s.rules = append(append([]*Rule(nil), prev[:i]...), prev[i+1:]...)
			if err := s.save(); err != nil {
				s.rules = prev
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Active lists rules that have not fired yet, optionally for one symbol.
func (s *Store) Active(symbol string) []Rule {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Rule
	for _, r := range s.rules {
		if r.Active && !r.Triggered && (symbol == "" || r.Symbol == symbol) {
			out = append(out, *r)
		}
	}
	return out
}

// Symbols lists the distinct symbols with active rules, sorted.
func (s *Store) Symbols() []string {
	seen := make(map[string]struct{})
	for _, r := range s.Active("") {
		seen[r.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Check evaluates the active rules for a.Symbol, fires those that match and
// records the observed value for the next crossing check. Fired rules are returned.
func (s *Store) Check(a *model.Analysis) ([]Rule, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []Rule
	for _, r := range s.rules {
		if !r.Active || r.Triggered || r.Symbol != a.Symbol {
			continue
		}
		value, ok := r.Observe(a)
		if !ok {
			continue
		}
		if r.Evaluate(value, r.LastValue) {
			r.Triggered = true
			r.TriggeredAt = &now
			r.Value = value
			r.Message = r.FormatMessage(value)
			fired = append(fired, *r)
		}
		v := value
		r.LastValue = &v
		r.CheckedAt = &now
	}
	if err := s.save(); err != nil {
		return fired, err
	}
	return fired, nil
}

// Triggered returns fired rules, newest first, at most limit (all when limit <= 0).
func (s *Store) Triggered(limit int) []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Rule
	for _, r := range s.rules {
		if r.Triggered {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return firedAt(out[i]).After(firedAt(out[j])) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ClearTriggered drops fired rules triggered before cutoff, or all fired rules when cutoff is zero.
// It returns how many were removed.
func (s *Store) ClearTriggered(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.rules
	var kept []*Rule
	removed := 0
	for _, r := range prev {
		if r.Triggered && (cutoff.IsZero() || firedAt(*r).Before(cutoff)) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.rules = kept
	if err := s.save(); err != nil {
		s.rules = prev
		return 0, err
	}
	return removed, nil
}

func firedAt(r Rule) time.Time {
	if r.TriggeredAt == nil {
		return time.Time{}
	}
	return *r.TriggeredAt
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.rules, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}
