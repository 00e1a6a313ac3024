package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/tracesift/internal/domain"
)

const patternsFileVersion = 1

// PatternStore persists error patterns across runs so repeated failures can
// be told apart from new ones
type PatternStore struct {
	mu       sync.RWMutex
	path     string
	clock    clock.Clock
	patterns map[string]*StoredPattern
}

// StoredPattern represents a persisted error pattern
type StoredPattern struct {
	Pattern    string    `json:"pattern"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	TotalCount int       `json:"total_count"`
}

// patternsFile is the structure stored on disk
type patternsFile struct {
	Version  int                       `json:"version"`
	Patterns map[string]*StoredPattern `json:"patterns"`
}

// DefaultPatternsPath returns ~/.tracesift/patterns.json
func DefaultPatternsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tracesift", "patterns.json")
}

// NewPatternStore creates a store and loads any existing file. An empty
// path uses DefaultPatternsPath and a nil clock uses wall time. A missing
// file is not an error; a corrupt one is, and the store starts empty.
func NewPatternStore(path string, clk clock.Clock) (*PatternStore, error) {
	if path == "" {
		path = DefaultPatternsPath()
	}
	if clk == nil {
		clk = clock.New()
	}
	s := &PatternStore{
		path:     path,
		clock:    clk,
		patterns: make(map[string]*StoredPattern),
	}
	return s, s.Load()
}

// Path returns the backing file
func (s *PatternStore) Path() string {
	return s.path
}

// Load reads patterns from disk
func (s *PatternStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read patterns: %w", err)
	}

	var file patternsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode patterns %s: %w", s.path, err)
	}
	s.patterns = file.Patterns
	if s.patterns == nil {
		s.patterns = make(map[string]*StoredPattern)
	}
	return nil
}

// Save writes patterns to disk through a temp file and rename
func (s *PatternStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create patterns dir: %w", err)
	}

	data, err := json.MarshalIndent(patternsFile{
		Version:  patternsFileVersion,
		Patterns: s.patterns,
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".patterns-*.json")
	if err != nil {
		return fmt.Errorf("save patterns: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save patterns: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save patterns: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// RecordPattern records a pattern occurrence.
// Returns true if this is a new pattern, false if it was already known.
func (s *PatternStore) RecordPattern(pattern string, count int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, isNew := s.record(pattern, count)
	return isNew
}

func (s *PatternStore) record(pattern string, count int) (*StoredPattern, bool) {
	now := s.clock.Now().UTC()
	if existing, ok := s.patterns[pattern]; ok {
		existing.LastSeen = now
		existing.TotalCount += count
		return existing, false
	}
	p := &StoredPattern{
		Pattern:    pattern,
		FirstSeen:  now,
		LastSeen:   now,
		TotalCount: count,
	}
	s.patterns[pattern] = p
	return p, true
}

// IsKnown returns true if the pattern has been seen before
func (s *PatternStore) IsKnown(pattern string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.patterns[pattern]
	return ok
}

// Get returns stored info about a pattern
func (s *PatternStore) Get(pattern string) (StoredPattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[pattern]
	if !ok {
		return StoredPattern{}, false
	}
	return *p, true
}

// All returns stored patterns, most frequent first
func (s *PatternStore) All() []StoredPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]StoredPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCount != out[j].TotalCount {
			return out[i].TotalCount > out[j].TotalCount
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// Count returns the number of stored patterns
func (s *PatternStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}

// Clear removes all stored patterns
func (s *PatternStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = make(map[string]*StoredPattern)
}

// EnhancedPatternMatch extends PatternMatch with knowledge status
type EnhancedPatternMatch struct {
	domain.PatternMatch
	IsNew      bool       `json:"is_new"`
	FirstSeen  *time.Time `json:"first_seen,omitempty"`
	TotalCount int        `json:"total_count,omitempty"`
}

// AnnotatePatterns adds known/new status without recording anything
func (s *PatternStore) AnnotatePatterns(patterns []domain.PatternMatch) []EnhancedPatternMatch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]EnhancedPatternMatch, len(patterns))
	for i, p := range patterns {
		enhanced := EnhancedPatternMatch{PatternMatch: p, IsNew: true}
		if stored, ok := s.patterns[p.Pattern]; ok {
			first := stored.FirstSeen
			enhanced.IsNew = false
			enhanced.FirstSeen = &first
			enhanced.TotalCount = stored.TotalCount
		}
		result[i] = enhanced
	}
	return result
}

// RecordPatterns records multiple patterns and returns enhanced versions
func (s *PatternStore) RecordPatterns(patterns []domain.PatternMatch) []EnhancedPatternMatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]EnhancedPatternMatch, len(patterns))
	for i, p := range patterns {
		stored, isNew := s.record(p.Pattern, p.Count)
		first := stored.FirstSeen
		result[i] = EnhancedPatternMatch{
			PatternMatch: p,
			IsNew:        isNew,
			FirstSeen:    &first,
			TotalCount:   stored.TotalCount,
		}
	}
	return result
}
