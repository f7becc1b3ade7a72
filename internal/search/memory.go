package search

import (
	"strings"
	"sync"
)

// Memory is the fallback index: a snapshot of the current bundle's text
// answers, replaced wholesale on every sync.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Replace(entries []Entry) {
	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
}

// Search does a case-insensitive substring match over answer text and
// question titles. Entries keep their indexed order (most recent first).
func (m *Memory) Search(query string, limit int) ([]Entry, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []Entry{}, 0
	}

	var matches []Entry
	for _, entry := range m.entries {
		if strings.Contains(strings.ToLower(entry.Text), needle) ||
			strings.Contains(strings.ToLower(entry.QuestionTitle), needle) {
			matches = append(matches, entry)
		}
	}

	total := len(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []Entry{}
	}
	return matches, total
}
