package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to the
// in-memory scan.
type Service struct {
	meili *Meili
	mem   *Memory
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili) *Service {
	return &Service{meili: meili, mem: NewMemory()}
}

// Index replaces the in-memory index synchronously and pushes the entries to
// Meilisearch fire-and-forget.
func (s *Service) Index(entries []Entry) {
	s.mem.Replace(entries)

	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexEntries(entries); err != nil {
			log.Printf("search: index %d entries: %v", len(entries), err)
		}
	}()
}

// Search queries Meilisearch when healthy, otherwise the in-memory index.
func (s *Service) Search(query string, limit int) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(query, limit)
		if err == nil {
			if results == nil {
				results = []Entry{}
			}
			return Response{Results: results, Total: total, Query: query}
		}
		log.Printf("search: meilisearch error, falling back to memory: %v", err)
	}

	results, total := s.mem.Search(query, limit)
	return Response{Results: results, Total: total, Query: query}
}
