package runstore

import (
	"sync"
	"time"

	"github.com/markdave123-py/Crawlexa/internal/models"
)

// MemoryStore keeps crawl runs in process memory behind a RWMutex. It hands
// out copies so callers can mutate a run and Put it back without racing
// concurrent readers.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]models.CrawlRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]models.CrawlRun)}
}

func (s *MemoryStore) Get(id string) (*models.CrawlRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	return &run, true
}

// Put stores a copy of the run and stamps UpdatedAt.
func (s *MemoryStore) Put(run *models.CrawlRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.UpdatedAt = time.Now()
	s.runs[run.ID] = *run
}
