package client

import (
	"MedFund-Backend/domain"
	"sync"
)

// Store is a normalized cache of donation requests keyed by id. The list view
// holds ids only, so a record updated once is current in every view.
type Store struct {
	mu         sync.RWMutex
	requests   map[string]domain.DonationRequestResponse
	list       []string
	listLoaded bool
}

func NewStore() *Store {
	return &Store{requests: make(map[string]domain.DonationRequestResponse)}
}

func (s *Store) Get(id string) (domain.DonationRequestResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	return r, ok
}

func (s *Store) Put(r domain.DonationRequestResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = r
}

// PutList replaces the list view and refreshes every record in it.
func (s *Store) PutList(list []domain.DonationRequestResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = make([]string, 0, len(list))
	for _, r := range list {
		s.requests[r.ID] = r
		s.list = append(s.list, r.ID)
	}
	s.listLoaded = true
}

// List returns the cached list view. ok is false when it must be refetched.
func (s *Store) List() (list []domain.DonationRequestResponse, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.listLoaded {
		return nil, false
	}
	list = make([]domain.DonationRequestResponse, 0, len(s.list))
	for _, id := range s.list {
		if r, found := s.requests[id]; found {
			list = append(list, r)
		}
	}
	return list, true
}

// Invalidate drops the record and marks the list view stale.
func (s *Store) Invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	s.listLoaded = false
}

// Remove forgets a deleted request everywhere, list view included.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	for i, listed := range s.list {
		if listed == id {
			s.list = append(s.list[:i:i], s.list[i+1:]...)
			break
		}
	}
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = make(map[string]domain.DonationRequestResponse)
	s.list = nil
	s.listLoaded = false
}
