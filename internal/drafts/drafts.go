// Package drafts holds the optimistic local-draft collection: activities
// created locally that have not yet been observed back from the remote
// source. This is the only mutable collection the engine keeps; every
// derived view is recomputed from snapshots of it.
package drafts

import (
	"sync"

	"weekplan/internal/model"
)

type entry struct {
	act   model.Activity
	state model.DraftState
}

// Store is a small, insertion-ordered draft collection safe for concurrent
// use. State transitions are driven only by the mutation coordinator.
type Store struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Add inserts a draft in state Draft. An existing entry with the same id is
// replaced in place, keeping its position.
func (s *Store) Add(act model.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[act.ID]; !ok {
		s.order = append(s.order, act.ID)
	}
	s.entries[act.ID] = &entry{act: act, state: model.DraftStatePending}
}

// MarkConfirmed records a successful remote write for the draft.
func (s *Store) MarkConfirmed(id string) {
	s.setState(id, model.DraftStateConfirmed)
}

// MarkFailed records a failed remote write. The draft stays visible: the
// user already saw the commitment, so it is never silently rolled back.
func (s *Store) MarkFailed(id string) {
	s.setState(id, model.DraftStateFailed)
}

func (s *Store) setState(id string, st model.DraftState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.state = st
	}
}

// Remove drops a draft, e.g. after a delete. Unknown ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// PruneConfirmed removes confirmed drafts whose id has been observed in the
// remote collection: the remote copy supersedes them, so carrying the draft
// any further only wastes merge work.
func (s *Store) PruneConfirmed(remoteIDs map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, id := range s.order {
		e := s.entries[id]
		if e.state == model.DraftStateConfirmed {
			if _, seen := remoteIDs[id]; seen {
				delete(s.entries, id)
				continue
			}
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// Activities returns a snapshot of the drafts in insertion order.
func (s *Store) Activities() []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Activity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].act)
	}
	return out
}

// State reports the lifecycle state of a draft.
func (s *Store) State(id string) (model.DraftState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	return e.state, true
}

// Len reports the number of drafts currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
