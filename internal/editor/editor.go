// Package editor holds the in-memory link collection an editing client works
// against. Mutations apply locally first so the UI updates immediately, then
// travel to the server; a failed call restores the snapshot captured before
// the optimistic change. The server stays the single source of truth; on any
// conflict its response wins.
package editor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lnky-dev/lnky/internal/app/model"
)

// API is the server surface the editor mutates through. Implementations are
// expected to map 1:1 onto the link endpoints.
type API interface {
	ListLinks(ctx context.Context) ([]model.Link, error)
	ReorderLinks(ctx context.Context, orderedIDs []string) error
	ToggleLink(ctx context.Context, id string) (*model.Link, error)
	DeleteLink(ctx context.Context, id string) error
}

// Notice is a non-blocking user-visible signal emitted after a mutation
// settles. By the time a failure notice arrives, local state has already
// been rolled back.
type Notice struct {
	Err     error
	Message string
}

// State mirrors one owner's link collection for a single editing session.
// All methods are safe for concurrent use; the lock is released around
// network calls so the mirror stays responsive while requests are in flight.
type State struct {
	api    API
	notify func(Notice)

	mu       sync.Mutex
	links    []model.Link
	inflight map[string]int
	seq      map[string]uint64
	nextSeq  uint64
}

// New returns an empty editor state. notify may be nil.
func New(api API, notify func(Notice)) *State {
	return &State{
		api:      api,
		notify:   notify,
		inflight: make(map[string]int),
		seq:      make(map[string]uint64),
	}
}

// Refresh replaces the mirror with the server's authoritative list.
func (s *State) Refresh(ctx context.Context) error {
	links, err := s.api.ListLinks(ctx)
	if err != nil {
		return fmt.Errorf("refresh links: %w", err)
	}

	s.mu.Lock()
	s.links = links
	s.mu.Unlock()
	return nil
}

// Links returns a copy of the mirrored collection sorted for display:
// order ascending, id as the deterministic tie-break.
func (s *State) Links() []model.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Link, len(s.links))
	copy(out, s.links)
	sortLinks(out)
	return out
}

// InFlight reports whether a mutation for the given link id is unresolved,
// so the UI can disable just that row.
func (s *State) InFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[id] > 0
}

// Reorder applies the new sequence locally, then asks the server to make it
// durable. The ids must exactly match the mirrored set; a malformed drag
// result never reaches the network. On failure the pre-mutation order is
// restored. A newer reorder supersedes this one: the older call's outcome is
// ignored once a newer one has started.
func (s *State) Reorder(ctx context.Context, orderedIDs []string) error {
	s.mu.Lock()

	if !s.matchesLocalSet(orderedIDs) {
		s.mu.Unlock()
		return fmt.Errorf("reorder: ids do not match the current collection")
	}

	snapshot := make([]model.Link, len(s.links))
	copy(snapshot, s.links)

	position := make(map[string]int, len(orderedIDs))
	for index, id := range orderedIDs {
		position[id] = index
	}
	for i := range s.links {
		s.links[i].Order = position[s.links[i].ID]
	}

	seq := s.begin("reorder")
	s.mu.Unlock()

	err := s.api.ReorderLinks(ctx, orderedIDs)

	s.mu.Lock()
	superseded := s.finish("reorder", seq)
	if err != nil && !superseded {
		// Restore only the ordering from the snapshot; concurrent changes
		// to other fields on individual links are preserved.
		prior := make(map[string]int, len(snapshot))
		for _, link := range snapshot {
			prior[link.ID] = link.Order
		}
		for i := range s.links {
			if order, ok := prior[s.links[i].ID]; ok {
				s.links[i].Order = order
			}
		}
	}
	s.mu.Unlock()

	if superseded {
		return nil
	}
	if err != nil {
		s.emit(Notice{Err: err, Message: "Could not save the new order"})
		return fmt.Errorf("reorder links: %w", err)
	}
	s.emit(Notice{Message: "Order saved"})
	return nil
}

// Toggle flips a link's visibility locally, then confirms with the server.
// The server's returned state is authoritative on success; failure restores
// the previous value.
func (s *State) Toggle(ctx context.Context, id string) error {
	s.mu.Lock()

	index := s.indexOf(id)
	if index < 0 {
		s.mu.Unlock()
		return fmt.Errorf("toggle: unknown link %s", id)
	}

	prev := s.links[index]
	s.links[index].Active = !prev.Active

	key := "toggle:" + id
	seq := s.begin(key)
	s.markBusy(id, +1)
	s.mu.Unlock()

	updated, err := s.api.ToggleLink(ctx, id)

	s.mu.Lock()
	s.markBusy(id, -1)
	superseded := s.finish(key, seq)
	if !superseded {
		if i := s.indexOf(id); i >= 0 {
			if err != nil {
				s.links[i] = prev
			} else if updated != nil {
				s.links[i] = *updated
			}
		}
	}
	s.mu.Unlock()

	if superseded {
		return nil
	}
	if err != nil {
		s.emit(Notice{Err: err, Message: "Could not update the link"})
		return fmt.Errorf("toggle link: %w", err)
	}
	s.emit(Notice{Message: "Link updated"})
	return nil
}

// Delete removes a link locally, then confirms with the server; failure puts
// it back where it was.
func (s *State) Delete(ctx context.Context, id string) error {
	s.mu.Lock()

	index := s.indexOf(id)
	if index < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete: unknown link %s", id)
	}

	removed := s.links[index]
	s.links = append(s.links[:index], s.links[index+1:]...)

	key := "delete:" + id
	seq := s.begin(key)
	s.markBusy(id, +1)
	s.mu.Unlock()

	err := s.api.DeleteLink(ctx, id)

	s.mu.Lock()
	s.markBusy(id, -1)
	superseded := s.finish(key, seq)
	if err != nil && !superseded && s.indexOf(id) < 0 {
		s.links = append(s.links, removed)
	}
	s.mu.Unlock()

	if superseded {
		return nil
	}
	if err != nil {
		s.emit(Notice{Err: err, Message: "Could not delete the link"})
		return fmt.Errorf("delete link: %w", err)
	}
	s.emit(Notice{Message: "Link deleted"})
	return nil
}

// begin registers a new in-flight operation for key and returns its sequence
// number. Callers must hold the lock.
func (s *State) begin(key string) uint64 {
	s.nextSeq++
	s.seq[key] = s.nextSeq
	return s.nextSeq
}

// finish reports whether the operation identified by seq has been superseded
// by a newer one on the same key. Callers must hold the lock.
func (s *State) finish(key string, seq uint64) bool {
	return s.seq[key] != seq
}

func (s *State) markBusy(id string, delta int) {
	s.inflight[id] += delta
	if s.inflight[id] <= 0 {
		delete(s.inflight, id)
	}
}

func (s *State) indexOf(id string) int {
	for i := range s.links {
		if s.links[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) matchesLocalSet(ids []string) bool {
	if len(ids) != len(s.links) {
		return false
	}
	known := make(map[string]struct{}, len(s.links))
	for _, link := range s.links {
		known[link.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

func (s *State) emit(n Notice) {
	if s.notify != nil {
		s.notify(n)
	}
}

func sortLinks(links []model.Link) {
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Order != links[j].Order {
			return links[i].Order < links[j].Order
		}
		return links[i].ID < links[j].ID
	})
}
