package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lnky-dev/lnky/internal/app/model"
)

type fakeAPI struct {
	mu         sync.Mutex
	links      []model.Link
	reorderErr error
	toggleErr  error
	deleteErr  error

	// When set, ReorderLinks blocks until released.
	reorderGate chan struct{}

	reorderCalls [][]string
}

func (f *fakeAPI) ListLinks(ctx context.Context) ([]model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Link, len(f.links))
	copy(out, f.links)
	return out, nil
}

func (f *fakeAPI) ReorderLinks(ctx context.Context, orderedIDs []string) error {
	f.mu.Lock()
	gate := f.reorderGate
	err := f.reorderErr
	f.reorderCalls = append(f.reorderCalls, orderedIDs)
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) ToggleLink(ctx context.Context, id string) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	for i := range f.links {
		if f.links[i].ID == id {
			f.links[i].Active = !f.links[i].Active
			copied := f.links[i]
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) DeleteLink(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func testLinks() []model.Link {
	return []model.Link{
		{ID: "a", Title: "A", Order: 0, Active: true},
		{ID: "b", Title: "B", Order: 1, Active: true},
		{ID: "c", Title: "C", Order: 2, Active: true},
	}
}

func ids(links []model.Link) []string {
	out := make([]string, len(links))
	for i, link := range links {
		out[i] = link.ID
	}
	return out
}

func loadedState(t *testing.T, api *fakeAPI, notify func(Notice)) *State {
	t.Helper()
	state := New(api, notify)
	if err := state.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	return state
}

func TestReorder_OptimisticApply(t *testing.T) {
	api := &fakeAPI{links: testLinks()}
	state := loadedState(t, api, nil)

	if err := state.Reorder(context.Background(), []string{"c", "a", "b"}); err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	got := ids(state.Links())
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("expected [c a b], got %v", got)
	}
	if len(api.reorderCalls) != 1 {
		t.Fatalf("expected 1 server call, got %d", len(api.reorderCalls))
	}
}

func TestReorder_RollbackOnFailure(t *testing.T) {
	api := &fakeAPI{links: testLinks(), reorderErr: errors.New("network down")}

	var notices []Notice
	state := loadedState(t, api, func(n Notice) { notices = append(notices, n) })

	err := state.Reorder(context.Background(), []string{"c", "a", "b"})
	if err == nil {
		t.Fatal("expected error from failed reorder")
	}

	// Displayed list equals the pre-mutation snapshot, not the failed one.
	got := ids(state.Links())
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("expected rollback to [a b c], got %v", got)
	}

	if len(notices) != 1 || notices[0].Err == nil {
		t.Fatalf("expected one failure notice, got %+v", notices)
	}
}

func TestReorder_MalformedDragNeverReachesNetwork(t *testing.T) {
	api := &fakeAPI{links: testLinks()}
	state := loadedState(t, api, nil)
	ctx := context.Background()

	cases := [][]string{
		{"a", "b"},           // missing id
		{"a", "b", "z"},      // unknown id
		{"a", "a", "b"},      // duplicate
		{"a", "b", "c", "c"}, // wrong cardinality
	}
	for _, bad := range cases {
		if err := state.Reorder(ctx, bad); err == nil {
			t.Fatalf("expected client-local rejection for %v", bad)
		}
	}
	if len(api.reorderCalls) != 0 {
		t.Fatalf("expected no server calls, got %d", len(api.reorderCalls))
	}
}

func TestReorder_NewerCallSupersedesOlder(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{links: testLinks(), reorderGate: gate, reorderErr: errors.New("stale failure")}
	state := loadedState(t, api, nil)

	done := make(chan error, 1)
	go func() {
		done <- state.Reorder(context.Background(), []string{"c", "a", "b"})
	}()

	// Wait for the first call to be in flight.
	deadline := time.After(2 * time.Second)
	for {
		api.mu.Lock()
		calls := len(api.reorderCalls)
		api.mu.Unlock()
		if calls == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first reorder never reached the API")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Second reorder starts (and succeeds) while the first is in flight.
	api.mu.Lock()
	api.reorderGate = nil
	api.reorderErr = nil
	api.mu.Unlock()
	if err := state.Reorder(context.Background(), []string{"b", "c", "a"}); err != nil {
		t.Fatalf("second reorder returned error: %v", err)
	}

	// Release the first call; its failure outcome must be ignored, with no
	// rollback over the newer ordering.
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("superseded reorder should not report failure, got %v", err)
	}

	got := ids(state.Links())
	if got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Fatalf("expected newest ordering [b c a], got %v", got)
	}
}

func TestToggle_OptimisticAndRollback(t *testing.T) {
	api := &fakeAPI{links: testLinks(), toggleErr: errors.New("boom")}
	state := loadedState(t, api, nil)
	ctx := context.Background()

	if err := state.Toggle(ctx, "b"); err == nil {
		t.Fatal("expected toggle failure")
	}
	for _, link := range state.Links() {
		if link.ID == "b" && !link.Active {
			t.Fatal("expected rollback to active=true")
		}
	}

	api.mu.Lock()
	api.toggleErr = nil
	api.mu.Unlock()
	if err := state.Toggle(ctx, "b"); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	for _, link := range state.Links() {
		if link.ID == "b" && link.Active {
			t.Fatal("expected b inactive after successful toggle")
		}
		if link.ID == "b" && link.Order != 1 {
			t.Fatalf("expected order untouched, got %d", link.Order)
		}
	}
}

func TestDelete_RollbackRestoresLink(t *testing.T) {
	api := &fakeAPI{links: testLinks(), deleteErr: errors.New("boom")}
	state := loadedState(t, api, nil)

	if err := state.Delete(context.Background(), "b"); err == nil {
		t.Fatal("expected delete failure")
	}

	got := ids(state.Links())
	if len(got) != 3 || got[1] != "b" {
		t.Fatalf("expected b restored at its position, got %v", got)
	}
}

func TestDelete_RemovesWithoutRenumbering(t *testing.T) {
	api := &fakeAPI{links: testLinks()}
	state := loadedState(t, api, nil)

	if err := state.Delete(context.Background(), "b"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	links := state.Links()
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].ID != "a" || links[0].Order != 0 || links[1].ID != "c" || links[1].Order != 2 {
		t.Fatalf("expected [a(0) c(2)], got %+v", links)
	}
}

func TestLinks_DeterministicTieBreak(t *testing.T) {
	api := &fakeAPI{links: []model.Link{
		{ID: "z", Order: 1},
		{ID: "a", Order: 1},
		{ID: "m", Order: 0},
	}}
	state := loadedState(t, api, nil)

	got := ids(state.Links())
	if got[0] != "m" || got[1] != "a" || got[2] != "z" {
		t.Fatalf("expected [m a z] with id tie-break, got %v", got)
	}
}

func TestInFlight_TracksBusyLink(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{links: testLinks(), reorderGate: gate}
	state := loadedState(t, api, nil)

	// Reorder does not mark individual links busy.
	go state.Reorder(context.Background(), []string{"c", "a", "b"})
	time.Sleep(10 * time.Millisecond)
	if state.InFlight("a") {
		t.Fatal("reorder should not mark links busy")
	}
	close(gate)
}
