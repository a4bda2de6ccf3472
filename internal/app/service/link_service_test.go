package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/lnky-dev/lnky/internal/app/model"
	"github.com/lnky-dev/lnky/internal/app/repository"
)

// fakeLinkRepository is an in-memory LinkRepository so ordering behaviour can
// be asserted end to end without a database.
type fakeLinkRepository struct {
	links   map[string]*model.Link
	failAll error
}

func newFakeLinkRepository() *fakeLinkRepository {
	return &fakeLinkRepository{links: make(map[string]*model.Link)}
}

func (f *fakeLinkRepository) seed(links ...model.Link) {
	for i := range links {
		link := links[i]
		f.links[link.ID] = &link
	}
}

func (f *fakeLinkRepository) owned(userID string) []*model.Link {
	var out []*model.Link
	for _, link := range f.links {
		if link.UserID == userID {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if f.failAll != nil {
		return f.failAll
	}
	copied := *link
	f.links[link.ID] = &copied
	return nil
}

func (f *fakeLinkRepository) GetByOwner(ctx context.Context, userID, id string) (*model.Link, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	link, ok := f.links[id]
	if !ok || link.UserID != userID {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (f *fakeLinkRepository) ListByOwner(ctx context.Context, userID string) ([]model.Link, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []model.Link
	for _, link := range f.owned(userID) {
		out = append(out, *link)
	}
	return out, nil
}

func (f *fakeLinkRepository) ListActiveByOwner(ctx context.Context, userID string) ([]model.Link, error) {
	all, err := f.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []model.Link
	for _, link := range all {
		if link.Active {
			out = append(out, link)
		}
	}
	return out, nil
}

func (f *fakeLinkRepository) ListIDsByOwner(ctx context.Context, userID string) ([]string, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var ids []string
	for _, link := range f.owned(userID) {
		ids = append(ids, link.ID)
	}
	return ids, nil
}

func (f *fakeLinkRepository) CountByOwner(ctx context.Context, userID string, kind string) (int64, error) {
	if f.failAll != nil {
		return 0, f.failAll
	}
	var count int64
	for _, link := range f.owned(userID) {
		if kind == "" || link.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (f *fakeLinkRepository) Update(ctx context.Context, userID, id string, fields map[string]interface{}) (*model.Link, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	link, ok := f.links[id]
	if !ok || link.UserID != userID {
		return nil, repository.ErrLinkNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			link.Title = value.(string)
		case "url":
			link.URL = value.(string)
		case "sort_order":
			link.Order = value.(int)
		case "active":
			link.Active = value.(bool)
		case "image_url":
			if value == nil {
				link.ImageURL = nil
			} else {
				s := value.(string)
				link.ImageURL = &s
			}
		}
	}
	copied := *link
	return &copied, nil
}

func (f *fakeLinkRepository) UpdateOrders(ctx context.Context, userID string, orderedIDs []string) error {
	if f.failAll != nil {
		return f.failAll
	}
	for index, id := range orderedIDs {
		link, ok := f.links[id]
		if !ok || link.UserID != userID {
			return repository.ErrLinkNotFound
		}
		link.Order = index
	}
	return nil
}

func (f *fakeLinkRepository) Delete(ctx context.Context, userID, id string) error {
	if f.failAll != nil {
		return f.failAll
	}
	link, ok := f.links[id]
	if !ok || link.UserID != userID {
		return repository.ErrLinkNotFound
	}
	delete(f.links, id)
	return nil
}

func regularLink(id, owner string, order int) model.Link {
	return model.Link{
		ID:     id,
		UserID: owner,
		Title:  "Link " + id,
		URL:    "https://example.com/" + id,
		Kind:   model.LinkKindRegular,
		Order:  order,
		Active: true,
	}
}

func TestLinkService_CreateLink_AppendsLast(t *testing.T) {
	repo := newFakeLinkRepository()
	repo.seed(regularLink("a", "owner", 0), regularLink("b", "owner", 1))
	svc := NewLinkService(repo)

	link, err := svc.CreateLink(context.Background(), "owner", CreateLinkInput{
		Title: "My Site",
		URL:   "https://example.com",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if link.Order != 2 {
		t.Fatalf("expected new link order 2, got %d", link.Order)
	}
	if count, _ := repo.CountByOwner(context.Background(), "owner", ""); count != 3 {
		t.Fatalf("expected 3 links, got %d", count)
	}
	if !link.Active {
		t.Fatal("expected new link to be active")
	}
}

func TestLinkService_CreateLink_Validation(t *testing.T) {
	svc := NewLinkService(newFakeLinkRepository())

	_, err := svc.CreateLink(context.Background(), "owner", CreateLinkInput{Title: "", URL: "https://x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing title, got %v", err)
	}
	_, err = svc.CreateLink(context.Background(), "owner", CreateLinkInput{Title: "x", URL: "  "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing url, got %v", err)
	}
}

func TestLinkService_CreateLink_NoOwner(t *testing.T) {
	svc := NewLinkService(newFakeLinkRepository())
	_, err := svc.CreateLink(context.Background(), "", CreateLinkInput{Title: "x", URL: "https://x"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLinkService_CreateLink_Social(t *testing.T) {
	repo := newFakeLinkRepository()
	svc := NewLinkService(repo)

	link, err := svc.CreateLink(context.Background(), "owner", CreateLinkInput{
		Title:    "Instagram",
		URL:      "@someone",
		Kind:     model.LinkKindSocial,
		Platform: "instagram",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if link.URL != "https://instagram.com/someone" {
		t.Fatalf("expected resolved instagram URL, got %s", link.URL)
	}
	if link.Order != 1000 {
		t.Fatalf("expected first social link at order 1000, got %d", link.Order)
	}

	_, err = svc.CreateLink(context.Background(), "owner", CreateLinkInput{
		Title:    "Nope",
		URL:      "whatever",
		Kind:     model.LinkKindSocial,
		Platform: "myspace",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown platform, got %v", err)
	}
}

func TestLinkService_Reorder(t *testing.T) {
	repo := newFakeLinkRepository()
	repo.seed(
		regularLink("a", "owner", 0),
		regularLink("b", "owner", 1),
		regularLink("c", "owner", 2),
	)
	svc := NewLinkService(repo)

	if err := svc.ReorderLinks(context.Background(), "owner", []string{"c", "a", "b"}); err != nil {
		t.Fatalf("ReorderLinks returned error: %v", err)
	}

	links, _ := svc.ListLinks(context.Background(), "owner")
	got := make([]string, len(links))
	for i, link := range links {
		got[i] = link.ID
		if link.Order != i {
			t.Fatalf("expected %s at order %d, got %d", link.ID, i, link.Order)
		}
	}
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestLinkService_Reorder_Idempotent(t *testing.T) {
	repo := newFakeLinkRepository()
	repo.seed(
		regularLink("a", "owner", 0),
		regularLink("b", "owner", 1),
	)
	svc := NewLinkService(repo)

	sequence := []string{"b", "a"}
	for i := 0; i < 2; i++ {
		if err := svc.ReorderLinks(context.Background(), "owner", sequence); err != nil {
			t.Fatalf("reorder %d returned error: %v", i, err)
		}
	}

	links, _ := svc.ListLinks(context.Background(), "owner")
	if links[0].ID != "b" || links[1].ID != "a" {
		t.Fatalf("expected [b a], got [%s %s]", links[0].ID, links[1].ID)
	}
}

func TestLinkService_Reorder_SetMismatch(t *testing.T) {
	repo := newFakeLinkRepository()
	repo.seed(
		regularLink("a", "owner", 0),
		regularLink("b", "owner", 1),
		regularLink("x", "other", 0),
	)
	svc := NewLinkService(repo)
	ctx := context.Background()

	cases := map[string][]string{
		"missing id":    {"a"},
		"foreign id":    {"a", "x"},
		"unknown id":    {"a", "nope"},
		"duplicate id":  {"a", "a"},
		"extra id":      {"a", "b", "x"},
		"empty not-all": {},
	}

	for name, ids := range cases {
		if err := svc.ReorderLinks(ctx, "owner", ids); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	// Stored order is untouched after every rejection.
	links, _ := svc.ListLinks(ctx, "owner")
	if links[0].ID != "a" || links[0].Order != 0 || links[1].ID != "b" || links[1].Order != 1 {
		t.Fatalf("stored order changed after rejected reorders: %+v", links)
	}
}

func TestLinkService_Delete_NoRenumbering(t *testing.T) {
	repo := newFakeLinkRepository()
	repo.seed(
		regularLink("a", "owner", 0),
		regularLink("b", "owner", 1),
		regularLink("c", "owner", 2),
	)
	svc := NewLinkService(repo)
	ctx := context.Background()

	if err := svc.DeleteLink(ctx, "owner", "b"); err != nil {
		t.Fatalf("DeleteLink returned error: %v", err)
	}

	links, _ := svc.ListLinks(ctx, "owner")
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	// Gap at order 1 remains; display order is still a then c.
	if links[0].ID != "a" || links[0].Order != 0 {
		t.Fatalf("unexpected first link: %+v", links[0])
	}
	if links[1].ID != "c" || links[1].Order != 2 {
		t.Fatalf("unexpected second link: %+v", links[1])
	}
}

func TestLinkService_OwnershipIsolation(t *testing.T) {
	repo := newFakeLinkRepository()
	repo.seed(regularLink("theirs", "other", 0))
	svc := NewLinkService(repo)
	ctx := context.Background()

	title := "hijack"
	if _, err := svc.UpdateLink(ctx, "owner", "theirs", UpdateLinkInput{Title: &title}); !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected not-found on foreign patch, got %v", err)
	}
	if err := svc.DeleteLink(ctx, "owner", "theirs"); !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected not-found on foreign delete, got %v", err)
	}
	if _, err := svc.ToggleLink(ctx, "owner", "theirs"); !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected not-found on foreign toggle, got %v", err)
	}
	// Missing ids report the same error as foreign ids.
	if _, err := svc.ToggleLink(ctx, "owner", "missing"); !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected not-found on missing toggle, got %v", err)
	}
}

func TestLinkService_Toggle_PreservesOrder(t *testing.T) {
	repo := newFakeLinkRepository()
	repo.seed(regularLink("c", "owner", 7))
	svc := NewLinkService(repo)
	ctx := context.Background()

	link, err := svc.ToggleLink(ctx, "owner", "c")
	if err != nil {
		t.Fatalf("ToggleLink returned error: %v", err)
	}
	if link.Active {
		t.Fatal("expected link to become inactive")
	}
	if link.Order != 7 {
		t.Fatalf("expected order unchanged at 7, got %d", link.Order)
	}

	// Public view excludes it, dashboard view keeps it.
	active, _ := svc.ListActiveLinks(ctx, "owner")
	if len(active) != 0 {
		t.Fatalf("expected 0 active links, got %d", len(active))
	}
	all, _ := svc.ListLinks(ctx, "owner")
	if len(all) != 1 {
		t.Fatalf("expected 1 link in dashboard view, got %d", len(all))
	}
}

func TestLinkService_UpdateLink_PartialPatch(t *testing.T) {
	repo := newFakeLinkRepository()
	image := "https://cdn.example.com/x.png"
	link := regularLink("a", "owner", 0)
	link.ImageURL = &image
	repo.seed(link)
	svc := NewLinkService(repo)
	ctx := context.Background()

	title := "Renamed"
	updated, err := svc.UpdateLink(ctx, "owner", "a", UpdateLinkInput{Title: &title})
	if err != nil {
		t.Fatalf("UpdateLink returned error: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("expected renamed title, got %s", updated.Title)
	}
	if updated.ImageURL == nil || *updated.ImageURL != image {
		t.Fatal("expected untouched image on partial patch")
	}

	// Explicitly clearing the image removes it while other fields survive.
	updated, err = svc.UpdateLink(ctx, "owner", "a", UpdateLinkInput{ClearImage: true})
	if err != nil {
		t.Fatalf("UpdateLink returned error: %v", err)
	}
	if updated.ImageURL != nil {
		t.Fatal("expected image cleared")
	}
	if updated.Title != "Renamed" {
		t.Fatalf("expected title preserved, got %s", updated.Title)
	}
}
