package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lnky-dev/lnky/internal/app/model"
	"github.com/lnky-dev/lnky/internal/app/repository"
)

var (
	// ErrUnauthorized signals that no owner identity was supplied.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput signals malformed input; nothing was applied.
	ErrInvalidInput = errors.New("invalid input")
)

// Social links are kept in a high order band so they always sort after
// regular links without sharing their index space.
const socialOrderBase = 1000

// LinkService applies mutations to a user's link collection while
// preserving ordering consistency and ownership isolation.
type LinkService interface {
	CreateLink(ctx context.Context, ownerID string, input CreateLinkInput) (*model.Link, error)
	ListLinks(ctx context.Context, ownerID string) ([]model.Link, error)
	ListActiveLinks(ctx context.Context, ownerID string) ([]model.Link, error)
	UpdateLink(ctx context.Context, ownerID, linkID string, input UpdateLinkInput) (*model.Link, error)
	ReorderLinks(ctx context.Context, ownerID string, orderedIDs []string) error
	DeleteLink(ctx context.Context, ownerID, linkID string) error
	ToggleLink(ctx context.Context, ownerID, linkID string) (*model.Link, error)
}

type linkService struct {
	repo repository.LinkRepository
}

// NewLinkService returns a service implementation backed by the given repository.
func NewLinkService(repo repository.LinkRepository) LinkService {
	return &linkService{repo: repo}
}

// CreateLinkInput captures data required to create a link. For social links
// URL may be a bare handle; it is resolved against the platform table.
type CreateLinkInput struct {
	Title    string
	URL      string
	Kind     string
	Platform string
}

// UpdateLinkInput captures fields that can be changed on an existing link.
// Nil pointers mean "leave untouched"; ClearImage removes the image and wins
// over ImageURL.
type UpdateLinkInput struct {
	Title      *string
	URL        *string
	Order      *int
	Active     *bool
	ImageURL   *string
	ClearImage bool
}

func (s *linkService) CreateLink(ctx context.Context, ownerID string, input CreateLinkInput) (*model.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	title := strings.TrimSpace(input.Title)
	url := strings.TrimSpace(input.URL)
	if title == "" || url == "" {
		return nil, fmt.Errorf("%w: title and url are required", ErrInvalidInput)
	}

	kind := input.Kind
	if kind == "" {
		kind = model.LinkKindRegular
	}

	link := &model.Link{
		ID:     uuid.New().String(),
		UserID: ownerID,
		Title:  title,
		URL:    url,
		Kind:   kind,
		Active: true,
	}

	switch kind {
	case model.LinkKindRegular:
		count, err := s.repo.CountByOwner(ctx, ownerID, model.LinkKindRegular)
		if err != nil {
			return nil, fmt.Errorf("count links: %w", err)
		}
		link.Order = int(count)
	case model.LinkKindSocial:
		platform, ok := model.PlatformByKey(input.Platform)
		if !ok {
			return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, input.Platform)
		}
		count, err := s.repo.CountByOwner(ctx, ownerID, model.LinkKindSocial)
		if err != nil {
			return nil, fmt.Errorf("count social links: %w", err)
		}
		key := platform.Key
		link.Platform = &key
		link.URL = platform.ResolveSocialURL(url)
		link.Order = socialOrderBase + int(count)
	default:
		return nil, fmt.Errorf("%w: unknown link kind %q", ErrInvalidInput, kind)
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, ownerID string) ([]model.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	links, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *linkService) ListActiveLinks(ctx context.Context, ownerID string) ([]model.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	links, err := s.repo.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list active links: %w", err)
	}
	return links, nil
}

func (s *linkService) UpdateLink(ctx context.Context, ownerID, linkID string, input UpdateLinkInput) (*model.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		fields["title"] = *input.Title
	}
	if input.URL != nil {
		if strings.TrimSpace(*input.URL) == "" {
			return nil, fmt.Errorf("%w: url cannot be empty", ErrInvalidInput)
		}
		fields["url"] = *input.URL
	}
	if input.Order != nil {
		fields["sort_order"] = *input.Order
	}
	if input.Active != nil {
		fields["active"] = *input.Active
	}
	if input.ClearImage {
		fields["image_url"] = nil
	} else if input.ImageURL != nil {
		fields["image_url"] = *input.ImageURL
	}

	if len(fields) == 0 {
		// Nothing to change; still run the ownership check.
		link, err := s.repo.GetByOwner(ctx, ownerID, linkID)
		if err != nil {
			return nil, fmt.Errorf("load link: %w", err)
		}
		return link, nil
	}

	link, err := s.repo.Update(ctx, ownerID, linkID, fields)
	if err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	return link, nil
}

// ReorderLinks assigns sort order = index for each id in orderedIDs. The
// supplied ids must be exactly the owner's current full set; any mismatch
// rejects the whole request so a stale client can never partially reorder.
// Concurrent reorders are last-write-wins, matching the store's semantics.
func (s *linkService) ReorderLinks(ctx context.Context, ownerID string, orderedIDs []string) error {
	if ownerID == "" {
		return ErrUnauthorized
	}

	currentIDs, err := s.repo.ListIDsByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list link ids: %w", err)
	}

	if len(orderedIDs) != len(currentIDs) {
		return fmt.Errorf("%w: reorder set does not match current links", ErrInvalidInput)
	}

	current := make(map[string]struct{}, len(currentIDs))
	for _, id := range currentIDs {
		current[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := current[id]; !ok {
			return fmt.Errorf("%w: reorder set does not match current links", ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate link id in reorder set", ErrInvalidInput)
		}
		seen[id] = struct{}{}
	}

	if err := s.repo.UpdateOrders(ctx, ownerID, orderedIDs); err != nil {
		return fmt.Errorf("apply reorder: %w", err)
	}
	return nil
}

func (s *linkService) DeleteLink(ctx context.Context, ownerID, linkID string) error {
	if ownerID == "" {
		return ErrUnauthorized
	}
	// No renumbering of surviving links; gaps in sort order are fine.
	if err := s.repo.Delete(ctx, ownerID, linkID); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

func (s *linkService) ToggleLink(ctx context.Context, ownerID, linkID string) (*model.Link, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	link, err := s.repo.GetByOwner(ctx, ownerID, linkID)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}

	updated, err := s.repo.Update(ctx, ownerID, linkID, map[string]interface{}{
		"active": !link.Active,
	})
	if err != nil {
		return nil, fmt.Errorf("toggle link: %w", err)
	}
	return updated, nil
}
