// Package links composes search, pagination, and ownership checks over the
// link store. No cross-user visibility exists: every operation is scoped to
// the authenticated requester.
package links

import (
	"context"
	"errors"

	"github.com/joestump/linkstash/internal/store"
)

// ErrForbidden is returned when the requester is not the link's owner.
// Existence is always checked first, so a link absent for everyone reports
// store.ErrNotFound regardless of requester.
var ErrForbidden = errors.New("not authorized to access this link")

// Service is the ownership-enforcing orchestration layer atop the link store.
type Service struct {
	links *store.LinkStore
}

func NewService(ls *store.LinkStore) *Service {
	return &Service{links: ls}
}

// List returns one page of the requester's links.
func (s *Service) List(ctx context.Context, requesterID string, params store.SearchParams) (*store.SearchResult, error) {
	return s.links.Search(ctx, requesterID, params)
}

// Create stores a new link owned by the requester. The owner is always the
// authenticated requester; any caller-supplied owner field was dropped at the
// decoding boundary, and this signature makes it unrepresentable here.
func (s *Service) Create(ctx context.Context, requesterID string, fields store.LinkFields) (*store.Link, error) {
	return s.links.Insert(ctx, requesterID, fields)
}

// Update patches the caller-supplied subset of mutable fields on the
// requester's own link. Unspecified fields are left untouched.
func (s *Service) Update(ctx context.Context, requesterID, linkID string, patch store.LinkPatch) (*store.Link, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.UserID != requesterID {
		return nil, ErrForbidden
	}
	return s.links.Patch(ctx, linkID, patch)
}

// Delete removes the requester's own link.
func (s *Service) Delete(ctx context.Context, requesterID, linkID string) error {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link.UserID != requesterID {
		return ErrForbidden
	}
	return s.links.Delete(ctx, linkID)
}

// Tags returns the requester's tag usage counts, sorted alphabetically.
func (s *Service) Tags(ctx context.Context, requesterID string) ([]store.TagCount, error) {
	return s.links.TagCounts(ctx, requesterID)
}
