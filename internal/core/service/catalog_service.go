package service

import (
	"context"
	"strings"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// CatalogService serves the read-only views. Every method loads a fresh
// document, so a store outage shows up as empty results.
type CatalogService struct {
	store ports.DocumentStore
}

func NewCatalogService(store ports.DocumentStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) Browse(ctx context.Context, viewer *domain.User, q ports.PartQuery) []ports.PartView {
	return FilterParts(s.store.Load(ctx), viewer, q)
}

// GetPart returns ErrPartNotFound for unknown ids and ErrForbidden for a
// private part requested by anyone but its owner.
func (s *CatalogService) GetPart(ctx context.Context, viewer *domain.User, partID string) (*ports.PartView, error) {
	doc := s.store.Load(ctx)
	idx := doc.PartIndex(partID)
	if idx < 0 {
		return nil, domain.ErrPartNotFound
	}
	part := doc.Parts[idx]
	if !part.VisibleTo(viewer) {
		return nil, domain.ErrForbidden
	}
	return &ports.PartView{Part: part, OwnerName: doc.OwnerName(part.UserID)}, nil
}

func (s *CatalogService) MyItems(ctx context.Context, viewer *domain.User) []ports.PartView {
	items := []ports.PartView{}
	if viewer == nil {
		return items
	}
	for _, p := range s.store.Load(ctx).Parts {
		if p.UserID == viewer.ID {
			items = append(items, ports.PartView{Part: p, OwnerName: viewer.Name})
		}
	}
	return items
}

func (s *CatalogService) UserParts(ctx context.Context, viewer *domain.User, userID string) (*domain.User, []ports.PartView, error) {
	doc := s.store.Load(ctx)
	owner, ok := doc.FindUser(userID)
	if !ok {
		return nil, nil, domain.ErrUserNotFound
	}

	parts := []ports.PartView{}
	for _, p := range doc.Parts {
		if p.UserID == userID && p.VisibleTo(viewer) {
			parts = append(parts, ports.PartView{Part: p, OwnerName: owner.Name})
		}
	}
	found := *owner
	return &found, parts, nil
}

func (s *CatalogService) Users(ctx context.Context) []ports.UserSummary {
	doc := s.store.Load(ctx)
	counts := make(map[string]int, len(doc.Users))
	for _, p := range doc.Parts {
		counts[p.UserID]++
	}

	out := make([]ports.UserSummary, 0, len(doc.Users))
	for _, u := range doc.Users {
		out = append(out, ports.UserSummary{User: u, PartCount: counts[u.ID]})
	}
	return out
}

// ByHashtag returns the normalised tag ("#tag") and the visible parts carrying it.
func (s *CatalogService) ByHashtag(ctx context.Context, viewer *domain.User, tag string) (string, []ports.PartView) {
	hashtag := tag
	if !strings.HasPrefix(hashtag, "#") {
		hashtag = "#" + hashtag
	}

	doc := s.store.Load(ctx)
	parts := []ports.PartView{}
	for _, p := range doc.Parts {
		if p.HasHashtag(hashtag) && p.VisibleTo(viewer) {
			parts = append(parts, ports.PartView{Part: p, OwnerName: doc.OwnerName(p.UserID)})
		}
	}
	return hashtag, parts
}
