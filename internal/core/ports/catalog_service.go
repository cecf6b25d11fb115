package ports

import (
	"context"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// Sort orders accepted by PartQuery.Sort. Anything else keeps insertion order.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"
)

// PartQuery carries the listing filters exactly as received in the query string.
type PartQuery struct {
	Search   string `query:"search"`
	Type     string `query:"type"`
	MinPrice string `query:"minPrice"`
	MaxPrice string `query:"maxPrice"`
	Details  string `query:"details"`
	Sort     string `query:"sort"`
}

// PartView is a part annotated with its owner's display name.
type PartView struct {
	domain.Part
	OwnerName string `json:"user"`
}

// UserSummary is a user with the number of parts they own.
type UserSummary struct {
	domain.User
	PartCount int `json:"partCount"`
}

// CatalogService serves the read-only listing views. A nil viewer is anonymous.
type CatalogService interface {
	Browse(ctx context.Context, viewer *domain.User, q PartQuery) []PartView
	GetPart(ctx context.Context, viewer *domain.User, partID string) (*PartView, error)
	MyItems(ctx context.Context, viewer *domain.User) []PartView
	UserParts(ctx context.Context, viewer *domain.User, userID string) (*domain.User, []PartView, error)
	Users(ctx context.Context) []UserSummary
	ByHashtag(ctx context.Context, viewer *domain.User, tag string) (string, []PartView)
}
