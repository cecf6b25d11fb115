package ports

import (
	"context"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// PartInput is the raw create/edit form after binding. Price and Hashtags are
// kept as submitted text; the service derives the stored values.
type PartInput struct {
	Name              string
	Type              string
	Socket            string
	Price             string
	Hashtags          string
	IsPublic          bool
	ExtraDetailNames  []string
	ExtraDetailValues []string
	Thumbnail         *ImageUpload
	Previews          []ImageUpload
}

// ListingService creates and updates parts.
type ListingService interface {
	Create(ctx context.Context, owner domain.User, in PartInput) (*domain.Part, error)
	// Update replaces every field except id and owner. Thumbnail and previews
	// keep their previous URLs unless new files are supplied.
	Update(ctx context.Context, requester domain.User, partID string, in PartInput) (*domain.Part, error)
	// AuthorizeOwner returns the part when requester owns it, ErrPartNotFound
	// when it does not exist and ErrForbidden when someone else owns it.
	AuthorizeOwner(ctx context.Context, requester domain.User, partID string) (*domain.Part, error)
}
