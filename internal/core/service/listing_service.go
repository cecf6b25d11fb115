package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// ListingService implements ports.ListingService on top of the whole-document store.
type ListingService struct {
	store  ports.DocumentStore
	media  ports.MediaHost
	ids    IDSource
	now    func() time.Time
	logger zerolog.Logger
}

func NewListingService(store ports.DocumentStore, media ports.MediaHost, ids IDSource, logger zerolog.Logger) *ListingService {
	return &ListingService{store: store, media: media, ids: ids, now: time.Now, logger: logger}
}

// Create validates the input, loads the document, uploads images one by one,
// appends the part and persists the document. The first failing upload aborts
// the whole operation; images already uploaded stay on the media host.
func (s *ListingService) Create(ctx context.Context, owner domain.User, in ports.PartInput) (*domain.Part, error) {
	if err := validatePartInput(in); err != nil {
		return nil, err
	}
	doc, err := s.store.LoadForWrite(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", owner.ID).Msg("failed to load document for new part")
		return nil, domain.NewUpstreamError(domain.StageLoad, err)
	}

	var thumbnail *string
	if in.Thumbnail != nil {
		url, err := s.upload(ctx, ports.VariantThumbnail, *in.Thumbnail)
		if err != nil {
			return nil, err
		}
		thumbnail = &url
	}

	previews := []string{}
	for _, img := range in.Previews {
		url, err := s.upload(ctx, ports.VariantPreview, img)
		if err != nil {
			return nil, err
		}
		previews = append(previews, url)
	}

	part := domain.Part{
		ID:        s.ids.NextID(),
		UserID:    owner.ID,
		Thumbnail: thumbnail,
		Previews:  previews,
		CreatedAt: s.now().UTC(),
	}
	applyInput(&part, in)

	doc.Parts = append(doc.Parts, part)
	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error().Err(err).Str("user_id", owner.ID).Msg("failed to save new part")
		return nil, domain.NewUpstreamError(domain.StageSave, err)
	}

	s.logger.Info().Str("part_id", part.ID).Str("user_id", owner.ID).Str("type", part.Type).Msg("part created")
	return &part, nil
}

// Update checks ownership before touching anything, then replaces all fields
// except id, owner and createdAt.
func (s *ListingService) Update(ctx context.Context, requester domain.User, partID string, in ports.PartInput) (*domain.Part, error) {
	doc, err := s.store.LoadForWrite(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("part_id", partID).Msg("failed to load document for update")
		return nil, domain.NewUpstreamError(domain.StageLoad, err)
	}
	idx := doc.PartIndex(partID)
	if idx < 0 {
		return nil, domain.ErrPartNotFound
	}
	if !doc.Parts[idx].OwnedBy(&requester) {
		return nil, domain.ErrForbidden
	}
	if err := validatePartInput(in); err != nil {
		return nil, err
	}

	updated := doc.Parts[idx]

	if in.Thumbnail != nil {
		url, err := s.upload(ctx, ports.VariantThumbnail, *in.Thumbnail)
		if err != nil {
			return nil, err
		}
		updated.Thumbnail = &url
	}

	if len(in.Previews) > 0 {
		previews := make([]string, 0, len(in.Previews))
		for _, img := range in.Previews {
			url, err := s.upload(ctx, ports.VariantPreview, img)
			if err != nil {
				return nil, err
			}
			previews = append(previews, url)
		}
		updated.Previews = previews
	}
	if updated.Previews == nil {
		updated.Previews = []string{}
	}

	applyInput(&updated, in)
	now := s.now().UTC()
	updated.UpdatedAt = &now

	doc.Parts[idx] = updated
	if err := s.store.Save(ctx, doc); err != nil {
		s.logger.Error().Err(err).Str("part_id", partID).Msg("failed to save updated part")
		return nil, domain.NewUpstreamError(domain.StageSave, err)
	}

	s.logger.Info().Str("part_id", partID).Str("user_id", requester.ID).Msg("part updated")
	return &updated, nil
}

func (s *ListingService) AuthorizeOwner(ctx context.Context, requester domain.User, partID string) (*domain.Part, error) {
	doc, err := s.store.LoadForWrite(ctx)
	if err != nil {
		return nil, domain.NewUpstreamError(domain.StageLoad, err)
	}
	idx := doc.PartIndex(partID)
	if idx < 0 {
		return nil, domain.ErrPartNotFound
	}
	part := doc.Parts[idx]
	if !part.OwnedBy(&requester) {
		s.logger.Warn().Str("part_id", partID).Str("user_id", requester.ID).Msg("edit attempt by non-owner")
		return nil, domain.ErrForbidden
	}
	return &part, nil
}

func (s *ListingService) upload(ctx context.Context, variant ports.ImageVariant, img ports.ImageUpload) (string, error) {
	url, err := s.media.Upload(ctx, variant, img)
	if err != nil {
		stage := domain.StagePreview
		if variant == ports.VariantThumbnail {
			stage = domain.StageThumbnail
		}
		s.logger.Error().Err(err).Str("stage", stage).Str("file", img.Filename).Msg("image upload failed")
		return "", domain.NewUpstreamError(stage, err)
	}
	return url, nil
}

// applyInput writes every user-editable field derived from the form.
func applyInput(p *domain.Part, in ports.PartInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Type = in.Type
	p.Socket = DeriveSocket(in.Type, in.Socket)
	p.Price = ParsePrice(in.Price)
	p.Hashtags = NormalizeHashtags(in.Hashtags)
	p.IsPublic = in.IsPublic
	p.ExtraDetails = ZipExtraDetails(in.ExtraDetailNames, in.ExtraDetailValues)
}

func validatePartInput(in ports.PartInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if in.Type == "" {
		return domain.NewValidationError("type", "type is required")
	}
	if !domain.IsValidPartType(in.Type) {
		return domain.NewValidationError("type", "type must be one of the listed categories")
	}
	if len(in.Previews) > domain.MaxPreviews {
		return domain.NewValidationError("previews", fmt.Sprintf("at most %d previews are allowed", domain.MaxPreviews))
	}
	if in.Thumbnail != nil && in.Thumbnail.Size == 0 {
		return fmt.Errorf("thumbnail %q: %w", in.Thumbnail.Filename, domain.ErrEmptyUpload)
	}
	for _, img := range in.Previews {
		if img.Size == 0 {
			return fmt.Errorf("preview %q: %w", img.Filename, domain.ErrEmptyUpload)
		}
	}
	return nil
}

// DeriveSocket keeps the socket only for CPUs; every other type stores nil.
func DeriveSocket(partType, socket string) *string {
	if partType != domain.TypeCPU {
		return nil
	}
	s := strings.TrimSpace(socket)
	return &s
}

// NormalizeHashtags splits comma-separated text, trims each tag, drops empty
// ones and makes sure each starts with '#'. Order is preserved.
func NormalizeHashtags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		tags = append(tags, t)
	}
	return tags
}

// ZipExtraDetails pairs names and values by position, silently dropping any
// pair where either side is missing or empty.
func ZipExtraDetails(names, values []string) []domain.ExtraDetail {
	details := []domain.ExtraDetail{}
	for i, name := range names {
		if i >= len(values) {
			break
		}
		if name == "" || values[i] == "" {
			continue
		}
		details = append(details, domain.ExtraDetail{Name: name, Value: values[i]})
	}
	return details
}
