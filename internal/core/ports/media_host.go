package ports

import (
	"context"
	"fmt"
	"io"
)

// ImageVariant selects the transformation applied by the media host.
type ImageVariant string

const (
	VariantThumbnail ImageVariant = "thumbnail"
	VariantPreview   ImageVariant = "preview"
)

// Transform is the resize the media host is asked to apply.
type Transform struct {
	Width  int
	Height int
	Crop   string
}

func (t Transform) String() string {
	return fmt.Sprintf("%s:%dx%d", t.Crop, t.Width, t.Height)
}

// Transform returns the resize requested for the variant.
func (v ImageVariant) Transform() Transform {
	if v == VariantThumbnail {
		return Transform{Width: 300, Height: 200, Crop: "fill"}
	}
	return Transform{Width: 600, Height: 400, Crop: "fill"}
}

// ImageUpload is a validated image waiting to be sent to the media host.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// MediaHost stores images and returns their public URL.
type MediaHost interface {
	Upload(ctx context.Context, variant ImageVariant, img ImageUpload) (string, error)
}
