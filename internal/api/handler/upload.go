package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

const (
	// MaxImageSize is the per-file upload limit.
	MaxImageSize = 5 << 20

	fieldThumbnail = "thumbnail"
	fieldPreviews  = "previews"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// UploadError is a rejected file; Message is shown to the user.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return domain.ErrInvalidUpload }

// images is the validated file part of a create/edit form.
type images struct {
	thumbnail *ports.ImageUpload
	previews  []ports.ImageUpload
	form      *multipart.Form
}

// cleanup removes temporary files the multipart parser spilled to disk.
func (im *images) cleanup() {
	if im.form != nil {
		_ = im.form.RemoveAll()
	}
}

// extractImages reads the thumbnail and previews file fields, enforcing count,
// size and content-type limits. Zero-byte files pass through with Size 0 and
// are rejected by the listing service before anything is uploaded.
func extractImages(c echo.Context) (*images, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return &images{}, nil
	}
	if err != nil {
		return nil, &UploadError{Message: "Could not read the uploaded files."}
	}

	out := &images{form: form}
	thumbs := form.File[fieldThumbnail]
	previews := form.File[fieldPreviews]

	if len(thumbs) > 1 {
		out.cleanup()
		return nil, &UploadError{Message: "Only one thumbnail is allowed."}
	}
	if len(previews) > domain.MaxPreviews {
		out.cleanup()
		return nil, &UploadError{Message: fmt.Sprintf("At most %d preview images are allowed.", domain.MaxPreviews)}
	}

	for _, fh := range thumbs {
		img, err := toImage(fh)
		if err != nil {
			out.cleanup()
			return nil, err
		}
		out.thumbnail = &img
	}
	for _, fh := range previews {
		img, err := toImage(fh)
		if err != nil {
			out.cleanup()
			return nil, err
		}
		out.previews = append(out.previews, img)
	}
	return out, nil
}

func toImage(fh *multipart.FileHeader) (ports.ImageUpload, error) {
	img := ports.ImageUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
	if fh.Size > MaxImageSize {
		return img, &UploadError{Message: "File too large. Maximum size is 5MB."}
	}
	if fh.Size == 0 {
		return img, nil
	}

	f, err := fh.Open()
	if err != nil {
		return img, &UploadError{Message: "Could not read the uploaded files."}
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil || !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return img, &UploadError{Message: "Invalid file type. Only JPEG, PNG, and GIF allowed."}
	}
	img.ContentType = mt.String()
	return img, nil
}
