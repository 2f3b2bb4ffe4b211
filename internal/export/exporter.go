package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/mealsplit/internal/calculator"
)

const (
	// Filename is the suggested download name for exported images.
	Filename    = "meal-split-bill.png"
	ContentType = "image/png"
)

// ErrUpload is returned when the image rendered but could not be uploaded.
var ErrUpload = errors.New("failed to upload image")

// Uploader stores an exported image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Artifact is a rendered results image.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	// URL is set when the image was uploaded.
	URL string
}

// Exporter renders results and optionally uploads them.
type Exporter struct {
	opts     Options
	uploader Uploader
}

// NewExporter creates an Exporter. uploader may be nil.
func NewExporter(opts Options, uploader Uploader) *Exporter {
	return &Exporter{opts: opts, uploader: uploader}
}

// Export renders alloc. When an uploader is configured and the upload fails,
// the rendered artifact is still returned together with an error wrapping
// ErrUpload.
func (e *Exporter) Export(ctx context.Context, alloc calculator.Allocation) (Artifact, error) {
	data, err := Render(alloc, e.opts)
	if err != nil {
		return Artifact{}, err
	}
	art := Artifact{Filename: Filename, ContentType: ContentType, Data: data}

	if e.uploader == nil {
		return art, nil
	}
	key := fmt.Sprintf("exports/%s.png", uuid.NewString())
	url, err := e.uploader.Upload(ctx, key, ContentType, data)
	if err != nil {
		return art, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	art.URL = url
	return art, nil
}

// Render renders alloc without uploading it.
func (e *Exporter) Render(alloc calculator.Allocation) ([]byte, error) {
	return Render(alloc, e.opts)
}
