// Package renderer provides a reference viz.Renderer that resolves plot
// descriptors to artifact URLs without producing images. Real renderers
// (a plotting service, a headless worker) implement the same interface.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/leofalp/edaflow/core/viz"
)

// ErrEmptyID is returned for descriptors without an ID.
var ErrEmptyID = errors.New("renderer: descriptor has no id")

// Static maps each descriptor to <baseURL>/<id>.png.
type Static struct {
	baseURL string
}

// NewStatic returns a Static renderer rooted at baseURL. An empty baseURL
// yields relative "static/<id>.png" references.
func NewStatic(baseURL string) *Static {
	if baseURL == "" {
		baseURL = "static"
	}
	return &Static{baseURL: strings.TrimRight(baseURL, "/")}
}

// Render implements viz.Renderer.
func (s *Static) Render(ctx context.Context, descriptor viz.Descriptor) (viz.ArtifactRef, error) {
	if err := ctx.Err(); err != nil {
		return viz.ArtifactRef{}, err
	}
	if descriptor.ID == "" {
		return viz.ArtifactRef{}, ErrEmptyID
	}
	return viz.ArtifactRef{
		URI:       fmt.Sprintf("%s/%s.png", s.baseURL, url.PathEscape(descriptor.ID)),
		MediaType: "image/png",
	}, nil
}
