package executor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/handsomefox/ridit/filter"
)

// probe reads the head of the image and decodes its dimensions.
func (e *Executor) probe(ctx context.Context, url string) (filter.Dimensions, error) {
	head, err := e.client.GetRange(ctx, url, ProbeLimit)
	if err != nil {
		return filter.Dimensions{}, fmt.Errorf("failed to partial download an image to get image size from %s: %w", url, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(head))
	if err != nil {
		return filter.Dimensions{}, fmt.Errorf("%w: error getting image dimension from %s: %v", ErrUnknownFormat, url, err)
	}

	return filter.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
