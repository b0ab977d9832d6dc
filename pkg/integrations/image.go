package integrations

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when content does not sniff as an image.
var ErrNotImage = errors.New("content is not an image")

// GuessFormat classifies content by its magic bytes and returns the short
// extension label for it ("jpg", "png", "webp", ...). The label is empty when
// the detected image type has no canonical extension.
func GuessFormat(content []byte) (string, error) {
	if len(content) == 0 {
		return "", ErrNotImage
	}
	mtype := mimetype.Detect(content)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}
	return strings.TrimPrefix(mtype.Extension(), "."), nil
}

// DecodeSize fully decodes content and returns its pixel dimensions.
func DecodeSize(content []byte) (width, height int, err error) {
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}
