package widgets

import (
	"bytes"
	"fmt"
	"image"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/davidparry/widgets/internal/imagecache"
	"github.com/davidparry/widgets/internal/source"
)

// decode turns a source object into a cacheable image.
func decode(key string, obj *source.Object) (*imagecache.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(obj.Data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s (%s): %w", obj.Name, obj.ContentType, err)
	}
	return imagecache.NewImage(key, img, format), nil
}
