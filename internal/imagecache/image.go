// Package imagecache provides a byte-budgeted LRU cache of decoded images
// with per-key availability subscriptions.
package imagecache

import "image"

const (
	// BytesPerPixel is the decoded size of one pixel (32-bit ARGB).
	BytesPerPixel = 4

	// DefaultBudget is used when the host reports no usable memory figure.
	DefaultBudget int64 = 16 << 20

	// memoryShare is the fraction (1/memoryShare) of available memory the
	// cache may use.
	memoryShare = 6
)

// Image is a decoded image held by the cache.
type Image struct {
	Key    string
	Image  image.Image
	Format string
	// Bytes is the decoded pixel byte count, not the encoded size.
	Bytes int64
}

// NewImage wraps a decoded image and measures its size.
func NewImage(key string, img image.Image, format string) *Image {
	return &Image{
		Key:    key,
		Image:  img,
		Format: format,
		Bytes:  SizeOf(img),
	}
}

// Width returns the image width in pixels.
func (i *Image) Width() int {
	if i == nil || i.Image == nil {
		return 0
	}
	return i.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (i *Image) Height() int {
	if i == nil || i.Image == nil {
		return 0
	}
	return i.Image.Bounds().Dy()
}

// SizeOf returns the decoded pixel byte count of img.
func SizeOf(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * BytesPerPixel
}

// BudgetFromMemory returns the cache budget for a host reporting available
// bytes of memory: one sixth of it, or DefaultBudget without a usable figure.
func BudgetFromMemory(available int64) int64 {
	budget := available / memoryShare
	if budget <= 0 {
		return DefaultBudget
	}
	return budget
}
