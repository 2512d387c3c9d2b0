// Package media prepares uploaded images for hosting: it bounds their size
// and re-encodes them as JPEG.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxWidth    = 1920
	MaxHeight   = 1080
	JPEGQuality = 80

	// MaxUploadSize is the largest source file accepted for compression.
	MaxUploadSize = 10 << 20

	// MaxPixels bounds the decoded size of a source image. A small file can
	// declare huge dimensions, and decoding allocates for all of them.
	MaxPixels = 40_000_000
)

// ErrTooManyPixels is returned by Compress for images over MaxPixels.
var ErrTooManyPixels = errors.New("image has too many pixels")

// Image is a compressed image ready for upload.
type Image struct {
	Data   []byte
	Name   string // original base name with a .jpg extension
	Width  int
	Height int
	// Source dimensions before resizing.
	SourceWidth  int
	SourceHeight int
}

// ContentType is always image/jpeg.
func (Image) ContentType() string { return "image/jpeg" }

// Compress decodes an image from src, scales it to fit inside
// MaxWidth x MaxHeight when it is larger, and encodes it as JPEG.
func Compress(src io.Reader, originalName string) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Image{}, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	w, h := FitWithin(sw, sh, MaxWidth, MaxHeight)

	// Scale onto an opaque white canvas: JPEG has no alpha, and transparent
	// PNG pixels would otherwise come out black.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == sw && h == sh {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Image{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		Data:         buf.Bytes(),
		Name:         jpegName(originalName),
		Width:        w,
		Height:       h,
		SourceWidth:  sw,
		SourceHeight: sh,
	}, nil
}

// FitWithin returns the largest size with the aspect ratio of w x h that fits
// inside maxW x maxH. Sizes that already fit are returned unchanged. Neither
// returned dimension is ever below 1.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/maxW with h/maxH without floating point: the axis with the
	// larger ratio is the one that limits the scale.
	if w*maxH >= h*maxW {
		nh := (h*maxW + w/2) / w
		return maxW, max(nh, 1)
	}
	nw := (w*maxH + h/2) / h
	return max(nw, 1), maxH
}

func jpegName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "image"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
}
