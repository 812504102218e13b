// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded images: decode, EXIF auto-orientation,
// bounded resize, and re-encode. Everything runs in pure Go.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MaxDimension bounds the longest edge of a stored image. Larger uploads are
// downscaled preserving aspect ratio.
const MaxDimension = 1600

// jpegQuality for re-encoded JPEG output.
const jpegQuality = 85

// Result describes a processed, stored image.
type Result struct {
	FilePath string
	Width    int
	Height   int
	MimeType string
	Size     int64
}

// Processor stores processed images under a base directory.
type Processor struct {
	uploadDir string
}

// NewProcessor creates an image processor writing into uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// Process reads an uploaded image, normalizes orientation, downscales to
// MaxDimension if needed, and writes it under the given subdirectory and
// filename. Non-image payloads are rejected.
func (p *Processor) Process(reader io.Reader, subdir, filename string) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	mimeType := http.DetectContentType(data)
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return nil, fmt.Errorf("unsupported image format: %s", mimeType)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = autoOrient(img, data)

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	dir := filepath.Join(p.uploadDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	// GIF and WebP are re-encoded as PNG to keep output formats predictable.
	ext := ".png"
	encode := func(w io.Writer, img image.Image) error { return png.Encode(w, img) }
	if mimeType == "image/jpeg" {
		ext = ".jpg"
		encode = func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
		}
	}

	outPath := filepath.Join(dir, filename+ext)
	f, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("creating image file: %w", err)
	}
	defer f.Close()

	if err := encode(f, img); err != nil {
		_ = os.Remove(outPath)
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stating image file: %w", err)
	}

	outBounds := img.Bounds()
	outMime := "image/png"
	if ext == ".jpg" {
		outMime = "image/jpeg"
	}
	return &Result{
		FilePath: outPath,
		Width:    outBounds.Dx(),
		Height:   outBounds.Dy(),
		MimeType: outMime,
		Size:     info.Size(),
	}, nil
}

// autoOrient applies the EXIF orientation tag, if present, so stored images
// render upright everywhere.
func autoOrient(img image.Image, raw []byte) image.Image {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return img
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}
