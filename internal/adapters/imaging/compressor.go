// Package imaging shrinks uploaded photos before they leave the server.
// Large camera shots are downscaled and re-encoded as JPEG so the public
// gallery stays fast to load.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// MaxEdge is the longest side an uploaded photo keeps after scaling.
	MaxEdge = 1920

	// TargetBytes is the encoded size the quality loop aims under.
	TargetBytes = 1 << 20

	startQuality = 80
	minQuality   = 40
	qualityStep  = 10
)

// ErrUnsupportedFormat tags inputs the compressor cannot decode.
var ErrUnsupportedFormat = errors.New("imaging: unsupported image format")

// Result holds a compressed photo ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Compress decodes a photo, scales it down to MaxEdge, and re-encodes it as
// JPEG under TargetBytes where quality allows. Output is always JPEG, also for
// PNG, GIF and WebP input.
// POST: Result.ContentType is "image/jpeg" and Result.Ext is "jpg"
func Compress(data []byte, contentType string) (Result, error) {
	img, err := decode(data, contentType)
	if err != nil {
		return Result{}, err
	}
	img = scaleDown(img)

	var buf bytes.Buffer
	for q := startQuality; ; q -= qualityStep {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return Result{}, fmt.Errorf("imaging: encode jpeg: %w", err)
		}
		if buf.Len() <= TargetBytes || q-qualityStep < minQuality {
			break
		}
	}
	return Result{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: "jpg"}, nil
}

func decode(data []byte, contentType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch contentType {
	case "image/jpeg", "image/jpg":
		return jpeg.Decode(r)
	case "image/png":
		return png.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	}
	// Unknown subtype, let the registered decoders sniff it.
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	return img, nil
}

// scaleDown shrinks img so its longest edge is at most MaxEdge, keeping the
// aspect ratio. Images already small enough pass through untouched.
func scaleDown(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= MaxEdge {
		return img
	}
	scale := float64(MaxEdge) / float64(longest)
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
