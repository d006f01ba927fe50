package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Photo is one captured or picked image, held in memory until upload.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// ErrPhotoTooLarge is returned when a source image exceeds the byte cap.
var ErrPhotoTooLarge = errors.New("photo exceeds maximum size")

// FromFile loads an image from disk, the CLI equivalent of a gallery pick.
// The file must decode as an image and fit within maxBytes.
func FromFile(path string, maxBytes int64) (*Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	return FromReader(f, filepath.Base(path), maxBytes)
}

// FromReader reads and validates an image from r.
func FromReader(r io.Reader, name string, maxBytes int64) (*Photo, error) {
	if maxBytes <= 0 {
		maxBytes = 25 * 1024 * 1024
	}
	limited := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (>%d bytes)", ErrPhotoTooLarge, maxBytes)
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	return &Photo{
		Name:        name,
		ContentType: mimeForFormat(format),
		Data:        data,
	}, nil
}

// Downscale bounds the photo's longest edge to maxEdge and re-encodes as JPEG
// to keep upload payloads small. Images already within bounds are returned
// unchanged.
func Downscale(p *Photo, maxEdge, quality int) (*Photo, error) {
	if p == nil {
		return nil, errors.New("no photo")
	}
	if maxEdge <= 0 {
		return p, nil
	}

	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	b := img.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return p, nil
	}

	if b.Dx() >= b.Dy() {
		img = imaging.Resize(img, maxEdge, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, maxEdge, imaging.Lanczos)
	}

	if quality < 1 || quality > 100 {
		quality = 85
	}
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}

	return &Photo{
		Name:        jpegName(p.Name),
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

func jpegName(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return name + ".jpg"
	}
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return name
	}
	return strings.TrimSuffix(name, ext) + ".jpg"
}

func mimeForFormat(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
