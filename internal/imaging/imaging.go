package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const pkg = "imaging/"

const (
	DefaultMaxWidth    = 650
	DefaultJPEGQuality = 85
)

// ErrUndecodable is returned for data no registered raster decoder accepts,
// SVG included.
var ErrUndecodable = errors.New("image cannot be decoded")

type Image struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

type Scaler struct {
	maxWidth    int
	jpegQuality int
}

func NewScaler(maxWidth int, jpegQuality int) *Scaler {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Scaler{maxWidth: maxWidth, jpegQuality: jpegQuality}
}

// TargetSize returns the size an image of w x h is scaled to.
func (s *Scaler) TargetSize(w int, h int) (int, int) {
	if w <= s.maxWidth || w <= 0 {
		return w, h
	}

	height := int(math.Round(float64(s.maxWidth) * float64(h) / float64(w)))
	if height < 1 {
		height = 1
	}

	return s.maxWidth, height
}

// Fit downscales images wider than the max width and re-encodes them in their
// own family. Narrower images are returned untouched. WebP has no encoder
// here and comes back as PNG.
func (s *Scaler) Fit(data []byte, mimeType string) (Image, error) {
	op := pkg + "Fit"

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%s: %w", op, ErrUndecodable)
	}

	width, height := s.TargetSize(cfg.Width, cfg.Height)
	if width == cfg.Width {
		return Image{Data: data, MimeType: mimeType, Width: cfg.Width, Height: cfg.Height}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%s: %w", op, ErrUndecodable)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer

	outMime := mimeType

	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.jpegQuality})
		outMime = "image/jpeg"
	case "gif":
		err = gif.Encode(&buf, toPaletted(dst), nil)
		outMime = "image/gif"
	default:
		err = png.Encode(&buf, dst)
		outMime = "image/png"
	}
	if err != nil {
		return Image{}, fmt.Errorf("%s: encode %s: %w", op, format, err)
	}

	return Image{Data: buf.Bytes(), MimeType: outMime, Width: width, Height: height}, nil
}

// toPaletted keeps a transparent palette slot so GIF alpha survives.
func toPaletted(src image.Image) *image.Paletted {
	pal := make(color.Palette, 0, 256)
	pal = append(pal, color.Transparent)
	pal = append(pal, palette.Plan9[:255]...)

	dst := image.NewPaletted(src.Bounds(), pal)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), src, src.Bounds().Min)

	return dst
}

func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
