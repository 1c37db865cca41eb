// Package imaging bounds the size of illustrations before they are stored.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // decoder registration
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decoder registration
)

const (
	// MaxDimension bounds the longest side of a stored image.
	MaxDimension = 1024
	// Quality is the JPEG quality used on re-encode.
	Quality = 80
)

var errNotDataURI = errors.New("not a base64 data URI")

// Normalizer downscales and recompresses data-URI images.
type Normalizer struct {
	MaxDimension int
	Quality      int
	Log          zerolog.Logger
}

// New returns a Normalizer with default bounds.
func New(log zerolog.Logger) *Normalizer {
	return &Normalizer{MaxDimension: MaxDimension, Quality: Quality, Log: log}
}

// Normalize returns a bounded JPEG data URI. It never fails: on any error
// the input is returned unchanged. The result is also the input when
// re-encoding would not make it smaller.
func (n *Normalizer) Normalize(uri string) string {
	out, err := n.normalize(uri)
	if err != nil {
		n.Log.Warn().Err(err).Msg("image normalization failed, keeping original")
		return uri
	}
	if len(out) >= len(uri) {
		return uri
	}
	return out
}

func (n *Normalizer) normalize(uri string) (string, error) {
	_, data, err := ParseDataURI(uri)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	dst := n.scale(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality()}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (n *Normalizer) scale(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	limit := n.MaxDimension
	if limit <= 0 {
		limit = MaxDimension
	}
	if w <= limit && h <= limit {
		return src
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func (n *Normalizer) quality() int {
	if n.Quality < 1 || n.Quality > 100 {
		return Quality
	}
	return n.Quality
}

// ParseDataURI splits a data:<mime>;base64,<payload> URI.
func ParseDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errNotDataURI
	}
	mime, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, errNotDataURI
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return mime, data, nil
}
