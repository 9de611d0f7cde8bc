// Package imaging bounds upload size by rescaling and re-encoding raster images.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Profile bounds the output dimensions and sets the JPEG quality.
type Profile struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// The two client paths compress with different bounds: question photos are
// kept small for fast OCR, answer photos keep more detail for step extraction.
var (
	QuestionProfile = Profile{MaxWidth: 500, MaxHeight: 500, Quality: 80}
	AnswerProfile   = Profile{MaxWidth: 800, MaxHeight: 800, Quality: 70}
)

// Compress rescales raw so that neither dimension exceeds the profile bounds,
// preserving aspect ratio, and re-encodes as JPEG. It never fails: if the
// input cannot be decoded or re-encoded, the original bytes are returned
// unchanged.
func Compress(raw []byte, p Profile) []byte {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Printf("imaging: decode failed, keeping original image: %v", err)
		return raw
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > p.MaxWidth || h > p.MaxHeight {
		r := math.Min(float64(p.MaxWidth)/float64(w), float64(p.MaxHeight)/float64(h))
		nw := scaled(w, r)
		nh := scaled(h, r)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		log.Printf("imaging: encode failed, keeping original image: %v", err)
		return raw
	}
	return out.Bytes()
}

func scaled(dim int, r float64) int {
	n := int(float64(dim)*r + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
