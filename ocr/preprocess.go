package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// minOCRWidth is the width below which images are upscaled before
// recognition. Tesseract accuracy drops sharply on small renderings.
const minOCRWidth = 1000

// Preprocess prepares an encoded image for OCR: grayscale conversion,
// contrast stretching, Otsu binarization, and upscaling of small images.
// The result is PNG-encoded.
func Preprocess(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := toGray(src)
	stretchContrast(gray)
	binarize(gray, otsuThreshold(gray))

	var out image.Image = gray
	if w := gray.Bounds().Dx(); w > 0 && w < minOCRWidth {
		out = upscale(gray, minOCRWidth)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		out := image.NewGray(g.Bounds())
		copy(out.Pix, g.Pix)
		return out
	}
	b := src.Bounds()
	out := image.NewGray(b)
	draw.Draw(out, b, src, b.Min, draw.Src)
	return out
}

// stretchContrast linearly rescales pixel values so the darkest pixel maps
// to 0 and the brightest to 255.
func stretchContrast(g *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, p := range g.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi <= lo {
		return
	}
	span := int(hi) - int(lo)
	for i, p := range g.Pix {
		g.Pix[i] = uint8((int(p) - int(lo)) * 255 / span)
	}
}

// otsuThreshold finds the binarization threshold that minimizes intra-class
// variance over the grayscale histogram.
func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	total := len(g.Pix)
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var best float64
	threshold := uint8(128)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

func binarize(g *image.Gray, threshold uint8) {
	for i, p := range g.Pix {
		if p > threshold {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
}

func upscale(g *image.Gray, targetWidth int) *image.Gray {
	b := g.Bounds()
	scale := float64(targetWidth) / float64(b.Dx())
	out := image.NewGray(image.Rect(0, 0, targetWidth, int(float64(b.Dy())*scale)))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), g, b, draw.Src, nil)
	return out
}
