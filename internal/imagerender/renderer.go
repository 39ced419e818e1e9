package imagerender

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
)

// DefaultQuality matches the encoder default used for saved crops.
const DefaultQuality = 75

// ErrEmptyRegion is returned when a crop rectangle has no area inside the image.
var ErrEmptyRegion = errors.New("empty crop region")

// OutlineColor is the stroke color of the selection rectangle.
var OutlineColor = color.RGBA{R: 255, A: 255}

// FitScale returns the uniform factor that fits an imgW x imgH image inside viewW x viewH.
func FitScale(imgW, imgH, viewW, viewH int) float64 {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0
	}
	return math.Min(float64(viewW)/float64(imgW), float64(viewH)/float64(imgH))
}

// ScaledSize truncates w*scale and h*scale, never going below one pixel.
func ScaledSize(w, h int, scale float64) (int, int) {
	sw := int(float64(w) * scale)
	sh := int(float64(h) * scale)
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	return sw, sh
}

// Scale resamples src to exactly w x h using a Catmull-Rom kernel.
func Scale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Clone returns a deep RGBA copy of src with its origin moved to (0,0).
func Clone(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Crop copies rect (in src coordinates) out of src. The source is left untouched.
func Crop(src image.Image, rect image.Rectangle) (*image.RGBA, error) {
	r := rect.Intersect(src.Bounds())
	if r.Empty() {
		return nil, ErrEmptyRegion
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst, nil
}

// DrawOutline strokes the border of rect onto dst with the given line width.
func DrawOutline(dst draw.Image, rect image.Rectangle, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	r := rect.Canon()
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width+1, r.Max.X+1, r.Max.Y+1),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y+1),
		image.Rect(r.Max.X-width+1, r.Min.Y, r.Max.X+1, r.Max.Y+1),
	}
	for _, e := range edges {
		e = e.Intersect(dst.Bounds())
		if e.Empty() {
			continue
		}
		draw.Draw(dst, e, u, image.Point{}, draw.Src)
	}
}

// EncodeJPEG writes img as JPEG. Quality outside 1..100 falls back to DefaultQuality.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return nil
}

// JPEGBytes encodes img in memory.
func JPEGBytes(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
