// Package selection converts a rectangle drawn on the scaled page into
// full-resolution pixels and into the fixed reference frame used for reports.
package selection

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// Reference frame size (A4 in PostScript points).
const (
	RefWidth  = 595.0
	RefHeight = 842.0
)

// Report sentinels wrapping every emitted bounding box.
const (
	TagStart = "<|img_start|>"
	TagEnd   = "<|img_end|>"
)

// ErrInvalidSelection marks a release that encloses no source pixels.
var ErrInvalidSelection = errors.New("invalid selection")

// Point is a position in display (scaled image) coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the pair of corners of a drag. Start is fixed at press time.
type Rect struct {
	Start   Point `json:"start"`
	Current Point `json:"current"`
}

// Normalized returns the top-left and bottom-right corners.
func (r Rect) Normalized() (Point, Point) {
	return Point{X: math.Min(r.Start.X, r.Current.X), Y: math.Min(r.Start.Y, r.Current.Y)},
		Point{X: math.Max(r.Start.X, r.Current.X), Y: math.Max(r.Start.Y, r.Current.Y)}
}

// Image returns the rectangle in integer display pixels, for drawing.
func (r Rect) Image() image.Rectangle {
	a, b := r.Normalized()
	return image.Rect(int(a.X), int(a.Y), int(b.X), int(b.Y))
}

// Box is a source-space bounding box in whole pixels of the original page.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.Right <= b.Left || b.Bottom <= b.Top }

// Rectangle converts b for use with the image package.
func (b Box) Rectangle() image.Rectangle { return image.Rect(b.Left, b.Top, b.Right, b.Bottom) }

// RefBox is a bounding box in the 595x842 reference frame.
type RefBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// SourceBox maps a display rectangle onto the original page. The per-axis
// factors come from the displayed image size, and each edge is truncated
// toward zero before clamping to the page.
func SourceBox(r Rect, originalW, originalH, displayW, displayH int) (Box, error) {
	if displayW <= 0 || displayH <= 0 || originalW <= 0 || originalH <= 0 {
		return Box{}, fmt.Errorf("%w: no displayed image", ErrInvalidSelection)
	}
	scaleX := float64(originalW) / float64(displayW)
	scaleY := float64(originalH) / float64(displayH)

	a, b := r.Normalized()
	box := Box{
		Left:   int(a.X * scaleX),
		Right:  int(b.X * scaleX),
		Top:    int(a.Y * scaleY),
		Bottom: int(b.Y * scaleY),
	}
	box.Left = clamp(box.Left, 0, originalW)
	box.Right = clamp(box.Right, 0, originalW)
	box.Top = clamp(box.Top, 0, originalH)
	box.Bottom = clamp(box.Bottom, 0, originalH)

	if box.Empty() {
		return box, fmt.Errorf("%w: zero-area box %v", ErrInvalidSelection, box)
	}
	return box, nil
}

// ReferenceBox rescales a source box into the reference frame. Values are not rounded.
func ReferenceBox(b Box, originalW, originalH int) RefBox {
	fx := RefWidth / float64(originalW)
	fy := RefHeight / float64(originalH)
	return RefBox{
		Left:   float64(b.Left) * fx,
		Top:    float64(b.Top) * fy,
		Right:  float64(b.Right) * fx,
		Bottom: float64(b.Bottom) * fy,
	}
}

// OutputName is the base name of the n-th saved crop.
func OutputName(n int) string { return "Im" + strconv.Itoa(n) }

// Report renders the tagged line for one saved crop.
func Report(name string, rb RefBox) string {
	var sb strings.Builder
	sb.WriteString(TagStart)
	fmt.Fprintf(&sb, "Image: %s, bbox: (%s, %s, %s, %s)", name,
		formatCoord(rb.Left), formatCoord(rb.Top), formatCoord(rb.Right), formatCoord(rb.Bottom))
	sb.WriteString(TagEnd)
	return sb.String()
}

// formatCoord prints the shortest exact decimal and keeps a fractional part,
// so 140 prints as "140.0".
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
