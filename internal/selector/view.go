package selector

import (
	"image"
	"time"

	"github.com/local/pageselector/internal/document"
	"github.com/local/pageselector/internal/imagerender"
	"github.com/local/pageselector/internal/metrics"
	"github.com/local/pageselector/internal/selection"
)

// outlineWidth is the stroke width of the selection rectangle in display pixels.
const outlineWidth = 2

// Size is a width/height pair in pixels.
type Size struct {
	W int `json:"width"`
	H int `json:"height"`
}

// View renders a page fitted to the viewport and owns the optional
// rectangle handle drawn over it.
type View struct {
	viewport Size
	display  *image.RGBA
	scale    float64

	rect  *selection.Rect
	frame *image.RGBA
	dirty bool
}

// NewView creates a view for the given viewport.
func NewView(viewport Size) *View {
	return &View{viewport: viewport}
}

// Viewport returns the available screen area.
func (v *View) Viewport() Size { return v.viewport }

// SetViewport changes the available area. It takes effect on the next Render.
func (v *View) SetViewport(s Size) {
	if s.W > 0 && s.H > 0 {
		v.viewport = s
	}
}

// Render fits the page's working copy into the viewport and returns the
// scale factor. The window must then be resized to WindowSize.
func (v *View) Render(p *document.Page) float64 {
	start := time.Now()
	b := p.Working.Bounds()
	v.scale = imagerender.FitScale(b.Dx(), b.Dy(), v.viewport.W, v.viewport.H)
	w, h := imagerender.ScaledSize(b.Dx(), b.Dy(), v.scale)
	v.display = imagerender.Scale(p.Working, w, h)
	metrics.ObserveRender(time.Since(start))
	v.Redraw()
	return v.scale
}

// Scale returns display pixels per original pixel.
func (v *View) Scale() float64 { return v.scale }

// DisplaySize is the size of the rendered image, zero before the first Render.
func (v *View) DisplaySize() Size {
	if v.display == nil {
		return Size{}
	}
	b := v.display.Bounds()
	return Size{W: b.Dx(), H: b.Dy()}
}

// WindowSize is the size the window takes on: exactly the display image.
func (v *View) WindowSize() Size { return v.DisplaySize() }

// CreateOrUpdateRectangle creates the rectangle handle on first use and
// moves it afterwards.
func (v *View) CreateOrUpdateRectangle(r selection.Rect) {
	if v.rect == nil {
		v.rect = &selection.Rect{}
	}
	*v.rect = r
	v.Redraw()
}

// Rectangle returns the handle's geometry if one exists.
func (v *View) Rectangle() (selection.Rect, bool) {
	if v.rect == nil {
		return selection.Rect{}, false
	}
	return *v.rect, true
}

// ClearRectangle drops the handle.
func (v *View) ClearRectangle() {
	v.rect = nil
	v.Redraw()
}

// Redraw schedules the rectangle to be drawn over a fresh copy of the display
// image; the previous outline disappears with the old frame. Composition
// happens in Frame.
func (v *View) Redraw() { v.dirty = true }

// Frame returns the display image with the current rectangle, or nil when
// nothing has been rendered.
func (v *View) Frame() *image.RGBA {
	if v.display == nil {
		return nil
	}
	if !v.dirty && v.frame != nil {
		return v.frame
	}
	if v.rect == nil {
		v.frame = v.display
	} else {
		v.frame = imagerender.Clone(v.display)
		imagerender.DrawOutline(v.frame, v.rect.Image(), imagerender.OutlineColor, outlineWidth)
	}
	v.dirty = false
	return v.frame
}
