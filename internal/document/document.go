package document

import (
	"errors"
	"fmt"
	"image"
)

// DPI is the fixed rasterization resolution for every page.
const DPI = 300

// ErrCancelled is returned when no file was chosen. Callers treat it as a no-op.
var ErrCancelled = errors.New("document open cancelled")

// LoadError reports a file that could not be turned into page images.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Page holds one rasterized page. Original is never written after load;
// Working is a private copy the view may scale or annotate.
type Page struct {
	Index    int
	Original image.Image
	Working  *image.RGBA
}

// Size returns the original raster dimensions in pixels.
func (p *Page) Size() (int, int) {
	b := p.Original.Bounds()
	return b.Dx(), b.Dy()
}

// Document is the ordered set of pages produced from one PDF file.
type Document struct {
	ID    string
	Path  string
	Pages []*Page
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.Pages) }

// Page returns page i or an error when i is out of range.
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", i, len(d.Pages))
	}
	return d.Pages[i], nil
}
