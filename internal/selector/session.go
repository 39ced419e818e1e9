// Package selector holds the page selector session: the loaded document,
// the page on screen, the rectangle being drawn and the crop counter.
// A session is not safe for concurrent use; bindings serialize calls
// through a dispatcher.Loop.
package selector

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/local/pageselector/internal/document"
	"github.com/local/pageselector/internal/imagerender"
	"github.com/local/pageselector/internal/logger"
	"github.com/local/pageselector/internal/metrics"
	"github.com/local/pageselector/internal/selection"
)

// ErrNoDocument is returned by operations that need an open document.
var ErrNoDocument = errors.New("no document loaded")

// Loader opens a PDF into rasterized pages.
type Loader interface {
	Open(ctx context.Context, path string) (*document.Document, error)
}

// CropSaver persists a cropped region under a base name.
type CropSaver interface {
	Save(name string, img image.Image) (string, error)
}

// Options configures a Session.
type Options struct {
	Loader   Loader
	Store    CropSaver
	Notifier Notifier
	Viewport Size
}

// Commit describes one saved selection.
type Commit struct {
	Image  string           `json:"image"`
	Path   string           `json:"path"`
	Page   int              `json:"page"`
	Source selection.Box    `json:"source"`
	BBox   selection.RefBox `json:"bbox"`
	Report string           `json:"report"`
}

// Snapshot is the state a binding needs to paint the window.
type Snapshot struct {
	Loaded     bool            `json:"loaded"`
	DocumentID string          `json:"document_id,omitempty"`
	Path       string          `json:"path,omitempty"`
	Page       int             `json:"page"`
	PageCount  int             `json:"page_count"`
	Scale      float64         `json:"scale"`
	Display    Size            `json:"display"`
	Viewport   Size            `json:"viewport"`
	NextImage  string          `json:"next_image"`
	Dragging   bool            `json:"dragging"`
	Rect       *selection.Rect `json:"rect,omitempty"`
}

// Session is the page selector state for one user.
type Session struct {
	loader   Loader
	store    CropSaver
	notifier Notifier
	log      zerolog.Logger

	doc     *document.Document
	index   int
	view    *View
	tracker selection.Tracker
	counter int
}

// New creates a session. The output counter starts at 1 and is never reset.
func New(opts Options) *Session {
	n := opts.Notifier
	if n == nil {
		n = NewInbox(0)
	}
	return &Session{
		loader:   opts.Loader,
		store:    opts.Store,
		notifier: n,
		log:      logger.Component("selector"),
		view:     NewView(opts.Viewport),
		counter:  1,
	}
}

// Open loads path and shows its first page. An empty path is a silent no-op.
// On failure the previously loaded document stays on screen.
func (s *Session) Open(ctx context.Context, path string) error {
	doc, err := s.loader.Open(ctx, path)
	if errors.Is(err, document.ErrCancelled) {
		s.log.Debug().Msg("open cancelled")
		return nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("file", path).Msg("document load failed")
		s.notifier.Notify(Notification{Kind: KindError, Message: err.Error()})
		return err
	}

	s.doc = doc
	s.index = 0
	s.tracker.Reset()
	s.view.ClearRectangle()
	s.render()

	s.notifier.Notify(Notification{
		Kind:    KindDocumentLoaded,
		Message: fmt.Sprintf("Loaded %d page(s)", doc.PageCount()),
		Path:    doc.Path,
	})
	return nil
}

// SetViewport changes the available screen area and re-renders the page.
func (s *Session) SetViewport(w, h int) {
	s.view.SetViewport(Size{W: w, H: h})
	if s.doc != nil {
		s.render()
	}
}

// Prev shows the previous page. It returns false at the first page.
func (s *Session) Prev() bool {
	if s.doc == nil || s.index <= 0 {
		return false
	}
	s.index--
	metrics.IncNavigation("prev")
	s.pageChanged()
	return true
}

// Next shows the following page. It returns false at the last page.
func (s *Session) Next() bool {
	if s.doc == nil || s.index >= s.doc.PageCount()-1 {
		return false
	}
	s.index++
	metrics.IncNavigation("next")
	s.pageChanged()
	return true
}

func (s *Session) pageChanged() {
	s.render()
	s.notifier.Notify(Notification{
		Kind:    KindPageChanged,
		Message: fmt.Sprintf("Page %d of %d", s.index+1, s.doc.PageCount()),
		Page:    s.index,
	})
}

// render fits the current page and redraws any rectangle over it.
func (s *Session) render() {
	p, err := s.doc.Page(s.index)
	if err != nil {
		s.log.Error().Err(err).Msg("render skipped")
		return
	}
	scale := s.view.Render(p)
	ws := s.view.WindowSize()
	s.log.Debug().
		Int("page", s.index+1).
		Float64("scale", scale).
		Int("width", ws.W).
		Int("height", ws.H).
		Msg("page rendered")
}

// OnPointerDown starts a new rectangle at the press point.
func (s *Session) OnPointerDown(x, y float64) {
	if s.doc == nil {
		return
	}
	r := s.tracker.Press(selection.Point{X: x, Y: y})
	s.view.CreateOrUpdateRectangle(r)
}

// OnPointerMove stretches the rectangle while the pointer is held.
func (s *Session) OnPointerMove(x, y float64) {
	if s.doc == nil {
		return
	}
	if r, ok := s.tracker.Drag(selection.Point{X: x, Y: y}); ok {
		s.view.CreateOrUpdateRectangle(r)
	}
}

// OnPointerUp finalizes the rectangle and commits it. The rectangle stays
// visible until the next press.
func (s *Session) OnPointerUp(x, y float64) {
	if s.doc == nil {
		return
	}
	r, ok := s.tracker.Release(selection.Point{X: x, Y: y})
	if !ok {
		return
	}
	s.view.CreateOrUpdateRectangle(r)

	c, err := s.commit(r)
	switch {
	case errors.Is(err, selection.ErrInvalidSelection):
		metrics.IncSelection("invalid")
		s.log.Debug().Err(err).Msg("selection skipped")
	case err != nil:
		metrics.IncSelection("failed")
		s.log.Error().Err(err).Msg("selection save failed")
		s.notifier.Notify(Notification{Kind: KindError, Message: err.Error(), Page: s.index})
	default:
		metrics.IncSelection("saved")
		bbox := c.BBox
		s.notifier.Notify(Notification{
			Kind:    KindSelectionSaved,
			Message: c.Report,
			Image:   c.Image,
			Path:    c.Path,
			Page:    c.Page,
			BBox:    &bbox,
		})
	}
}

// OnKey handles page navigation keys.
func (s *Session) OnKey(k Key) {
	switch k {
	case KeyLeft:
		s.Prev()
	case KeyRight:
		s.Next()
	}
}

// commit crops the original page under r, saves it and builds the report.
// The counter only advances after the file is written.
func (s *Session) commit(r selection.Rect) (*Commit, error) {
	page, err := s.doc.Page(s.index)
	if err != nil {
		return nil, err
	}
	ow, oh := page.Size()
	ds := s.view.DisplaySize()

	box, err := selection.SourceBox(r, ow, oh, ds.W, ds.H)
	if err != nil {
		return nil, err
	}

	crop, err := imagerender.Crop(page.Original, box.Rectangle().Add(page.Original.Bounds().Min))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", selection.ErrInvalidSelection, err)
	}

	name := selection.OutputName(s.counter)
	path, err := s.store.Save(name, crop)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", name, err)
	}
	s.counter++

	ref := selection.ReferenceBox(box, ow, oh)
	c := &Commit{
		Image:  name,
		Path:   path,
		Page:   s.index,
		Source: box,
		BBox:   ref,
		Report: selection.Report(name, ref),
	}
	s.log.Info().
		Str("image", name).
		Str("path", path).
		Int("page", s.index+1).
		Interface("bbox", ref).
		Msg(c.Report)
	return c, nil
}

// Snapshot returns the current view state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Page:      s.index,
		Viewport:  s.view.Viewport(),
		NextImage: selection.OutputName(s.counter),
		Dragging:  s.tracker.State() == selection.Dragging,
	}
	if s.doc == nil {
		return snap
	}
	snap.Loaded = true
	snap.DocumentID = s.doc.ID
	snap.Path = s.doc.Path
	snap.PageCount = s.doc.PageCount()
	snap.Scale = s.view.Scale()
	snap.Display = s.view.DisplaySize()
	if r, ok := s.view.Rectangle(); ok {
		snap.Rect = &r
	}
	return snap
}

// Frame returns the image to paint, or ErrNoDocument.
func (s *Session) Frame() (image.Image, error) {
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	return s.view.Frame(), nil
}

// PageIndex returns the 0-based index of the page on screen.
func (s *Session) PageIndex() int { return s.index }

// Counter returns the number the next saved crop will use.
func (s *Session) Counter() int { return s.counter }

var _ EventHandler = (*Session)(nil)
