package document

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/local/pageselector/internal/filetype"
	"github.com/local/pageselector/internal/imagerender"
	"github.com/local/pageselector/internal/metrics"
)

// Doc abstracts an opened PDF that can rasterize its pages.
type Doc interface {
	NumPage() int
	ImageDPI(i int, dpi float64) (image.Image, error)
	Close() error
}

// Opener abstracts opening a PDF path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

// Validator rejects files that are not PDFs before any rendering happens.
type Validator interface {
	RequirePDF(path string) error
}

// Options configures a Loader. Zero values select the MuPDF opener,
// magic-byte validation and the pdfcpu page counter.
type Options struct {
	Opener     Opener
	Validator  Validator
	CountPages func(path string) (int, error)
}

// Loader turns a PDF path into a Document of full-resolution page images.
type Loader struct {
	opener     Opener
	validator  Validator
	countPages func(path string) (int, error)
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	l := &Loader{opener: opts.Opener, validator: opts.Validator, countPages: opts.CountPages}
	if l.opener == nil {
		l.opener = fitzOpener{}
	}
	if l.validator == nil {
		l.validator = filetype.New()
	}
	if l.countPages == nil {
		l.countPages = api.PageCountFile
	}
	return l
}

// Open rasterizes every page of the PDF at path at DPI.
// An empty path returns ErrCancelled; any other failure is a *LoadError.
func (l *Loader) Open(ctx context.Context, path string) (*Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrCancelled
	}
	doc, err := l.open(ctx, path)
	if err != nil {
		metrics.IncDocument("error")
		return nil, &LoadError{Path: path, Err: err}
	}
	metrics.IncDocument("success")
	return doc, nil
}

func (l *Loader) open(ctx context.Context, path string) (*Document, error) {
	if err := l.validator.RequirePDF(path); err != nil {
		return nil, err
	}

	// A pdfcpu count failure is only logged; MuPDF opens files pdfcpu rejects.
	expected, err := l.countPages(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("pdf page count failed; relying on rasterizer")
		expected = 0
	}

	start := time.Now()
	d, err := l.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer d.Close()

	total := d.NumPage()
	if total <= 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	if expected > 0 && expected != total {
		log.Debug().Int("pdfcpu_pages", expected).Int("mupdf_pages", total).Str("file", path).Msg("page count mismatch")
	}

	pages := make([]*Page, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := d.ImageDPI(i, DPI)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		b := img.Bounds()
		if b.Empty() {
			return nil, fmt.Errorf("page %d rendered empty", i+1)
		}
		pages = append(pages, &Page{Index: i, Original: img, Working: imagerender.Clone(img)})
		log.Debug().Int("page", i+1).Int("width", b.Dx()).Int("height", b.Dy()).Msg("rasterized page")
	}

	elapsed := time.Since(start)
	metrics.ObserveRasterize(elapsed)

	doc := &Document{ID: uuid.NewString(), Path: path, Pages: pages}
	log.Info().
		Str("doc_id", doc.ID).
		Str("file", path).
		Int("pages", total).
		Int("dpi", DPI).
		Dur("elapsed", elapsed).
		Msg("document loaded")
	return doc, nil
}
