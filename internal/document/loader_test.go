package document

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoc struct {
	sizes   [][2]int
	failAt  int
	closed  *bool
	gotDPIs []float64
}

func (d *fakeDoc) NumPage() int { return len(d.sizes) }

func (d *fakeDoc) ImageDPI(i int, dpi float64) (image.Image, error) {
	d.gotDPIs = append(d.gotDPIs, dpi)
	if i == d.failAt {
		return nil, errors.New("render exploded")
	}
	img := image.NewRGBA(image.Rect(0, 0, d.sizes[i][0], d.sizes[i][1]))
	img.Set(0, 0, color.RGBA{R: uint8(i), A: 255})
	return img, nil
}

func (d *fakeDoc) Close() error {
	if d.closed != nil {
		*d.closed = true
	}
	return nil
}

type fakeOpener struct {
	doc *fakeDoc
	err error
}

func (o fakeOpener) Open(string) (Doc, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type allowAll struct{}

func (allowAll) RequirePDF(string) error { return nil }

type rejectAll struct{}

func (rejectAll) RequirePDF(string) error { return errors.New("not a PDF document") }

func countOK(n int) func(string) (int, error) {
	return func(string) (int, error) { return n, nil }
}

func TestOpenRasterizesEveryPage(t *testing.T) {
	closed := false
	fd := &fakeDoc{sizes: [][2]int{{2550, 3300}, {3300, 2550}}, failAt: -1, closed: &closed}
	l := NewLoader(Options{Opener: fakeOpener{doc: fd}, Validator: allowAll{}, CountPages: countOK(2)})

	doc, err := l.Open(context.Background(), "letter.pdf")
	require.NoError(t, err)

	assert.True(t, closed)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "letter.pdf", doc.Path)
	require.Equal(t, 2, doc.PageCount())
	assert.Equal(t, []float64{300, 300}, fd.gotDPIs)

	w, h := doc.Pages[0].Size()
	assert.Equal(t, 2550, w)
	assert.Equal(t, 3300, h)
	assert.Equal(t, 1, doc.Pages[1].Index)

	// working copy is independent of the original
	p := doc.Pages[0]
	p.Working.Set(0, 0, color.RGBA{G: 255, A: 255})
	r, g, _, _ := p.Original.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0), g)
}

func TestOpenEmptyPathIsCancelled(t *testing.T) {
	l := NewLoader(Options{Opener: fakeOpener{err: errors.New("must not be called")}, Validator: allowAll{}, CountPages: countOK(1)})
	for _, p := range []string{"", "   "} {
		doc, err := l.Open(context.Background(), p)
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, ErrCancelled)
	}
}

func TestOpenFailures(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantMsg string
	}{
		{
			name:    "not a pdf",
			opts:    Options{Opener: fakeOpener{doc: &fakeDoc{sizes: [][2]int{{10, 10}}, failAt: -1}}, Validator: rejectAll{}, CountPages: countOK(1)},
			wantMsg: "not a PDF document",
		},
		{
			name:    "rasterizer cannot open",
			opts:    Options{Opener: fakeOpener{err: errors.New("corrupt xref")}, Validator: allowAll{}, CountPages: countOK(1)},
			wantMsg: "corrupt xref",
		},
		{
			name:    "page render fails",
			opts:    Options{Opener: fakeOpener{doc: &fakeDoc{sizes: [][2]int{{10, 10}, {10, 10}}, failAt: 1}}, Validator: allowAll{}, CountPages: countOK(2)},
			wantMsg: "failed to render page 2",
		},
		{
			name:    "no pages",
			opts:    Options{Opener: fakeOpener{doc: &fakeDoc{failAt: -1}}, Validator: allowAll{}, CountPages: countOK(0)},
			wantMsg: "no pages",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewLoader(tt.opts).Open(context.Background(), "broken.pdf")
			assert.Nil(t, doc)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, "broken.pdf", le.Path)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.NotErrorIs(t, err, ErrCancelled)
		})
	}
}

func TestOpenToleratesPageCountFailure(t *testing.T) {
	fd := &fakeDoc{sizes: [][2]int{{20, 30}}, failAt: -1}
	l := NewLoader(Options{
		Opener:     fakeOpener{doc: fd},
		Validator:  allowAll{},
		CountPages: func(string) (int, error) { return 0, errors.New("pdfcpu: unsupported") },
	})

	doc, err := l.Open(context.Background(), "odd.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
}

func TestOpenStopsOnCancelledContext(t *testing.T) {
	fd := &fakeDoc{sizes: [][2]int{{10, 10}}, failAt: -1}
	l := NewLoader(Options{Opener: fakeOpener{doc: fd}, Validator: allowAll{}, CountPages: countOK(1)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Open(ctx, "a.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultValidatorRejectsText(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(p, []byte("plain text pretending to be a pdf"), 0o644))

	l := NewLoader(Options{Opener: fakeOpener{err: errors.New("must not be called")}, CountPages: countOK(1)})
	_, err := l.Open(context.Background(), p)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "not a PDF document")
}

func TestDocumentPageRange(t *testing.T) {
	d := &Document{Pages: []*Page{{Index: 0}}}
	_, err := d.Page(1)
	assert.Error(t, err)
	_, err = d.Page(-1)
	assert.Error(t, err)
	p, err := d.Page(0)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Index)
}
