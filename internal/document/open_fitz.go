package document

import (
	"image"

	fitz "github.com/gen2brain/go-fitz"
)

// fitzOpener implements Opener using github.com/gen2brain/go-fitz.
type fitzOpener struct{}

func (fitzOpener) Open(path string) (Doc, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return fitzDoc{doc}, nil
}

type fitzDoc struct{ *fitz.Document }

// ImageDPI renders page i (0-based) at the given resolution.
func (d fitzDoc) ImageDPI(i int, dpi float64) (image.Image, error) {
	img, err := d.Document.ImageDPI(i, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// RasterizerAvailable always returns true since go-fitz embeds MuPDF.
func RasterizerAvailable() bool { return true }
