package store

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/local/pageselector/internal/imagerender"
)

// OutputDir is the fixed crop directory, relative to the working directory.
const OutputDir = "image"

// CropStore writes saved selections as JPEG files into one directory.
type CropStore struct {
	dir     string
	quality int
}

// NewCropStore makes sure dir exists and returns a store writing into it.
func NewCropStore(dir string, quality int) (*CropStore, error) {
	if dir == "" {
		dir = OutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	log.Debug().Str("dir", abs).Msg("output directory ready")
	return &CropStore{dir: abs, quality: quality}, nil
}

// Dir returns the absolute output directory.
func (s *CropStore) Dir() string { return s.dir }

// Path returns where name would be saved.
func (s *CropStore) Path(name string) string {
	return filepath.Join(s.dir, name+".jpg")
}

// Save encodes img as <dir>/<name>.jpg. The data goes to a temp file first
// so a failed write never leaves a truncated image under the final name.
func (s *CropStore) Save(name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imagerender.EncodeJPEG(&buf, img, s.quality); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	p := s.Path(name)
	if err := os.Rename(tmpName, p); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return p, nil
}
