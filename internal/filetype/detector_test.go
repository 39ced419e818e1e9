package filetype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestDetectPDF(t *testing.T) {
	p := writeFile(t, "doc.pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"))

	info, err := New().Detect(p)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.MIMEType)
	assert.True(t, info.Supported)
	assert.Equal(t, "PDF document", info.Description)
}

func TestRequirePDF(t *testing.T) {
	d := New()

	t.Run("pdf bytes", func(t *testing.T) {
		p := writeFile(t, "renamed.bin", []byte("%PDF-1.7\n"))
		assert.NoError(t, d.RequirePDF(p))
	})

	t.Run("text with pdf extension", func(t *testing.T) {
		p := writeFile(t, "fake.pdf", []byte("just some text, definitely not a pdf"))
		err := d.RequirePDF(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a PDF document")
	})

	t.Run("missing file", func(t *testing.T) {
		err := d.RequirePDF(filepath.Join(t.TempDir(), "missing.pdf"))
		assert.Error(t, err)
	})
}
