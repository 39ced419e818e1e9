package statuscheck

import (
    "context"
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestSummaryHealthy(t *testing.T) {
    dir := t.TempDir()
    c := New(Options{OutputDir: dir, Rasterizer: func() bool { return true }})

    s := c.Summary(context.Background())
    assert.True(t, s.OutputDir.OK, s.OutputDir.Message)
    assert.True(t, s.MuPDF.OK)

    entries, err := os.ReadDir(dir)
    assert.NoError(t, err)
    assert.Empty(t, entries, "probe file must be removed")
}

func TestSummaryFailures(t *testing.T) {
    tests := []struct {
        name string
        opts Options
    }{
        {"not configured", Options{}},
        {"missing directory", Options{OutputDir: filepath.Join(t.TempDir(), "nope"), Rasterizer: func() bool { return false }}},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            s := New(tt.opts).Summary(context.Background())
            assert.False(t, s.OutputDir.OK)
            assert.NotEmpty(t, s.OutputDir.Message)
            assert.False(t, s.MuPDF.OK)
        })
    }
}

func TestSummaryCancelled(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    s := New(Options{OutputDir: t.TempDir(), Rasterizer: func() bool { return true }}).Summary(ctx)
    assert.False(t, s.OutputDir.OK)
    assert.Equal(t, context.Canceled.Error(), s.MuPDF.Message)
}

func TestTrimError(t *testing.T) {
    assert.Equal(t, "", trimError(nil))
    assert.Len(t, trimError(errors.New(strings.Repeat("x", 300))), 120)
    assert.Equal(t, "no such file or directory",
        trimError(&os.PathError{Op: "open", Path: "/x", Err: errors.New("no such file or directory")}))
}
