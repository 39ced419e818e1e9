package statuscheck

import (
    "context"
    "errors"
    "os"
    "path/filepath"
)

// Checker aggregates readiness checks for the local subsystems the selector needs.
type Checker struct {
    outputDir  string
    rasterizer func() bool
}

// Options configures the Checker.
type Options struct {
    OutputDir  string
    Rasterizer func() bool
}

// Status represents the readiness of a subsystem.
type Status struct {
    OK      bool   `json:"ok"`
    Message string `json:"message"`
}

// Summary bundles all subsystem statuses for the status page.
type Summary struct {
    OutputDir Status `json:"output_dir"`
    MuPDF     Status `json:"mupdf"`
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
    return &Checker{
        outputDir:  opts.OutputDir,
        rasterizer: opts.Rasterizer,
    }
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
    if err := ctx.Err(); err != nil {
        s := Status{OK: false, Message: trimError(err)}
        return Summary{OutputDir: s, MuPDF: s}
    }
    return Summary{
        OutputDir: c.checkOutputDir(),
        MuPDF:     c.checkMuPDF(),
    }
}

// checkOutputDir creates and removes a probe file in the crop directory.
func (c *Checker) checkOutputDir() Status {
    if c.outputDir == "" {
        return Status{OK: false, Message: "Directory not configured"}
    }
    f, err := os.CreateTemp(c.outputDir, ".probe-*")
    if err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    name := f.Name()
    _ = f.Close()
    if err := os.Remove(name); err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    abs, err := filepath.Abs(c.outputDir)
    if err != nil {
        abs = c.outputDir
    }
    return Status{OK: true, Message: "Writable: " + abs}
}

func (c *Checker) checkMuPDF() Status {
    if c.rasterizer == nil || !c.rasterizer() {
        return Status{OK: false, Message: "Rasterizer not available"}
    }
    return Status{OK: true, Message: "Available"}
}

func trimError(err error) string {
    if err == nil {
        return ""
    }
    var pathErr *os.PathError
    if errors.As(err, &pathErr) {
        err = pathErr.Err
    }
    msg := err.Error()
    if len(msg) > 120 {
        return msg[:120]
    }
    return msg
}
