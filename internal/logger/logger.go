package logger

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "time"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "pageselector"

// Options defines logger initialization parameters.
type Options struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool

    // Console overrides stdout; tests point it at a buffer.
    Console io.Writer

    // Forwarding is on when Axiom.APIKey is set.
    Axiom AxiomOptions
}

// AxiomOptions selects the dataset that receives info and above.
type AxiomOptions struct {
    APIKey  string
    OrgID   string
    Dataset string
    Flush   time.Duration
}

var remote *shipper

// Init replaces the global zerolog logger. Every event carries the service
// name; Component adds the subsystem on top.
func Init(opts Options) error {
    Close()

    writers, err := localWriters(opts)
    if err != nil {
        return err
    }
    if opts.Axiom.APIKey != "" {
        s, err := newAxiomShipper(opts.Axiom)
        if err != nil {
            fmt.Fprintf(os.Stderr, "Axiom disabled: %v\n", err)
        } else {
            remote = s
            writers = append(writers, s)
        }
    }

    lvl, err := zerolog.ParseLevel(opts.Level)
    if err != nil || opts.Level == "" {
        lvl = zerolog.InfoLevel
    }
    zerolog.TimeFieldFormat = time.RFC3339
    log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
        Level(lvl).
        With().Timestamp().Str("service", serviceName).
        Logger()
    return nil
}

// localWriters builds the rotated file and console outputs.
func localWriters(opts Options) ([]io.Writer, error) {
    var writers []io.Writer
    if opts.File != "" {
        if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
            return nil, fmt.Errorf("create logs dir: %w", err)
        }
        writers = append(writers, &lumberjack.Logger{
            Filename:   opts.File,
            MaxSize:    opts.MaxSizeMB,
            MaxBackups: opts.MaxBackups,
            MaxAge:     opts.MaxAgeDays,
            Compress:   opts.Compress,
        })
    }

    console := opts.Console
    if console == nil {
        console = os.Stdout
    }
    if opts.Pretty {
        console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
    }
    return append(writers, console), nil
}

// Close flushes forwarded events and reports any that were lost.
func Close() {
    if remote == nil {
        return
    }
    if n := remote.Close(); n > 0 {
        fmt.Fprintf(os.Stderr, "Axiom: %d log events dropped\n", n)
    }
    remote = nil
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
    return log.Logger.With().Str("component", name).Logger()
}
