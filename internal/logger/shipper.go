package logger

import (
    "bytes"
    "context"
    "encoding/json"
    "sync"
    "sync/atomic"
    "time"

    "github.com/axiomhq/axiom-go/axiom"
    "github.com/axiomhq/axiom-go/axiom/ingest"
    "github.com/rs/zerolog"
)

const (
    shipBatch   = 100
    shipBuffer  = 1000
    shipTimeout = 15 * time.Second
)

// ingester is the part of *axiom.Client the shipper uses.
type ingester interface {
    IngestEvents(ctx context.Context, dataset string, events []axiom.Event, options ...ingest.Option) (*ingest.Status, error)
}

// shipper batches log lines into a remote dataset. Lines below minLevel are
// skipped; lines that do not fit the buffer or fail to ingest count as dropped.
type shipper struct {
    dst       ingester
    dataset   string
    minLevel  zerolog.Level
    events    chan axiom.Event
    done      chan struct{}
    closeOnce sync.Once
    wg        sync.WaitGroup
    dropped   atomic.Int64
}

func newAxiomShipper(opts AxiomOptions) (*shipper, error) {
    copts := []axiom.Option{axiom.SetToken(opts.APIKey)}
    if opts.OrgID != "" {
        copts = append(copts, axiom.SetOrganizationID(opts.OrgID))
    }
    c, err := axiom.NewClient(copts...)
    if err != nil {
        return nil, err
    }
    dataset := opts.Dataset
    if dataset == "" {
        dataset = "dev_" + serviceName
    }
    return newShipper(c, dataset, opts.Flush), nil
}

func newShipper(dst ingester, dataset string, flushEvery time.Duration) *shipper {
    if flushEvery <= 0 {
        flushEvery = 10 * time.Second
    }
    s := &shipper{
        dst:      dst,
        dataset:  dataset,
        minLevel: zerolog.InfoLevel,
        events:   make(chan axiom.Event, shipBuffer),
        done:     make(chan struct{}),
    }
    s.wg.Add(1)
    go s.run(flushEvery)
    return s
}

func (s *shipper) Write(p []byte) (int, error) {
    return s.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel never blocks the caller.
func (s *shipper) WriteLevel(l zerolog.Level, p []byte) (int, error) {
    if l < s.minLevel {
        return len(p), nil
    }
    ev := axiom.Event{}
    if err := json.Unmarshal(p, &ev); err != nil {
        ev = axiom.Event{"message": string(bytes.TrimSpace(p)), "service": serviceName}
    }
    if _, ok := ev[ingest.TimestampField]; !ok {
        ev[ingest.TimestampField] = time.Now()
    }
    select {
    case s.events <- ev:
    default:
        s.dropped.Add(1)
    }
    return len(p), nil
}

func (s *shipper) run(flushEvery time.Duration) {
    defer s.wg.Done()
    ticker := time.NewTicker(flushEvery)
    defer ticker.Stop()

    var batch []axiom.Event
    flush := func() {
        if len(batch) == 0 {
            return
        }
        ctx, cancel := context.WithTimeout(context.Background(), shipTimeout)
        if _, err := s.dst.IngestEvents(ctx, s.dataset, batch); err != nil {
            s.dropped.Add(int64(len(batch)))
        }
        cancel()
        batch = nil
    }
    add := func(ev axiom.Event) {
        batch = append(batch, ev)
        if len(batch) >= shipBatch {
            flush()
        }
    }

    for {
        select {
        case ev := <-s.events:
            add(ev)
        case <-ticker.C:
            flush()
        case <-s.done:
            for {
                select {
                case ev := <-s.events:
                    add(ev)
                default:
                    flush()
                    return
                }
            }
        }
    }
}

// Close sends whatever is queued and returns the number of dropped events.
func (s *shipper) Close() int64 {
    s.closeOnce.Do(func() { close(s.done) })
    s.wg.Wait()
    return s.dropped.Load()
}
