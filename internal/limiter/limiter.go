package limiter

import (
    "strings"
    "sync"
)

// Slots bounds how many operations per key may be in flight at once.
// Callers that do not get a slot are rejected rather than queued.
type Slots struct {
    maxInflight int
    mu          sync.Mutex
    sem         map[string]chan struct{}
}

type Options struct {
    MaxInflight int
}

func New(opts Options) *Slots {
    if opts.MaxInflight <= 0 { opts.MaxInflight = 1 }
    return &Slots{maxInflight: opts.MaxInflight, sem: map[string]chan struct{}{}}
}

// Allow tries to reserve a slot for key.
// Returns a release function and true if allowed; otherwise a no-op release and false.
func (s *Slots) Allow(key string) (func(), bool) {
    key = strings.ToLower(key)
    s.mu.Lock()
    ch, ok := s.sem[key]
    if !ok {
        ch = make(chan struct{}, s.maxInflight)
        s.sem[key] = ch
    }
    s.mu.Unlock()
    select {
    case ch <- struct{}{}:
        var once sync.Once
        return func() { once.Do(func() { <-ch }) }, true
    default:
        return func(){}, false
    }
}

// InFlight reports how many slots for key are taken.
func (s *Slots) InFlight(key string) int {
    s.mu.Lock()
    defer s.mu.Unlock()
    ch, ok := s.sem[strings.ToLower(key)]
    if !ok { return 0 }
    return len(ch)
}
