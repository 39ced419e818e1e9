package dispatcher

import (
    "context"
    "errors"
    "sync"

    "github.com/rs/zerolog/log"
)

// ErrStopped is returned by Do once the loop no longer accepts work.
var ErrStopped = errors.New("event loop stopped")

type action struct {
    ctx  context.Context
    fn   func()
    done chan struct{}
    err  error
}

// Loop runs submitted actions one at a time on a single goroutine, so
// handlers never observe a session mid-update.
type Loop struct {
    queue chan *action
    stop  chan struct{}
    wg    sync.WaitGroup
    once  sync.Once
}

// New creates a loop with room for backlog pending actions.
func New(backlog int) *Loop {
    if backlog <= 0 { backlog = 64 }
    return &Loop{queue: make(chan *action, backlog), stop: make(chan struct{})}
}

func (l *Loop) Start() {
    l.wg.Add(1)
    go l.run()
}

// Stop stops accepting work and waits for the running action to finish.
func (l *Loop) Stop(ctx context.Context) error {
    l.once.Do(func() { close(l.stop) })
    done := make(chan struct{})
    go func() { l.wg.Wait(); close(done) }()
    select {
    case <-done:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

// Do runs fn on the loop and waits for it to complete. Once queued, Do
// waits for the loop to take the action; if ctx is done by then fn is
// skipped and ctx.Err() is returned. A running fn is always waited for.
func (l *Loop) Do(ctx context.Context, fn func()) error {
    a := &action{ctx: ctx, fn: fn, done: make(chan struct{})}
    select {
    case <-l.stop:
        return ErrStopped
    default:
    }
    select {
    case l.queue <- a:
    case <-l.stop:
        return ErrStopped
    case <-ctx.Done():
        return ctx.Err()
    }
    select {
    case <-a.done:
        return a.err
    case <-l.stop:
        // run() takes nothing after stop; wait only for an action already running
        l.wg.Wait()
        select {
        case <-a.done:
            return a.err
        default:
            return ErrStopped
        }
    }
}

func (l *Loop) run() {
    defer l.wg.Done()
    log.Debug().Msg("event loop started")
    for {
        select {
        case <-l.stop:
            log.Debug().Msg("event loop stopped")
            return
        case a := <-l.queue:
            l.exec(a)
        }
    }
}

func (l *Loop) exec(a *action) {
    defer close(a.done)
    if err := a.ctx.Err(); err != nil {
        a.err = err
        log.Debug().Err(err).Msg("skipping cancelled action")
        return
    }
    defer func() {
        if r := recover(); r != nil {
            log.Error().Interface("panic", r).Msg("event handler panicked")
        }
    }()
    a.fn()
}
