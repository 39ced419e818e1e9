package selector

import (
	"sync"
	"time"

	"github.com/local/pageselector/internal/selection"
)

// Notification kinds.
const (
	KindSelectionSaved = "selection_saved"
	KindDocumentLoaded = "document_loaded"
	KindPageChanged    = "page_changed"
	KindError          = "error"
)

// Notification is a message for the user. Delivery never blocks the session.
type Notification struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Image   string            `json:"image,omitempty"`
	Path    string            `json:"path,omitempty"`
	Page    int               `json:"page"`
	BBox    *selection.RefBox `json:"bbox,omitempty"`
	Time    time.Time         `json:"time"`
}

// Notifier receives notifications from the session.
type Notifier interface {
	Notify(n Notification)
}

// Inbox buffers notifications until a binding drains them. When full the
// oldest entry is dropped.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewInbox creates an inbox keeping at most limit pending notifications.
func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 100
	}
	return &Inbox{limit: limit}
}

func (b *Inbox) Notify(n Notification) {
	if n.Time.IsZero() {
		n.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= b.limit {
		b.items = b.items[1:]
	}
	b.items = append(b.items, n)
}

// Drain returns and clears the pending notifications.
func (b *Inbox) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
