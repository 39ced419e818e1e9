package selection

// State of the pointer interaction.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Tracker follows press, drag and release. After release the last rectangle
// stays available until the next press replaces it.
type Tracker struct {
	state State
	rect  Rect
	has   bool
}

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// Rect returns the current or last completed rectangle.
func (t *Tracker) Rect() (Rect, bool) { return t.rect, t.has }

// Press starts a new rectangle at p, discarding any previous one.
func (t *Tracker) Press(p Point) Rect {
	t.state = Dragging
	t.rect = Rect{Start: p, Current: p}
	t.has = true
	return t.rect
}

// Drag moves the current corner. It is ignored unless a press is in progress.
func (t *Tracker) Drag(p Point) (Rect, bool) {
	if t.state != Dragging {
		return Rect{}, false
	}
	t.rect.Current = p
	return t.rect, true
}

// Release finalizes the current corner and returns the rectangle to commit.
// The second result is false when no press preceded the release.
func (t *Tracker) Release(p Point) (Rect, bool) {
	if t.state != Dragging {
		return Rect{}, false
	}
	t.rect.Current = p
	t.state = Idle
	return t.rect, true
}

// Reset forgets the rectangle, e.g. when a new document replaces the page.
func (t *Tracker) Reset() {
	*t = Tracker{}
}
