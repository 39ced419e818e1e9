package selector

import "strings"

// Key identifies a navigation key.
type Key string

const (
	KeyLeft  Key = "Left"
	KeyRight Key = "Right"
)

// ParseKey maps toolkit key names onto Key. Unknown names return "".
func ParseKey(name string) Key {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "arrowleft":
		return KeyLeft
	case "right", "arrowright":
		return KeyRight
	}
	return ""
}

// EventHandler is what a windowing binding drives. Coordinates are in
// display pixels of the currently shown page image.
type EventHandler interface {
	OnPointerDown(x, y float64)
	OnPointerMove(x, y float64)
	OnPointerUp(x, y float64)
	OnKey(k Key)
}
