// Package gallery implements navigation over a project's image list.
package gallery

import "sync"

// Zoom bounds and step.
const (
	MinZoom  = 1.0
	MaxZoom  = 3.0
	ZoomStep = 0.5
)

// Keys understood by HandleKey.
const (
	KeyNext    = "ArrowRight"
	KeyPrev    = "ArrowLeft"
	KeyClose   = "Escape"
	KeyZoomIn  = "+"
	KeyZoomOut = "-"
)

// Action is the effect of a key press.
type Action string

// Actions
const (
	ActionNone    Action = "none"
	ActionNext    Action = "next"
	ActionPrev    Action = "prev"
	ActionClose   Action = "close"
	ActionZoomIn  Action = "zoom-in"
	ActionZoomOut Action = "zoom-out"
)

// Window is the neighbourhood of the current image.
type Window struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Next     string `json:"next"`
}

// Navigator tracks the current image and zoom level. Navigation wraps at both ends.
// It is safe for concurrent use.
type Navigator struct {
	mu     sync.Mutex
	images []string
	index  int
	zoom   float64
	closed bool
}

// New creates a navigator positioned at initial, clamped into range.
func New(images []string, initial int) *Navigator {
	n := &Navigator{images: append([]string(nil), images...), zoom: MinZoom}
	n.index = n.clamp(initial)
	return n
}

func (n *Navigator) clamp(i int) int {
	if len(n.images) == 0 || i < 0 {
		return 0
	}
	if i >= len(n.images) {
		return len(n.images) - 1
	}
	return i
}

func (n *Navigator) currentLocked() string {
	if len(n.images) == 0 {
		return ""
	}
	return n.images[n.index]
}

// Len returns the number of images.
func (n *Navigator) Len() int {
	return len(n.images)
}

// Index returns the current position.
func (n *Navigator) Index() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

// Current returns the current image, or "" when empty.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentLocked()
}

// Next advances to (i+1) mod n and returns the new current image.
func (n *Navigator) Next() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.images) == 0 {
		return ""
	}
	n.index = (n.index + 1) % len(n.images)
	n.zoom = MinZoom
	return n.currentLocked()
}

// Prev moves to (i-1+n) mod n and returns the new current image.
func (n *Navigator) Prev() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.images) == 0 {
		return ""
	}
	n.index = (n.index - 1 + len(n.images)) % len(n.images)
	n.zoom = MinZoom
	return n.currentLocked()
}

// Goto jumps to i, clamped into range.
func (n *Navigator) Goto(i int) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.index = n.clamp(i)
	n.zoom = MinZoom
	return n.currentLocked()
}

// Window returns the previous, current and next images around the current position.
func (n *Navigator) Window() Window {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := len(n.images)
	if total == 0 {
		return Window{}
	}
	return Window{
		Index:    n.index,
		Total:    total,
		Previous: n.images[(n.index-1+total)%total],
		Current:  n.images[n.index],
		Next:     n.images[(n.index+1)%total],
	}
}

// Zoom returns the current zoom factor.
func (n *Navigator) Zoom() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.zoom
}

// ZoomIn increases the zoom by one step up to MaxZoom.
func (n *Navigator) ZoomIn() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.images) == 0 {
		return n.zoom
	}
	n.zoom = min(n.zoom+ZoomStep, MaxZoom)
	return n.zoom
}

// ZoomOut decreases the zoom by one step down to MinZoom.
func (n *Navigator) ZoomOut() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.images) == 0 {
		return n.zoom
	}
	n.zoom = max(n.zoom-ZoomStep, MinZoom)
	return n.zoom
}

// Closed reports whether Escape was pressed.
func (n *Navigator) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// HandleKey applies a keyboard key and reports what it did.
// Keys other than the arrows, Escape, + and - are ignored.
func (n *Navigator) HandleKey(key string) Action {
	switch key {
	case KeyNext:
		n.Next()
		return ActionNext
	case KeyPrev:
		n.Prev()
		return ActionPrev
	case KeyClose:
		n.mu.Lock()
		n.closed = true
		n.mu.Unlock()
		return ActionClose
	case KeyZoomIn, "=":
		n.ZoomIn()
		return ActionZoomIn
	case KeyZoomOut, "_":
		n.ZoomOut()
		return ActionZoomOut
	default:
		return ActionNone
	}
}
