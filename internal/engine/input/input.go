// Package input tracks viewer input events independently of the windowing
// backend. The window package translates SDL events into Events.
package input

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Key is a backend-neutral key code.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyTab
	KeySpace
	Key1
	Key2
	Key3
	KeyE
	KeyG
	KeyB
	KeyR
	KeyI
	KeyPlus
	KeyMinus
	KeyF12
)

// Button is a mouse button.
type Button uint8

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int32
	Height int32
	MouseX int32
	MouseY int32
	Button Button
	// Wheel is the vertical scroll amount, positive away from the user.
	Wheel int32
}

// Input collects the events of one frame and tracks held buttons and keys.
type Input struct {
	events  []Event
	buttons [4]bool
	keys    map[Key]bool
	mouseX  int32
	mouseY  int32
	quit    bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		keys:   make(map[Key]bool),
	}
}

// Begin clears the previous frame's events. Held state is kept.
func (i *Input) Begin() {
	i.events = i.events[:0]
}

// Push records an event and updates held state.
func (i *Input) Push(e Event) {
	switch e.Type {
	case EventQuit:
		i.quit = true
	case EventKeyDown:
		i.keys[e.Key] = true
	case EventKeyUp:
		delete(i.keys, e.Key)
	case EventMouseMove:
		i.mouseX, i.mouseY = e.MouseX, e.MouseY
	case EventMouseDown, EventMouseUp:
		i.mouseX, i.mouseY = e.MouseX, e.MouseY
		if int(e.Button) < len(i.buttons) {
			i.buttons[e.Button] = e.Type == EventMouseDown
		}
	}
	i.events = append(i.events, e)
}

// Events returns the events since the last Begin.
func (i *Input) Events() []Event {
	return i.events
}

// QuitRequested reports whether a quit event was seen.
func (i *Input) QuitRequested() bool {
	return i.quit
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(k Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == k {
			return true
		}
	}
	return false
}

// IsKeyDown reports whether a key is held.
func (i *Input) IsKeyDown(k Key) bool {
	return i.keys[k]
}

// ButtonDown reports whether a mouse button is held.
func (i *Input) ButtonDown(b Button) bool {
	return int(b) < len(i.buttons) && i.buttons[b]
}

// Mouse returns the last known cursor position.
func (i *Input) Mouse() (x, y int32) {
	return i.mouseX, i.mouseY
}
