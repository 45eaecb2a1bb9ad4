package eventtap

import "fmt"

// EventType mirrors the Quartz CGEventType numbering.
type EventType uint32

const (
	Null              EventType = 0
	LeftMouseDown     EventType = 1
	LeftMouseUp       EventType = 2
	RightMouseDown    EventType = 3
	RightMouseUp      EventType = 4
	MouseMoved        EventType = 5
	LeftMouseDragged  EventType = 6
	RightMouseDragged EventType = 7
	KeyDown           EventType = 10
	KeyUp             EventType = 11
	FlagsChanged      EventType = 12
	ScrollWheel       EventType = 22
	TabletPointer     EventType = 23
	TabletProximity   EventType = 24
	OtherMouseDown    EventType = 25
	OtherMouseUp      EventType = 26
	OtherMouseDragged EventType = 27

	TapDisabledByTimeout   EventType = 0xFFFFFFFE
	TapDisabledByUserInput EventType = 0xFFFFFFFF
)

var eventTypeNames = map[EventType]string{
	Null:                   "null",
	LeftMouseDown:          "left_mouse_down",
	LeftMouseUp:            "left_mouse_up",
	RightMouseDown:         "right_mouse_down",
	RightMouseUp:           "right_mouse_up",
	MouseMoved:             "mouse_moved",
	LeftMouseDragged:       "left_mouse_dragged",
	RightMouseDragged:      "right_mouse_dragged",
	KeyDown:                "key_down",
	KeyUp:                  "key_up",
	FlagsChanged:           "flags_changed",
	ScrollWheel:            "scroll_wheel",
	TabletPointer:          "tablet_pointer",
	TabletProximity:        "tablet_proximity",
	OtherMouseDown:         "other_mouse_down",
	OtherMouseUp:           "other_mouse_up",
	OtherMouseDragged:      "other_mouse_dragged",
	TapDisabledByTimeout:   "tap_disabled_by_timeout",
	TapDisabledByUserInput: "tap_disabled_by_user_input",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event_type(%d)", uint32(t))
}

// tapDisabled reports whether t is one of the notifications Quartz sends
// when it switches a tap off.
func (t EventType) tapDisabled() bool {
	return t == TapDisabledByTimeout || t == TapDisabledByUserInput
}

// EventMask selects event types for a tap, one bit per type.
type EventMask uint64

// MaskBit returns the mask selecting t.
func MaskBit(t EventType) EventMask {
	if t >= 64 {
		return 0
	}
	return EventMask(1) << t
}

// Has reports whether t is selected by m.
func (m EventMask) Has(t EventType) bool {
	bit := MaskBit(t)
	return bit != 0 && m&bit != 0
}

// WatchedEvents lists every pointer event kind the grabber intercepts.
var WatchedEvents = []EventType{
	LeftMouseDown,
	LeftMouseUp,
	RightMouseDown,
	RightMouseUp,
	MouseMoved,
	LeftMouseDragged,
	RightMouseDragged,
	ScrollWheel,
	TabletPointer,
	TabletProximity,
	OtherMouseDown,
	OtherMouseUp,
	OtherMouseDragged,
}

// WatchedMask returns the tap mask covering WatchedEvents.
func WatchedMask() EventMask {
	var mask EventMask
	for _, t := range WatchedEvents {
		mask |= MaskBit(t)
	}
	return mask
}

// Flags is the modifier-flag bitmask carried by every event (CGEventFlags).
type Flags uint64

const (
	FlagAlphaShift   Flags = 0x00010000
	FlagShift        Flags = 0x00020000
	FlagControl      Flags = 0x00040000
	FlagAlternate    Flags = 0x00080000
	FlagCommand      Flags = 0x00100000
	FlagNumericPad   Flags = 0x00200000
	FlagHelp         Flags = 0x00400000
	FlagSecondaryFn  Flags = 0x00800000
	FlagNonCoalesced Flags = 0x00000100
)

func (f Flags) String() string {
	return fmt.Sprintf("0x%08x", uint64(f))
}

// KeyCode identifies the key a flag computation is made for.
type KeyCode uint32

// KeyNone is the context used when a rewrite is not tied to any key press.
const KeyNone KeyCode = 0xFFFFFFFF

// Event is a live platform event. A nil Event stands for a null event.
type Event interface {
	Flags() Flags
	SetFlags(Flags)
}

// Observer is notified of the kind of every intercepted event. It runs on the
// dispatch thread and must return quickly.
type Observer func(EventType)

// FlagTransformer computes the modifier flags an event should carry.
//
// The manager holds the transformer without owning it; the caller keeps it
// valid until the manager is closed. EventFlags is called on the dispatch
// thread and must not block.
type FlagTransformer interface {
	EventFlags(raw Flags, key KeyCode) Flags
}

// FlagTransformerFunc adapts a function to FlagTransformer.
type FlagTransformerFunc func(raw Flags, key KeyCode) Flags

// EventFlags calls f.
func (f FlagTransformerFunc) EventFlags(raw Flags, key KeyCode) Flags {
	return f(raw, key)
}
