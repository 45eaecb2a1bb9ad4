// Package modifiers holds locked modifier keys and computes the modifier flags
// grabbed pointer events should carry.
package modifiers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/offlinefirst/grabber/pkg/eventtap"
)

// Modifier is a physical or virtual modifier key.
type Modifier int

const (
	LeftShift Modifier = iota + 1
	RightShift
	LeftControl
	RightControl
	LeftOption
	RightOption
	LeftCommand
	RightCommand
	Fn
	CapsLock
)

var modifierNames = map[Modifier]string{
	LeftShift:    "left_shift",
	RightShift:   "right_shift",
	LeftControl:  "left_control",
	RightControl: "right_control",
	LeftOption:   "left_option",
	RightOption:  "right_option",
	LeftCommand:  "left_command",
	RightCommand: "right_command",
	Fn:           "fn",
	CapsLock:     "caps_lock",
}

var modifierAliases = map[string]Modifier{
	"shift":   LeftShift,
	"control": LeftControl,
	"ctrl":    LeftControl,
	"option":  LeftOption,
	"alt":     LeftOption,
	"command": LeftCommand,
	"cmd":     LeftCommand,
}

func (m Modifier) String() string {
	if name, ok := modifierNames[m]; ok {
		return name
	}
	return fmt.Sprintf("modifier(%d)", int(m))
}

// Flag returns the event flag m contributes.
func (m Modifier) Flag() eventtap.Flags {
	switch m {
	case LeftShift, RightShift:
		return eventtap.FlagShift
	case LeftControl, RightControl:
		return eventtap.FlagControl
	case LeftOption, RightOption:
		return eventtap.FlagAlternate
	case LeftCommand, RightCommand:
		return eventtap.FlagCommand
	case Fn:
		return eventtap.FlagSecondaryFn
	case CapsLock:
		return eventtap.FlagAlphaShift
	default:
		return 0
	}
}

// ParseModifier resolves a modifier by name, such as "left_shift" or "cmd".
func ParseModifier(name string) (Modifier, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for m, n := range modifierNames {
		if n == normalized {
			return m, nil
		}
	}
	if m, ok := modifierAliases[normalized]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// ParseModifiers resolves every name, failing on the first unknown one.
func ParseModifiers(names []string) ([]Modifier, error) {
	out := make([]Modifier, 0, len(names))
	for _, name := range names {
		m, err := ParseModifier(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// managedFlags are the bits EventFlags recomputes; every other bit of the
// raw flags passes through untouched.
const managedFlags = eventtap.FlagAlphaShift |
	eventtap.FlagShift |
	eventtap.FlagControl |
	eventtap.FlagAlternate |
	eventtap.FlagCommand |
	eventtap.FlagSecondaryFn

// Arrow keys carry the fn and numeric pad flags on Apple keyboards.
const (
	KeyLeftArrow  eventtap.KeyCode = 0x7B
	KeyRightArrow eventtap.KeyCode = 0x7C
	KeyDownArrow  eventtap.KeyCode = 0x7D
	KeyUpArrow    eventtap.KeyCode = 0x7E
)

func isArrow(key eventtap.KeyCode) bool {
	return key >= KeyLeftArrow && key <= KeyUpArrow
}

// Manager holds the locked modifiers. SetLocked may be called from any
// goroutine; EventFlags is called from the event tap's dispatch thread.
type Manager struct {
	mu     sync.RWMutex
	locked map[Modifier]bool
}

// NewManager returns a manager with nothing locked.
func NewManager() *Manager {
	return &Manager{locked: make(map[Modifier]bool)}
}

// SetLocked replaces the locked set.
func (m *Manager) SetLocked(mods []Modifier) {
	locked := make(map[Modifier]bool, len(mods))
	for _, mod := range mods {
		locked[mod] = true
	}
	m.mu.Lock()
	m.locked = locked
	m.mu.Unlock()
}

// Locked returns the locked modifiers in a stable order.
func (m *Manager) Locked() []Modifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Modifier, 0, len(m.locked))
	for mod := range m.locked {
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EventFlags replaces the modifier bits of raw with the manager's state.
// For arrow keys the fn and numeric pad bits are added as the hardware does;
// eventtap.KeyNone never adds them.
func (m *Manager) EventFlags(raw eventtap.Flags, key eventtap.KeyCode) eventtap.Flags {
	flags := raw &^ managedFlags

	m.mu.RLock()
	for mod := range m.locked {
		flags |= mod.Flag()
	}
	m.mu.RUnlock()

	if key != eventtap.KeyNone && isArrow(key) {
		flags |= eventtap.FlagSecondaryFn | eventtap.FlagNumericPad
	}
	return flags
}
