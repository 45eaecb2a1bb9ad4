// Package taptest provides an in-memory event tap platform. Taps created by
// Platform receive synthetic events from Loop.Deliver through
// eventtap.Dispatch, the same entry point the Quartz callback uses.
package taptest

import (
	"errors"
	"sync"

	"github.com/offlinefirst/grabber/pkg/eventtap"
)

// Event is a synthetic event carrying only modifier flags.
type Event struct {
	flags eventtap.Flags
}

// NewEvent returns an event carrying flags.
func NewEvent(flags eventtap.Flags) *Event {
	return &Event{flags: flags}
}

func (e *Event) Flags() eventtap.Flags { return e.flags }

func (e *Event) SetFlags(flags eventtap.Flags) { e.flags = flags }

// Tap records the lifecycle of a tap registration.
type Tap struct {
	Options  eventtap.TapOptions
	Enabled  bool
	Enables  int
	Released int
}

func (t *Tap) Enable(enabled bool) {
	t.Enabled = enabled
	if enabled {
		t.Enables++
	}
}

func (t *Tap) Release() {
	t.Enabled = false
	t.Released++
}

// Source records the lifecycle of a run loop source.
type Source struct {
	Tap      *Tap
	Released int
}

func (s *Source) Release() { s.Released++ }

// Platform is a fault-injectable eventtap.Platform.
type Platform struct {
	// TapErr and SourceErr make CreateTap and CreateRunLoopSource fail.
	TapErr    error
	SourceErr error

	Taps    []*Tap
	Sources []*Source

	loop *Loop
}

// NewPlatform returns a platform whose MainLoop is a fresh Loop.
func NewPlatform() *Platform {
	return &Platform{loop: NewLoop()}
}

func (p *Platform) CreateTap(opts eventtap.TapOptions) (eventtap.Tap, error) {
	if p.TapErr != nil {
		return nil, p.TapErr
	}
	tap := &Tap{Options: opts}
	p.Taps = append(p.Taps, tap)
	return tap, nil
}

func (p *Platform) CreateRunLoopSource(tap eventtap.Tap) (eventtap.RunLoopSource, error) {
	if p.SourceErr != nil {
		return nil, p.SourceErr
	}
	t, ok := tap.(*Tap)
	if !ok {
		return nil, errors.New("taptest: foreign tap")
	}
	src := &Source{Tap: t}
	p.Sources = append(p.Sources, src)
	return src, nil
}

func (p *Platform) MainLoop() eventtap.DispatchLoop {
	return p.Loop()
}

// Loop returns the platform's loop.
func (p *Platform) Loop() *Loop {
	if p.loop == nil {
		p.loop = NewLoop()
	}
	return p.loop
}

// Loop stands in for the main run loop. Deliver runs callbacks synchronously
// on the calling goroutine, one event at a time.
type Loop struct {
	// AttachErr makes Attach fail.
	AttachErr error

	mu        sync.Mutex
	attached  []*Source
	Attaches  int
	Detaches  int
	Delivered int
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

func (l *Loop) Attach(src eventtap.RunLoopSource, mode eventtap.RunLoopMode) error {
	if l.AttachErr != nil {
		return l.AttachErr
	}
	s, ok := src.(*Source)
	if !ok {
		return errors.New("taptest: foreign run loop source")
	}
	if mode != eventtap.CommonModes {
		return errors.New("taptest: unsupported run loop mode")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attached = append(l.attached, s)
	l.Attaches++
	return nil
}

func (l *Loop) Detach(src eventtap.RunLoopSource, _ eventtap.RunLoopMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.attached {
		if s == src {
			l.attached = append(l.attached[:i], l.attached[i+1:]...)
			l.Detaches++
			return
		}
	}
}

// Attached reports how many sources are scheduled on the loop.
func (l *Loop) Attached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attached)
}

// Deliver passes ev through every enabled tap whose mask selects typ, in
// attachment order, and returns what the last tap returned. Events no tap
// selects come back unchanged.
func (l *Loop) Deliver(typ eventtap.EventType, ev eventtap.Event) eventtap.Event {
	l.mu.Lock()
	sources := append([]*Source(nil), l.attached...)
	l.mu.Unlock()

	for _, s := range sources {
		if !s.Tap.Enabled || !s.Tap.Options.Mask.Has(typ) {
			continue
		}
		l.mu.Lock()
		l.Delivered++
		l.mu.Unlock()
		ev = eventtap.Dispatch(s.Tap.Options.Refcon, typ, ev)
	}
	return ev
}

// Notify sends a tap notification such as eventtap.TapDisabledByTimeout to
// every attached tap regardless of mask or enabled state, as Quartz does.
func (l *Loop) Notify(typ eventtap.EventType, ev eventtap.Event) eventtap.Event {
	l.mu.Lock()
	sources := append([]*Source(nil), l.attached...)
	l.mu.Unlock()

	for _, s := range sources {
		ev = eventtap.Dispatch(s.Tap.Options.Refcon, typ, ev)
	}
	return ev
}
