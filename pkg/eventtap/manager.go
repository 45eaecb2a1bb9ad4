package eventtap

import (
	"fmt"

	"go.uber.org/zap"
)

// Options configures a Manager. Zero values select the host platform, its
// main run loop and a no-op logger.
type Options struct {
	Platform Platform
	Loop     DispatchLoop
	Logger   *zap.Logger
}

// grab owns the tap and its run loop source. release tears them down in the
// only safe order: disable, detach, release source, release tap.
type grab struct {
	tap      Tap
	source   RunLoopSource
	loop     DispatchLoop
	attached bool
	enabled  bool
}

func (g *grab) release() {
	if g.tap != nil && g.enabled {
		g.tap.Enable(false)
		g.enabled = false
	}
	if g.source != nil {
		if g.attached {
			g.loop.Detach(g.source, CommonModes)
			g.attached = false
		}
		g.source.Release()
		g.source = nil
	}
	if g.tap != nil {
		g.tap.Release()
		g.tap = nil
	}
}

// Manager holds the HID event tap for pointer events. Every intercepted event
// is reported to the observer and has its modifier flags recomputed by the
// transformer before it continues.
//
// A Manager whose tap could not be installed stays disarmed: events flow
// through the platform untouched and Err reports why. New, Close and event
// delivery all happen on the dispatch loop's thread; Manager does no locking.
type Manager struct {
	transformer FlagTransformer
	observer    Observer
	logger      *zap.Logger

	id     Handle
	grab   grab
	err    error
	closed bool
}

// New installs the pointer event tap. It never fails outright; a manager that
// could not arm is returned disarmed with Err set.
func New(transformer FlagTransformer, observer Observer, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	platform := opts.Platform
	if platform == nil {
		platform = defaultPlatform()
	}
	loop := opts.Loop
	if loop == nil {
		loop = platform.MainLoop()
	}

	m := &Manager{
		transformer: transformer,
		observer:    observer,
		logger:      logger,
	}
	m.id = register(m)

	if err := m.arm(platform, loop); err != nil {
		unregister(m.id)
		m.err = err
		m.logger.Warn("event tap unavailable, pointer events pass through unmodified", zap.Error(err))
	}
	return m
}

func (m *Manager) arm(platform Platform, loop DispatchLoop) error {
	mask := WatchedMask()
	tap, err := platform.CreateTap(TapOptions{
		Location:  HIDTap,
		Placement: HeadInsert,
		Mode:      ModeDefault,
		Mask:      mask,
		Refcon:    m.id,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegistration, err)
	}
	if tap == nil {
		return ErrRegistration
	}

	g := grab{tap: tap, loop: loop}
	source, err := platform.CreateRunLoopSource(tap)
	if err != nil || source == nil {
		g.release()
		if err == nil {
			return ErrAttachment
		}
		return fmt.Errorf("%w: create run loop source: %w", ErrAttachment, err)
	}
	g.source = source

	if loop == nil {
		g.release()
		return fmt.Errorf("%w: no dispatch loop", ErrAttachment)
	}
	if err := loop.Attach(source, CommonModes); err != nil {
		g.release()
		return fmt.Errorf("%w: attach run loop source: %w", ErrAttachment, err)
	}
	g.attached = true

	m.grab = g
	m.grab.tap.Enable(true)
	m.grab.enabled = true

	m.logger.Info("event tap grabbed pointer events",
		zap.String("mask", fmt.Sprintf("0x%x", uint64(mask))),
		zap.Int("event_types", len(WatchedEvents)))
	return nil
}

// handle observes ev and rewrites its flags. The same event is returned so
// the platform keeps propagating it; nil stays nil.
func (m *Manager) handle(typ EventType, ev Event) Event {
	if ev == nil {
		return nil
	}
	if typ.tapDisabled() {
		m.reenable(typ)
		return ev
	}

	if m.observer != nil {
		m.observer(typ)
	}
	if m.transformer != nil {
		ev.SetFlags(m.transformer.EventFlags(ev.Flags(), KeyNone))
	}
	return ev
}

// reenable switches the tap back on after Quartz disabled it for being slow
// or for secure input.
func (m *Manager) reenable(reason EventType) {
	if m.closed || !m.grab.enabled {
		return
	}
	m.grab.tap.Enable(true)
	m.logger.Warn("event tap re-enabled", zap.Stringer("reason", reason))
}

// Armed reports whether the tap is installed and enabled.
func (m *Manager) Armed() bool {
	return !m.closed && m.grab.enabled
}

// Err returns the reason the manager failed to arm, wrapping ErrRegistration
// or ErrAttachment. It is nil for an armed manager.
func (m *Manager) Err() error {
	return m.err
}

// Close removes the tap. Later calls do nothing.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	m.grab.release()
	unregister(m.id)

	m.logger.Info("event tap ungrabbed pointer events")
	return nil
}
