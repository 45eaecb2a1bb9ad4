package eventtap

// TapLocation selects where in the event stream a tap is installed.
type TapLocation int

const (
	// HIDTap receives events as they enter the window server from the HID
	// system, before any session or application sees them.
	HIDTap TapLocation = iota
	SessionTap
	AnnotatedSessionTap
)

// TapPlacement orders a tap relative to existing taps at the same location.
type TapPlacement int

const (
	HeadInsert TapPlacement = iota
	TailAppend
)

// TapMode selects whether a tap may modify the events it receives.
type TapMode int

const (
	// ModeDefault taps can modify events.
	ModeDefault TapMode = iota
	ModeListenOnly
)

// RunLoopMode names the run loop modes a source is scheduled in.
type RunLoopMode string

// CommonModes schedules a source in every mode of the loop's common set.
const CommonModes RunLoopMode = "kCFRunLoopCommonModes"

// TapOptions describes a tap registration.
type TapOptions struct {
	Location  TapLocation
	Placement TapPlacement
	Mode      TapMode
	Mask      EventMask

	// Refcon is passed back to Dispatch with every event delivered to the tap.
	Refcon Handle
}

// Tap is a live privileged tap registration.
type Tap interface {
	Enable(enabled bool)
	Release()
}

// RunLoopSource binds a Tap to a dispatch loop.
type RunLoopSource interface {
	Release()
}

// DispatchLoop is the platform loop that delivers tap events on one thread.
type DispatchLoop interface {
	Attach(src RunLoopSource, mode RunLoopMode) error
	Detach(src RunLoopSource, mode RunLoopMode)
}

// Platform creates tap registrations. Events received by a tap are delivered
// through Dispatch with the refcon given at creation.
type Platform interface {
	CreateTap(opts TapOptions) (Tap, error)
	CreateRunLoopSource(tap Tap) (RunLoopSource, error)
	MainLoop() DispatchLoop
}
