//go:build !darwin

package eventtap

type unsupportedPlatform struct{}

func defaultPlatform() Platform {
	return unsupportedPlatform{}
}

func (unsupportedPlatform) CreateTap(TapOptions) (Tap, error) {
	return nil, ErrUnsupported
}

func (unsupportedPlatform) CreateRunLoopSource(Tap) (RunLoopSource, error) {
	return nil, ErrUnsupported
}

func (unsupportedPlatform) MainLoop() DispatchLoop {
	return nil
}
