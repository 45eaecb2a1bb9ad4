//go:build darwin

package eventtap

/*
#cgo darwin CFLAGS: -x objective-c -fmodules -fobjc-arc
#cgo darwin LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

extern CGEventRef goEventTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static CFMachPortRef createTap(int location, int placement, int options, CGEventMask mask, uintptr_t refcon) {
        return CGEventTapCreate((CGEventTapLocation)location,
                                (CGEventTapPlacement)placement,
                                (CGEventTapOptions)options,
                                mask,
                                goEventTapCallback,
                                (void *)refcon);
}

static void enableTap(CFMachPortRef tap, int enable) {
        CGEventTapEnable(tap, enable ? true : false);
}

static CFRunLoopSourceRef createSource(CFMachPortRef tap) {
        return CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
}

static void addSourceToMainLoop(CFRunLoopSourceRef source) {
        CFRunLoopAddSource(CFRunLoopGetMain(), source, kCFRunLoopCommonModes);
}

static void removeSourceFromMainLoop(CFRunLoopSourceRef source) {
        CFRunLoopRemoveSource(CFRunLoopGetMain(), source, kCFRunLoopCommonModes);
}

static uint64_t eventGetFlags(CGEventRef event) {
        return (uint64_t)CGEventGetFlags(event);
}

static void eventSetFlags(CGEventRef event, uint64_t flags) {
        CGEventSetFlags(event, (CGEventFlags)flags);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

type quartzPlatform struct{}

func defaultPlatform() Platform {
	return quartzPlatform{}
}

func (quartzPlatform) CreateTap(opts TapOptions) (Tap, error) {
	port := C.createTap(C.int(opts.Location), C.int(opts.Placement), C.int(opts.Mode),
		C.CGEventMask(opts.Mask), C.uintptr_t(opts.Refcon))
	if port == 0 {
		return nil, refusedTapError("CGEventTapCreate returned NULL")
	}
	return &quartzTap{port: port}, nil
}

func (quartzPlatform) CreateRunLoopSource(tap Tap) (RunLoopSource, error) {
	qt, ok := tap.(*quartzTap)
	if !ok || qt.port == 0 {
		return nil, fmt.Errorf("unexpected tap %T", tap)
	}
	source := C.createSource(qt.port)
	if source == 0 {
		return nil, errors.New("CFMachPortCreateRunLoopSource returned NULL")
	}
	return &quartzSource{ref: source}, nil
}

func (quartzPlatform) MainLoop() DispatchLoop {
	return mainRunLoop{}
}

type quartzTap struct {
	port C.CFMachPortRef
}

func (t *quartzTap) Enable(enabled bool) {
	if t.port == 0 {
		return
	}
	flag := 0
	if enabled {
		flag = 1
	}
	C.enableTap(t.port, C.int(flag))
}

func (t *quartzTap) Release() {
	if t.port == 0 {
		return
	}
	C.CFRelease(C.CFTypeRef(t.port))
	t.port = 0
}

type quartzSource struct {
	ref C.CFRunLoopSourceRef
}

func (s *quartzSource) Release() {
	if s.ref == 0 {
		return
	}
	C.CFRelease(C.CFTypeRef(s.ref))
	s.ref = 0
}

// mainRunLoop schedules sources on CFRunLoopGetMain. Events are delivered
// while the process main thread runs its loop.
type mainRunLoop struct{}

func (mainRunLoop) Attach(src RunLoopSource, mode RunLoopMode) error {
	qs, ok := src.(*quartzSource)
	if !ok || qs.ref == 0 {
		return fmt.Errorf("unexpected run loop source %T", src)
	}
	if mode != CommonModes {
		return fmt.Errorf("unsupported run loop mode %q", mode)
	}
	C.addSourceToMainLoop(qs.ref)
	return nil
}

func (mainRunLoop) Detach(src RunLoopSource, mode RunLoopMode) {
	qs, ok := src.(*quartzSource)
	if !ok || qs.ref == 0 || mode != CommonModes {
		return
	}
	C.removeSourceFromMainLoop(qs.ref)
}

type quartzEvent struct {
	ref C.CGEventRef
}

func (e quartzEvent) Flags() Flags {
	return Flags(C.eventGetFlags(e.ref))
}

func (e quartzEvent) SetFlags(flags Flags) {
	C.eventSetFlags(e.ref, C.uint64_t(flags))
}

//export goEventTapCallback
func goEventTapCallback(_ C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	var ev Event
	if event != 0 {
		ev = quartzEvent{ref: event}
	}

	out := Dispatch(Handle(uintptr(refcon)), EventType(eventType), ev)
	if out == nil {
		return 0
	}
	if qe, ok := out.(quartzEvent); ok {
		return qe.ref
	}
	return event
}
