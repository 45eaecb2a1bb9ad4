// Package eventtap grabs pointer events at the HID level through the macOS
// Quartz event tap, reports each event kind to an observer and rewrites the
// modifier flags carried by the event before it continues to applications.
//
// The platform primitives (tap creation, run loop sources, the main run loop)
// sit behind the Platform and DispatchLoop interfaces so the lifecycle can be
// driven by the fake platform in package taptest.
package eventtap
