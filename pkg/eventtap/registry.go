package eventtap

import "sync"

// Handle identifies a registered manager. Platforms carry it in place of a
// pointer so that C code never holds Go memory.
type Handle uintptr

var registry = struct {
	sync.RWMutex
	next     Handle
	managers map[Handle]*Manager
}{managers: make(map[Handle]*Manager)}

func register(m *Manager) Handle {
	registry.Lock()
	defer registry.Unlock()
	registry.next++
	h := registry.next
	registry.managers[h] = m
	return h
}

func unregister(h Handle) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.managers, h)
}

func lookup(h Handle) *Manager {
	registry.RLock()
	defer registry.RUnlock()
	return registry.managers[h]
}

// Dispatch is the single entry point platforms call for every event a tap
// receives. Events for an unknown handle pass through unchanged.
func Dispatch(h Handle, typ EventType, ev Event) Event {
	m := lookup(h)
	if m == nil {
		return ev
	}
	return m.handle(typ, ev)
}
