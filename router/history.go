package router

import "sync"

// NavigateFunc observes a completed navigation.
type NavigateFunc func(from, to Route)

// History is a browser-style navigation stack over a Router.
type History struct {
	router *Router

	mu        sync.Mutex
	entries   []Route
	index     int
	listeners []NavigateFunc
}

// NewHistory starts a history at start.
func NewHistory(r *Router, start string) (*History, error) {
	route, err := r.Resolve(start)
	if err != nil {
		return nil, err
	}
	return &History{router: r, entries: []Route{route}}, nil
}

// OnNavigate registers fn. Listeners run in registration order after each
// successful navigation.
func (h *History) OnNavigate(fn NavigateFunc) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Current returns the active route.
func (h *History) Current() Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push navigates to path and drops any forward entries.
func (h *History) Push(path string) (Route, error) {
	to, err := h.router.Resolve(path)
	if err != nil {
		return Route{}, err
	}
	h.mu.Lock()
	from := h.entries[h.index]
	h.entries = append(h.entries[:h.index+1], to)
	h.index++
	h.mu.Unlock()

	h.notify(from, to)
	return to, nil
}

// Replace swaps the active entry for path.
func (h *History) Replace(path string) (Route, error) {
	to, err := h.router.Resolve(path)
	if err != nil {
		return Route{}, err
	}
	h.mu.Lock()
	from := h.entries[h.index]
	h.entries[h.index] = to
	h.mu.Unlock()

	h.notify(from, to)
	return to, nil
}

// Back moves one entry back. It reports false at the first entry.
func (h *History) Back() (Route, bool) {
	return h.move(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (h *History) Forward() (Route, bool) {
	return h.move(1)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) move(delta int) (Route, bool) {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		current := h.entries[h.index]
		h.mu.Unlock()
		return current, false
	}
	from := h.entries[h.index]
	h.index = next
	to := h.entries[next]
	h.mu.Unlock()

	h.notify(from, to)
	return to, true
}

func (h *History) notify(from, to Route) {
	h.mu.Lock()
	listeners := append([]NavigateFunc(nil), h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
}
