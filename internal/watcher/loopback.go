package watcher

import (
	"net/http"
	"sync"
)

const callbackPage = `<!doctype html><html><body><p>Authorization received. You can close this window.</p></body></html>`

// Loopback is a Location fed by redirects hitting a local HTTP listener.
type Loopback struct {
	mu     sync.Mutex
	url    string
	closed bool
}

func NewLoopback() *Loopback {
	return &Loopback{}
}

func (l *Loopback) URL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.url
}

func (l *Loopback) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close marks the location as gone, e.g. when the listener stops.
func (l *Loopback) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

// ServeHTTP records the request URL. Once a redirect carrying a result has
// been seen, later requests such as favicon lookups do not replace it.
func (l *Loopback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	if !isRedirect(l.url) {
		l.url = r.URL.String()
	}
	l.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(callbackPage))
}
