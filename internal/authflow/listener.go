// Package authflow runs the loopback HTTP listener an OAuth provider
// redirects back to. The listener is an explicitly owned, lifecycle-scoped
// handle: whoever starts it closes it, and nothing here is global.
package authflow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
)

// Listener accepts a single OAuth redirect on 127.0.0.1 and hands back the
// authorization code from its query string.
type Listener struct {
	ln     net.Listener
	server *http.Server
	code   chan string

	closeOnce sync.Once
}

// Start binds the loopback listener. Port 0 picks a free port; the actual
// address is available via RedirectURL afterwards.
func Start(port int) (*Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind loopback listener: %w", err)
	}

	l := &Listener{
		ln:   ln,
		code: make(chan string, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", l.handleCallback)
	l.server = &http.Server{Handler: mux}

	go l.server.Serve(ln)

	return l, nil
}

// RedirectURL returns the callback URL to register with the provider.
func (l *Listener) RedirectURL() string {
	return fmt.Sprintf("http://%s/callback", l.ln.Addr().String())
}

// Wait blocks until the provider redirects back with a code, or the
// context ends.
func (l *Listener) Wait(ctx context.Context) (string, error) {
	select {
	case code := <-l.code:
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close shuts the listener down. Safe to call more than once.
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.server.Shutdown(context.Background())
	})
	return err
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code parameter", http.StatusBadRequest)
		return
	}

	select {
	case l.code <- code:
	default:
		// already received one; later hits are ignored
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body>Login complete. You can close this window.</body></html>")
}
