// ABOUTME: WebSocket transport for the Manager built on coder/websocket
// ABOUTME: Derives the ws:// or wss:// URL from the REST base URL

package conn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
)

// DefaultReadLimit bounds a single inbound frame.
const DefaultReadLimit = 4 << 20

// WebSocketDialer dials the backend event stream.
type WebSocketDialer struct {
	URL string
	// Header supplies per-dial request headers, e.g. credentials. An error fails the dial.
	Header     func() (http.Header, error)
	HTTPClient *http.Client
	ReadLimit  int64
}

// Dial opens a WebSocket connection.
func (d *WebSocketDialer) Dial(ctx context.Context) (Conn, error) {
	opts := &websocket.DialOptions{HTTPClient: d.HTTPClient}
	if d.Header != nil {
		h, err := d.Header()
		if err != nil {
			return nil, fmt.Errorf("dial headers: %w", err)
		}
		opts.HTTPHeader = h
	}
	c, _, err := websocket.Dial(ctx, d.URL, opts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.URL, err)
	}

	limit := d.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	c.SetReadLimit(limit)
	return &wsConn{c: c}, nil
}

type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.c.Read(ctx)
	return data, err
}

func (w *wsConn) Write(ctx context.Context, data []byte) error {
	return w.c.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "")
}

// StreamURL converts an http(s) base URL into the ws(s) URL at path.
func StreamURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = path
	u.RawQuery = ""
	return u.String(), nil
}
