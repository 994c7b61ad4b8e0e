package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sentinel-sim/sentinel/internal/models"
)

const pushHandshakeTimeout = 10 * time.Second

// EventStream yields push-channel events in arrival order.
type EventStream interface {
	Next() (models.Event, error)
	Close() error
}

// Push dials the service's websocket push channel.
type Push struct {
	URL    string
	Dialer *websocket.Dialer
}

// NewPush creates a push dialer for url
func NewPush(url string) *Push {
	return &Push{
		URL: url,
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: pushHandshakeTimeout,
		},
	}
}

// PushURL derives the websocket endpoint from the REST base URL when none is
// configured: http(s) becomes ws(s) and /ws is appended.
func PushURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Connect opens one push session. The returned stream is closed when ctx is
// cancelled, which unblocks a pending Next.
func (p *Push) Connect(ctx context.Context) (EventStream, error) {
	conn, _, err := p.Dialer.DialContext(ctx, p.URL, nil)
	if err != nil {
		return nil, &ChannelError{Op: "dial", Err: err}
	}
	s := &wsStream{conn: conn, done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

type wsStream struct {
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Next blocks for the next message. Frames that are not {event, data}
// objects are skipped.
func (s *wsStream) Next() (models.Event, error) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return models.Event{}, &ChannelError{Op: "read", Err: err}
		}
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
			continue
		}
		return ev, nil
	}
}

func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
