package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"webscada.dev/scada-core-service/pkg/broadcast"
)

// WSDialer connects to the server's realtime websocket endpoint.
type WSDialer struct {
	// BaseURL is the server root, e.g. "ws://localhost:1080".
	BaseURL     string
	DialTimeout time.Duration
}

func (d *WSDialer) Dial(projectID string) (Stream, error) {
	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}

	url := fmt.Sprintf("%s/ws/%s", strings.TrimRight(d.BaseURL, "/"), projectID)
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &wsStream{conn: conn}, nil
}

type wsStream struct {
	conn *websocket.Conn
}

func (s *wsStream) Next() (*broadcast.Event, error) {
	var ev broadcast.Event
	if err := s.conn.ReadJSON(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
