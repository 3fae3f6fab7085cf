package xfer

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ugorji/go/codec"
)

const (
	// WriteWait bounds how long one event may take to reach a follower.
	WriteWait = 10 * time.Second

	// Followers only send control frames.
	maxFollowerMessage = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxFollowerMessage,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Upgrade turns a follow request into a websocket connection.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxFollowerMessage)
	return conn, nil
}

// IsExpectedWSCloseError is true for the ways a follower normally goes away.
func IsExpectedWSCloseError(err error) bool {
	return err == io.EOF || websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

// WriteJSONtoWS sends v as one JSON text frame. A follower that does not
// take it within WriteWait gets an error.
func WriteJSONtoWS(c *websocket.Conn, v interface{}) error {
	if err := c.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	w, err := c.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := codec.NewEncoder(w, &codec.JsonHandle{}).Encode(v); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadJSONfromWS decodes the next frame into v.
func ReadJSONfromWS(c *websocket.Conn, v interface{}) error {
	_, r, err := c.NextReader()
	if err != nil {
		return err
	}
	if err := codec.NewDecoder(r, &codec.JsonHandle{}).Decode(v); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// CloseWS says goodbye with a normal close frame before closing c.
func CloseWS(c *websocket.Conn) error {
	deadline := time.Now().Add(WriteWait)
	c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.Close()
}
