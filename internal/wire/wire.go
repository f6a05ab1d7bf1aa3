// Package wire moves length-prefixed frames over a byte stream. Each frame is
// a 4-byte big-endian payload length followed by the payload.
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	HeaderSize      = 4
	DefaultMaxFrame = 64 * 1024
)

var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// Conn is one framed, bidirectional link to a peer. ReadFrame is called from
// a single reader goroutine and WriteFrame from a single writer goroutine.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(payload []byte) error
	SetReadDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// ReadFrame reads one frame from r, rejecting lengths above maxFrame before
// allocating.
func ReadFrame(r io.Reader, maxFrame int) ([]byte, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if uint64(n) > uint64(maxFrame) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, maxFrame)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// WriteFrame writes payload as one frame to w.
func WriteFrame(w io.Writer, payload []byte, maxFrame int) error {
	if len(payload) > maxFrame {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), maxFrame)
	}
	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// StreamConn frames a net.Conn.
type StreamConn struct {
	conn     net.Conn
	r        *bufio.Reader
	w        *bufio.Writer
	maxFrame int

	closeOnce sync.Once
	closeErr  error
}

func NewStreamConn(conn net.Conn, maxFrame int) *StreamConn {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	return &StreamConn{
		conn:     conn,
		r:        bufio.NewReader(conn),
		w:        bufio.NewWriter(conn),
		maxFrame: maxFrame,
	}
}

func (c *StreamConn) ReadFrame() ([]byte, error) {
	return ReadFrame(c.r, c.maxFrame)
}

func (c *StreamConn) WriteFrame(payload []byte) error {
	if err := WriteFrame(c.w, payload, c.maxFrame); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *StreamConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *StreamConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Close closes the socket. Every WriteFrame flushes, so nothing is pending.
// It is safe to call more than once.
func (c *StreamConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
