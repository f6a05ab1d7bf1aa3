package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/room"
	"github.com/DoyleJ11/yaht-backend/internal/types"
	"github.com/DoyleJ11/yaht-backend/internal/wire"
)

// Conn is one handshaken client. Everything sent to it goes through its
// outbound queue, drained by a single writer goroutine.
type Conn struct {
	id   string
	name string
	wc   wire.Conn
	out  chan types.ServerMessage
	log  *zap.Logger

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup // writer and transport close

	// owned by the reader goroutine
	room      *room.Room
	spectator bool
}

func newConn(id, name string, wc wire.Conn, queueSize int, log *zap.Logger) *Conn {
	return &Conn{
		id:     id,
		name:   name,
		wc:     wc,
		out:    make(chan types.ServerMessage, queueSize),
		log:    log,
		closed: make(chan struct{}),
	}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) Name() string { return c.name }

func (c *Conn) member() room.Member {
	return room.Member{ID: c.id, Name: c.name, Outbox: c}
}

// Send queues m without blocking. A full queue means the client is not
// keeping up; the connection is closed and its cleanup takes it out of its
// room.
func (c *Conn) Send(m types.ServerMessage) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.out <- m:
		return true
	default:
		c.log.Warn("outbound queue full, disconnecting slow client", zap.Int("queue", cap(c.out)))
		c.Close()
		return false
	}
}

// Close stops the writer and closes the transport, which ends the reader.
// It never blocks: Send calls it from room actors, and a transport close
// may wait on the peer.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if err := c.wc.Close(); err != nil {
				c.log.Debug("close transport", zap.Error(err))
			}
		}()
	})
}

func (c *Conn) startWriter() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.closed:
				return
			case m := <-c.out:
				if err := writeMessage(c.wc, m); err != nil {
					c.log.Debug("write failed", zap.String("type", m.Kind()), zap.Error(err))
					c.Close()
					return
				}
			}
		}
	}()
}

func writeMessage(wc wire.Conn, m types.ServerMessage) error {
	b, err := types.EncodeServer(m)
	if err != nil {
		return err
	}
	return wc.WriteFrame(b)
}
