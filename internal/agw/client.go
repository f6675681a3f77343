package agw

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	// DefaultInboundCapacity is the default size of the inbound frame buffer.
	DefaultInboundCapacity = 256

	// MaxFrameDataLen bounds the payload length accepted from the TNC.
	// AX.25 UI frames carry far less; anything bigger is a corrupt or
	// hostile header, not a frame worth allocating for.
	MaxFrameDataLen = 4096

	dialTimeout = 5 * time.Second
)

// ErrFrameTooLarge is returned when a TNC header announces a payload
// longer than MaxFrameDataLen.
var ErrFrameTooLarge = errors.New("agw: frame payload exceeds maximum length")

// Sender is the outbound side of the TNC link. The telemetry broadcaster
// depends on this interface only.
type Sender interface {
	SendRawPacket(from, to string, pid byte, payload []byte) error
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) func(*Client) {
	return func(c *Client) {
		c.logger = logger.With(slog.String("tnc", c.addr))
	}
}

// WithInboundCapacity sets the capacity of the inbound frame buffer.
func WithInboundCapacity(capacity int) func(*Client) {
	return func(c *Client) {
		c.inboundCapacity = capacity
	}
}

// Client is an AGWPE TNC client. Sends are serialized with a mutex so the
// sampling loop and a beacon timer can share one connection; receives run
// on their own goroutine via Listen.
type Client struct {
	addr string
	conn net.Conn

	writeMu sync.Mutex

	inbound         *FrameBuffer
	inboundCapacity int

	logger *slog.Logger
}

// Dial connects to an AGWPE TNC at addr (host:port).
func Dial(addr string, options ...func(*Client)) (*Client, error) {
	c := Client{
		addr:            addr,
		inboundCapacity: DefaultInboundCapacity,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&c)
	}

	inbound, err := NewFrameBuffer(c.inboundCapacity)
	if err != nil {
		return nil, fmt.Errorf("creating inbound buffer: %w", err)
	}
	c.inbound = inbound

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to TNC: %w", err)
	}
	c.conn = conn

	return &c, nil
}

// Register registers a callsign with the TNC so it will accept frames
// sent from it.
func (c *Client) Register(call string) error {
	if err := c.writeFrame(Header{DataKind: KindRegister, CallFrom: call}, nil); err != nil {
		return fmt.Errorf("registering callsign %s: %w", call, err)
	}
	return nil
}

// SendRawPacket sends one unproto frame from the from callsign to the to
// service callsign with the given AX.25 PID.
func (c *Client) SendRawPacket(from, to string, pid byte, payload []byte) error {
	header := Header{
		DataKind: KindUnproto,
		PID:      pid,
		CallFrom: from,
		CallTo:   to,
		DataLen:  uint32(len(payload)),
	}
	if err := c.writeFrame(header, payload); err != nil {
		return fmt.Errorf("sending packet to %s: %w", to, err)
	}
	return nil
}

func (c *Client) writeFrame(header Header, payload []byte) error {
	data, err := header.MarshalBinary()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.conn.Write(data); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := c.conn.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// Inbound returns the buffer the listener drains received frames into.
func (c *Client) Inbound() *FrameBuffer {
	return c.inbound
}

// Listen reads frames from the TNC into the inbound buffer until the
// context is cancelled or the connection breaks. It is meant to run on
// its own goroutine; the sampling loop never blocks on it.
func (c *Client) Listen(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.Close() // unblock the reader
	})
	defer stop()

	c.logger.Info("TNC listener started")

	reader := bufio.NewReader(c.conn)
	for {
		frame, err := readFrame(reader)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				c.logger.Info("TNC listener stopped")
				return
			}
			c.logger.Error(fmt.Sprintf("reading TNC frame: %s", err))
			return
		}

		if err := c.inbound.Insert(frame); err != nil {
			c.logger.Error(err.Error())
		}
	}
}

func readFrame(reader *bufio.Reader) (*InboundFrame, error) {
	raw := make([]byte, HeaderLen)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return nil, err
	}

	var header Header
	if err := header.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	if header.DataLen > MaxFrameDataLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, header.DataLen)
	}

	var payload []byte
	if header.DataLen > 0 {
		payload = make([]byte, header.DataLen)
		if _, err := io.ReadFull(reader, payload); err != nil {
			return nil, err
		}
	}

	return &InboundFrame{
		Header:   header,
		Payload:  payload,
		Received: time.Now(),
	}, nil
}

// Close shuts the TNC connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}
