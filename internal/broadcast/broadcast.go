// Package broadcast serializes telemetry into packet radio frames. Sends
// are best effort: the WOD file is the durable record, so a dead radio
// link must never stop local logging.
package broadcast

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alanbjohnston/pacsat-telem/internal/agw"
	"github.com/alanbjohnston/pacsat-telem/internal/telem"
)

// Fixed identities on the downlink.
const (
	BroadcastCallsign = "AMSAT-11"
	TimeCall          = "TIME-1"
	TelemType1Call    = "TLMP1"
	TelemType2Call    = "TLMP2" // reserved for a second frame type
)

// AX.25 PID values used across the pacsat system. Only PIDNoProtocol is
// sent from here; the others belong to the command and file layers.
const (
	PIDCommand    byte = 0xBC
	PIDFile       byte = 0xBB
	PIDNoProtocol byte = 0xF0
)

// ErrNoLink is returned when no TNC connection is available.
var ErrNoLink = errors.New("no TNC link")

// WithLogger sets the logger for the broadcaster.
func WithLogger(logger *slog.Logger) func(*Broadcaster) {
	return func(b *Broadcaster) {
		b.logger = logger
	}
}

// WithNowFunc overrides the clock used for time beacons.
func WithNowFunc(nowFn func() time.Time) func(*Broadcaster) {
	return func(b *Broadcaster) {
		b.nowFn = nowFn
	}
}

// Broadcaster sends telemetry frames and time beacons through a packet
// sender. A nil sender is tolerated and turns every send into ErrNoLink.
type Broadcaster struct {
	sender agw.Sender
	nowFn  func() time.Time
	logger *slog.Logger
}

// New creates a broadcaster on top of the given sender.
func New(sender agw.Sender, options ...func(*Broadcaster)) *Broadcaster {
	b := Broadcaster{
		sender: sender,
		nowFn:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&b)
	}

	return &b
}

// SendTimeBeacon broadcasts the current time as a 4-byte little-endian
// seconds count to the TIME-1 service.
func (b *Broadcaster) SendTimeBeacon() error {
	if b.sender == nil {
		return ErrNoLink
	}

	now := b.nowFn()
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(now.Unix()))

	if err := b.sender.SendRawPacket(BroadcastCallsign, TimeCall, PIDNoProtocol, payload); err != nil {
		return fmt.Errorf("sending time beacon: %w", err)
	}

	b.logger.Debug("sent time beacon", slog.Time("time", now))
	return nil
}

// SendSensorFrame broadcasts one telemetry frame as raw bytes to the
// TLMP1 service.
func (b *Broadcaster) SendSensorFrame(frame telem.Frame) error {
	if b.sender == nil {
		return ErrNoLink
	}

	payload, err := frame.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}

	if err := b.sender.SendRawPacket(BroadcastCallsign, TelemType1Call, PIDNoProtocol, payload); err != nil {
		return fmt.Errorf("sending sensor telemetry: %w", err)
	}

	b.logger.Debug("sent sensor telemetry", slog.Int("timestamp", int(frame.Timestamp)))
	return nil
}
