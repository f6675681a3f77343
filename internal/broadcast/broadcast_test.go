package broadcast

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/alanbjohnston/pacsat-telem/internal/telem"
)

type sentPacket struct {
	from, to string
	pid      byte
	payload  []byte
}

type fakeSender struct {
	packets []sentPacket
	err     error
}

func (s *fakeSender) SendRawPacket(from, to string, pid byte, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.packets = append(s.packets, sentPacket{from, to, pid, payload})
	return nil
}

func TestSendTimeBeacon(t *testing.T) {
	sender := &fakeSender{}
	now := time.Unix(1767225600, 0)
	b := New(sender, WithNowFunc(func() time.Time { return now }))

	if err := b.SendTimeBeacon(); err != nil {
		t.Fatalf("send time beacon: %v", err)
	}

	if len(sender.packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(sender.packets))
	}
	p := sender.packets[0]
	if p.from != BroadcastCallsign || p.to != TimeCall || p.pid != PIDNoProtocol {
		t.Errorf("unexpected addressing: %+v", p)
	}
	if len(p.payload) != 4 {
		t.Fatalf("expected 4-byte payload, got %d", len(p.payload))
	}
	if got := binary.LittleEndian.Uint32(p.payload); got != 1767225600 {
		t.Errorf("expected payload time 1767225600, got %d", got)
	}
}

func TestSendSensorFrame(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender)

	frame := telem.Frame{Timestamp: 1767225600, Sequence: 3, ShtcTemp: 1100}
	if err := b.SendSensorFrame(frame); err != nil {
		t.Fatalf("send sensor frame: %v", err)
	}

	if len(sender.packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(sender.packets))
	}
	p := sender.packets[0]
	if p.from != BroadcastCallsign || p.to != TelemType1Call || p.pid != PIDNoProtocol {
		t.Errorf("unexpected addressing: %+v", p)
	}

	want, err := frame.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(p.payload, want) {
		t.Errorf("payload is not the raw frame bytes:\ngot  %v\nwant %v", p.payload, want)
	}
}

func TestSendFailurePropagates(t *testing.T) {
	sendErr := errors.New("TNC went away")
	b := New(&fakeSender{err: sendErr})

	if err := b.SendSensorFrame(telem.Frame{}); !errors.Is(err, sendErr) {
		t.Errorf("expected wrapped send error, got %v", err)
	}
	if err := b.SendTimeBeacon(); !errors.Is(err, sendErr) {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}

func TestNilSenderReturnsErrNoLink(t *testing.T) {
	b := New(nil)
	if err := b.SendSensorFrame(telem.Frame{}); !errors.Is(err, ErrNoLink) {
		t.Errorf("expected ErrNoLink, got %v", err)
	}
	if err := b.SendTimeBeacon(); !errors.Is(err, ErrNoLink) {
		t.Errorf("expected ErrNoLink, got %v", err)
	}
}
