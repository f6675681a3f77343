// Package agw implements the client side of the AGWPE TCP protocol used
// to talk to a packet radio TNC. Outbound telemetry goes out as unproto
// frames; inbound frames are drained into a bounded buffer by a listener
// that runs independently of the sampling loop.
package agw

import (
	"encoding/binary"
	"fmt"
)

// HeaderLen is the fixed size of an AGWPE frame header on the wire.
const HeaderLen = 36

// maxCallsignLen is the longest callsign the header can carry, leaving
// room for the terminating NUL in the 10-byte field.
const maxCallsignLen = 9

// Data kinds used by this client.
const (
	KindRegister    byte = 'X' // register callsign with the TNC
	KindUnproto     byte = 'M' // send unproto (UI) frame
	KindMonitorOn   byte = 'm' // enable monitoring of heard frames
	KindUnprotoInfo byte = 'U' // monitored unproto frame from the TNC
)

// Header is the decoded form of the 36-byte AGWPE frame header. All
// multi-byte fields are little-endian on the wire.
type Header struct {
	Port     uint8
	DataKind byte
	PID      byte
	CallFrom string
	CallTo   string
	DataLen  uint32
}

// MarshalBinary encodes the header into its wire layout.
func (h *Header) MarshalBinary() ([]byte, error) {
	if len(h.CallFrom) > maxCallsignLen {
		return nil, fmt.Errorf("agw.Header: callsign too long: %q", h.CallFrom)
	}
	if len(h.CallTo) > maxCallsignLen {
		return nil, fmt.Errorf("agw.Header: callsign too long: %q", h.CallTo)
	}

	buf := make([]byte, HeaderLen)
	buf[0] = h.Port
	buf[4] = h.DataKind
	buf[6] = h.PID
	copy(buf[8:18], h.CallFrom)
	copy(buf[18:28], h.CallTo)
	binary.LittleEndian.PutUint32(buf[28:32], h.DataLen)
	return buf, nil
}

// UnmarshalBinary decodes a header from its wire layout.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderLen {
		return fmt.Errorf("agw.Header: need %d bytes, have %d", HeaderLen, len(data))
	}

	h.Port = data[0]
	h.DataKind = data[4]
	h.PID = data[6]
	h.CallFrom = callsign(data[8:18])
	h.CallTo = callsign(data[18:28])
	h.DataLen = binary.LittleEndian.Uint32(data[28:32])
	return nil
}

// callsign trims a NUL-padded callsign field.
func callsign(field []byte) string {
	for i, b := range field {
		if b == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}
