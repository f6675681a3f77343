package telem

import (
	"encoding/binary"
	"fmt"
	"time"
)

// FrameSize is the exact on-disk and on-air size of a telemetry frame.
// WOD files are raw concatenations of frames with no header or delimiter,
// so readers depend on this value never changing within a frame type.
const FrameSize = 32

// Validity bits carried in Frame.Flags.
const (
	FlagTempHumidityValid uint16 = 1 << 0
	FlagPressureValid     uint16 = 1 << 1
	FlagGasValid          uint16 = 1 << 2
)

// Frame is a single whole-orbit-data telemetry record. The field order and
// widths define the wire and file layout; see MarshalBinary.
type Frame struct {
	Timestamp     uint32 // Seconds since epoch at sample time
	Sequence      uint16 // Per-run sample counter
	Flags         uint16 // Validity bits, see Flag* constants
	ShtcTemp      int16  // SHTC3 temperature in centi-degrees C
	ShtcHumidity  uint16 // SHTC3 relative humidity in centi-percent
	LpsTemp       int16  // LPS22 temperature in centi-degrees C
	LpsPressure   uint32 // LPS22 pressure in Pa
	BoardTemp     int16  // Board temperature in centi-degrees C
	OxygenADC     uint16 // Raw O2 sensor ADC counts
	MethaneADC    uint16 // Raw methane sensor ADC counts
	AirQualityADC uint16 // Raw air quality sensor ADC counts
	BusVoltage    uint16 // Bus voltage in mV
}

// Time returns the frame timestamp as wall-clock time.
func (f *Frame) Time() time.Time {
	return time.Unix(int64(f.Timestamp), 0).UTC()
}

// MarshalBinary encodes the frame into its fixed 32-byte little-endian
// layout. The final four bytes are reserved and always zero.
func (f *Frame) MarshalBinary() ([]byte, error) {
	buf := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], f.Timestamp)
	binary.LittleEndian.PutUint16(buf[4:6], f.Sequence)
	binary.LittleEndian.PutUint16(buf[6:8], f.Flags)
	binary.LittleEndian.PutUint16(buf[8:10], uint16(f.ShtcTemp))
	binary.LittleEndian.PutUint16(buf[10:12], f.ShtcHumidity)
	binary.LittleEndian.PutUint16(buf[12:14], uint16(f.LpsTemp))
	binary.LittleEndian.PutUint32(buf[14:18], f.LpsPressure)
	binary.LittleEndian.PutUint16(buf[18:20], uint16(f.BoardTemp))
	binary.LittleEndian.PutUint16(buf[20:22], f.OxygenADC)
	binary.LittleEndian.PutUint16(buf[22:24], f.MethaneADC)
	binary.LittleEndian.PutUint16(buf[24:26], f.AirQualityADC)
	binary.LittleEndian.PutUint16(buf[26:28], f.BusVoltage)
	return buf, nil
}

// UnmarshalBinary decodes a frame from its 32-byte layout.
// It requires data to be at least FrameSize bytes long.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return fmt.Errorf("telem.Frame: need %d bytes, have %d", FrameSize, len(data))
	}

	f.Timestamp = binary.LittleEndian.Uint32(data[0:4])
	f.Sequence = binary.LittleEndian.Uint16(data[4:6])
	f.Flags = binary.LittleEndian.Uint16(data[6:8])
	f.ShtcTemp = int16(binary.LittleEndian.Uint16(data[8:10]))
	f.ShtcHumidity = binary.LittleEndian.Uint16(data[10:12])
	f.LpsTemp = int16(binary.LittleEndian.Uint16(data[12:14]))
	f.LpsPressure = binary.LittleEndian.Uint32(data[14:18])
	f.BoardTemp = int16(binary.LittleEndian.Uint16(data[18:20]))
	f.OxygenADC = binary.LittleEndian.Uint16(data[20:22])
	f.MethaneADC = binary.LittleEndian.Uint16(data[22:24])
	f.AirQualityADC = binary.LittleEndian.Uint16(data[24:26])
	f.BusVoltage = binary.LittleEndian.Uint16(data[26:28])
	return nil
}
