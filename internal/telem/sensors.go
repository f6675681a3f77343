package telem

import (
	"time"
)

// ADC channel assignments on the payload board.
const (
	ADCMethaneChan    = 0
	ADCAirQualityChan = 1
	ADCOxygenChan     = 2
	ADCBusVoltageChan = 3
)

// Reader produces a telemetry frame for a sample instant. Implementations
// are expected to mask sensor-level faults and always return a frame;
// unreadable sensors are reported through the validity flags instead.
type Reader interface {
	Read(now time.Time) Frame
}

// SimReader stands in for the Pi sensor stack. It returns fixed plausible
// readings with all validity flags set, which is enough to exercise the
// sampling, storage and broadcast paths on a bench without hardware.
type SimReader struct {
	seq uint16
}

// NewSimReader returns a reader with its sequence counter at zero.
func NewSimReader() *SimReader {
	return &SimReader{}
}

func (r *SimReader) Read(now time.Time) Frame {
	f := Frame{
		Timestamp:     uint32(now.Unix()),
		Sequence:      r.seq,
		Flags:         FlagTempHumidityValid | FlagPressureValid | FlagGasValid,
		ShtcTemp:      1100, // 11.00 C
		ShtcHumidity:  5500, // 55.00 %
		LpsTemp:       2200, // 22.00 C
		LpsPressure:   66_000,
		BoardTemp:     2500,
		OxygenADC:     512,
		MethaneADC:    48,
		AirQualityADC: 130,
	}

	// The bus voltage ADC is calibrated against two known points of the
	// divider: 0 counts = 0 mV, 1023 counts = 16500 mV.
	f.BusVoltage = uint16(Interpolate(768, 0, 1023, 0, 16500))

	r.seq++
	return f
}

// Interpolate is straight line interpolation between the calibration
// points (x0, y0) and (x1, y1), evaluated at x.
func Interpolate(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (y1-y0)*((x-x0)/(x1-x0))
}
