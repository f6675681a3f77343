package app

import (
	"image/color"
	"testing"
	"time"

	"github.com/alanbjohnston/pacsat-telem/internal/telem"
)

func testFrames(n int) []telem.Frame {
	frames := make([]telem.Frame, n)
	for i := range frames {
		frames[i] = telem.Frame{
			Timestamp:    uint32(1767225600 + i*60),
			Sequence:     uint16(i),
			ShtcTemp:     int16(1000 + i*10),
			ShtcHumidity: uint16(5000 - i*10),
			LpsPressure:  uint32(100_000 + i*100),
			BusVoltage:   12_000,
		}
	}
	return frames
}

func TestNewChartData(t *testing.T) {
	data := NewChartData(testFrames(10))

	if data.Records != 10 {
		t.Errorf("expected 10 records, got %d", data.Records)
	}
	if len(data.Series) != 4 {
		t.Fatalf("expected 4 series, got %d", len(data.Series))
	}
	for _, series := range data.Series {
		if len(series.Values) != 10 {
			t.Errorf("series %s: expected 10 values, got %d", series.Name, len(series.Values))
		}
	}
	if data.Series[0].Values[0] != 10.0 {
		t.Errorf("expected first temperature 10.0C, got %f", data.Series[0].Values[0])
	}

	wantStart := time.Unix(1767225600, 0).UTC()
	if !data.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, data.Start)
	}
	if !data.End.Equal(wantStart.Add(9 * time.Minute)) {
		t.Errorf("unexpected end time %v", data.End)
	}
}

func TestRenderProducesImage(t *testing.T) {
	renderer := NewRenderer(640, 320)
	img, err := renderer.Render(NewChartData(testFrames(60)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 320 {
		t.Fatalf("unexpected image size: %v", bounds)
	}

	// Background must be filled, and at least one series pixel drawn.
	if img.RGBAAt(1, 1) != backgroundColor {
		t.Errorf("corner pixel is not background: %v", img.RGBAAt(1, 1))
	}

	var plotted bool
	for y := 0; y < bounds.Dy() && !plotted; y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := img.RGBAAt(x, y)
			if c != backgroundColor && c != axisColor && c != (color.RGBA{}) {
				plotted = true
				break
			}
		}
	}
	if !plotted {
		t.Error("no series pixels drawn")
	}
}

func TestRenderTooFewRecords(t *testing.T) {
	renderer := NewRenderer(640, 320)
	if _, err := renderer.Render(NewChartData(testFrames(1))); err == nil {
		t.Error("expected error for a single record")
	}
}

func TestRenderFlatSeries(t *testing.T) {
	frames := make([]telem.Frame, 5)
	for i := range frames {
		frames[i] = telem.Frame{Timestamp: uint32(1767225600 + i)}
	}

	renderer := NewRenderer(640, 320)
	if _, err := renderer.Render(NewChartData(frames)); err != nil {
		t.Errorf("flat series must render without error: %v", err)
	}
}
