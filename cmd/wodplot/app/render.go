package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/alanbjohnston/pacsat-telem/internal/telem"
)

const (
	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 60
	defaultBottomBorder = 40
	defaultRightBorder  = 20
)

var (
	backgroundColor = color.RGBA{R: 16, G: 16, B: 24, A: 255}
	axisColor       = color.RGBA{R: 200, G: 200, B: 200, A: 255}

	seriesColors = []color.RGBA{
		{R: 255, G: 99, B: 71, A: 255},  // temperature
		{R: 65, G: 105, B: 225, A: 255}, // humidity
		{R: 60, G: 179, B: 113, A: 255}, // pressure
		{R: 255, G: 215, B: 0, A: 255},  // bus voltage
	}
)

// Series is one plotted sensor channel.
type Series struct {
	Name   string
	Unit   string
	Color  color.RGBA
	Values []float64
}

// ChartData holds the decoded channels of a WOD file.
type ChartData struct {
	Start   time.Time
	End     time.Time
	Records int
	Series  []Series
}

// NewChartData extracts the plotted channels from decoded frames.
func NewChartData(frames []telem.Frame) *ChartData {
	data := ChartData{
		Records: len(frames),
		Series: []Series{
			{Name: "SHTC3 temp", Unit: "C", Color: seriesColors[0]},
			{Name: "humidity", Unit: "%", Color: seriesColors[1]},
			{Name: "pressure", Unit: "kPa", Color: seriesColors[2]},
			{Name: "bus", Unit: "V", Color: seriesColors[3]},
		},
	}

	if len(frames) > 0 {
		data.Start = frames[0].Time()
		data.End = frames[len(frames)-1].Time()
	}

	for _, f := range frames {
		data.Series[0].Values = append(data.Series[0].Values, float64(f.ShtcTemp)/100)
		data.Series[1].Values = append(data.Series[1].Values, float64(f.ShtcHumidity)/100)
		data.Series[2].Values = append(data.Series[2].Values, float64(f.LpsPressure)/1000)
		data.Series[3].Values = append(data.Series[3].Values, float64(f.BusVoltage)/1000)
	}

	return &data
}

// BorderConfig defines the white space around the plot area.
type BorderConfig struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// Renderer draws WOD sensor channels as a strip chart.
type Renderer struct {
	width  int
	height int
	border BorderConfig
}

// NewRenderer creates a renderer producing images of the given size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		width:  width,
		height: height,
		border: BorderConfig{
			Top:    defaultTopBorder,
			Left:   defaultLeftBorder,
			Bottom: defaultBottomBorder,
			Right:  defaultRightBorder,
		},
	}
}

// Render draws every series over a shared time axis. Each series is
// normalized to its own min/max so channels with different units share
// the plot.
func (r *Renderer) Render(data *ChartData) (*image.RGBA, error) {
	if data.Records < 2 {
		return nil, fmt.Errorf("not enough records to plot: %d", data.Records)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	plot := image.Rect(
		r.border.Left,
		r.border.Top,
		r.width-r.border.Right,
		r.height-r.border.Bottom,
	)

	// Axes
	drawLine(img, plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y, axisColor)
	drawLine(img, plot.Min.X, plot.Min.Y, plot.Min.X, plot.Max.Y, axisColor)

	for _, series := range data.Series {
		r.drawSeries(img, plot, series)
	}

	return img, nil
}

func (r *Renderer) drawSeries(img *image.RGBA, plot image.Rectangle, series Series) {
	lo, hi := bounds(series.Values)
	if hi == lo {
		hi = lo + 1 // flat series plots as a midline
	}

	scaleX := float64(plot.Dx()-1) / float64(len(series.Values)-1)
	scaleY := float64(plot.Dy() - 1)

	prevX, prevY := -1, -1
	for i, v := range series.Values {
		x := plot.Min.X + int(float64(i)*scaleX)
		y := plot.Max.Y - 1 - int((v-lo)/(hi-lo)*scaleY)

		if prevX >= 0 {
			drawLine(img, prevX, prevY, x, y, series.Color)
		}
		prevX, prevY = x, y
	}
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// drawLine is integer Bresenham between two points.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)

	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
