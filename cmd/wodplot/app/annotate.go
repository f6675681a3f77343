package app

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

const (
	dpi      float64 = 72
	fontSize float64 = 13
)

// Annotator draws axis labels and the info line with a TTF font loaded
// at runtime.
type Annotator struct {
	context *freetype.Context
}

// NewAnnotator loads the font at fontPath and prepares a drawing context.
func NewAnnotator(fontPath string) (*Annotator, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetSrc(image.White)
	context.SetHinting(font.HintingFull)

	return &Annotator{context: context}, nil
}

// Annotate draws the time range, the legend and the record count onto a
// rendered chart.
func (a *Annotator) Annotate(img *image.RGBA, data *ChartData) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	lineHeight := a.context.PointToFixed(fontSize).Ceil() + 4
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	// Legend along the top border.
	x := defaultLeftBorder
	for _, series := range data.Series {
		label := fmt.Sprintf("%s [%s]", series.Name, series.Unit)
		if err := a.drawString(label, x, lineHeight); err != nil {
			return fmt.Errorf("drawing legend: %w", err)
		}
		x += (width - defaultLeftBorder - defaultRightBorder) / len(data.Series)
	}

	// Time range and record count along the bottom border.
	info := fmt.Sprintf("%s - %s  (%d records)",
		data.Start.UTC().Format(time.DateTime),
		data.End.UTC().Format(time.DateTime),
		data.Records)
	if err := a.drawString(info, defaultLeftBorder, height-lineHeight/2); err != nil {
		return fmt.Errorf("drawing info: %w", err)
	}

	return nil
}

func (a *Annotator) drawString(s string, x, y int) error {
	_, err := a.context.DrawString(s, freetype.Pt(x, y))
	return err
}
