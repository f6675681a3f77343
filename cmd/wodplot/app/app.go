package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/alanbjohnston/pacsat-telem/internal/telem"
	"github.com/alanbjohnston/pacsat-telem/internal/wod"
)

// Run reads a WOD file and renders it as a strip chart image.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	frames, err := wod.ReadFrames(config.WodPath)
	if err != nil {
		return err
	}

	logger.Info("read WOD file",
		slog.String("file", config.WodPath),
		slog.Int("records", len(frames)),
		slog.String("size", humanize.IBytes(uint64(len(frames)*telem.FrameSize))))

	data := NewChartData(frames)

	renderer := NewRenderer(config.Width, config.Height)
	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	if config.FontPath != "" {
		annotator, err := NewAnnotator(config.FontPath)
		if err != nil {
			return fmt.Errorf("creating annotator: %w", err)
		}
		if err := annotator.Annotate(img, data); err != nil {
			return fmt.Errorf("annotating chart: %w", err)
		}
	} else if config.Verbose {
		logger.Info("no font given, skipping annotations")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	logger.Info("writing chart",
		slog.String("destination", config.OutputFile),
		slog.String("format", string(config.Format)))

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
