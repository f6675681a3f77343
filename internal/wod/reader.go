package wod

import (
	"errors"
	"fmt"
	"os"

	"github.com/alanbjohnston/pacsat-telem/internal/telem"
)

// ErrTruncatedRecord is returned when a WOD file is not a whole number
// of frame-sized records.
var ErrTruncatedRecord = errors.New("WOD file contains a partial record")

// ReadFrames decodes every frame in a WOD file. The file must be a raw
// concatenation of telem.FrameSize records; a trailing partial record is
// an error because the writer never leaves one behind.
func ReadFrames(path string) ([]telem.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading WOD file: %w", err)
	}

	if len(data)%telem.FrameSize != 0 {
		return nil, fmt.Errorf("%s: %d bytes: %w", path, len(data), ErrTruncatedRecord)
	}

	frames := make([]telem.Frame, len(data)/telem.FrameSize)
	for i := range frames {
		if err := frames[i].UnmarshalBinary(data[i*telem.FrameSize:]); err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", i, err)
		}
	}

	return frames, nil
}
