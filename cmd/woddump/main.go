// woddump decodes a raw WOD telemetry file and prints one line per
// record, which is the same view a ground station gets after downlink.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alanbjohnston/pacsat-telem/internal/telem"
	"github.com/alanbjohnston/pacsat-telem/internal/wod"
)

func main() {
	var path string
	flag.StringVar(&path, "f", "", "Path to the WOD file")
	flag.Parse()

	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: woddump -f <wod file>")
		os.Exit(1)
	}

	frames, err := wod.ReadFrames(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTIME\tTEMP C\tHUM %\tPRESS Pa\tBOARD C\tBUS mV\tFLAGS")
	for _, f := range frames {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\t%d\t%.2f\t%d\t%#04x\n",
			f.Sequence,
			f.Time().Format(time.DateTime),
			float64(f.ShtcTemp)/100,
			float64(f.ShtcHumidity)/100,
			f.LpsPressure,
			float64(f.BoardTemp)/100,
			f.BusVoltage,
			f.Flags)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("%d records, %s\n", len(frames), humanize.IBytes(uint64(len(frames)*telem.FrameSize)))
}
