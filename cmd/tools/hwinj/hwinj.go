// Command hwinj overlays a hardware-injection time series onto a strain
// channel and writes the result back into the store as a new channel.
package main

import (
	"flag"
	"log"

	"github.com/banshee-data/coinc.report/internal/fsutil"
	"github.com/banshee-data/coinc.report/internal/strain"
)

var (
	strainFile = flag.String("strain-file", "", "Strain store file holding the input channel")
	channel    = flag.String("channel", "", "Input channel name")
	hwinjFile  = flag.String("hwinj-file", "", "Flat text file with one injection sample per line")
	hwinjStart = flag.Float64("hwinj-start-time", 0, "GPS start time of the injection")
	outChannel = flag.String("output-channel", "", "Channel name for the overlaid result")
)

func main() {
	flag.Parse()

	if *strainFile == "" {
		log.Fatal("a strain store file is required")
	}
	if *channel == "" {
		log.Fatal("an input channel name is required")
	}
	if *hwinjFile == "" {
		log.Fatal("an injection file is required")
	}
	if *outChannel == "" {
		log.Fatal("an output channel name is required")
	}

	if err := run(); err != nil {
		log.Fatalf("hwinj: %v", err)
	}
}

func run() error {
	st, err := strain.Open(*strainFile)
	if err != nil {
		return err
	}
	defer st.Close()

	series, err := st.Channel(*channel)
	if err != nil {
		return err
	}

	injection, err := strain.LoadInjection(fsutil.OSFileSystem{}, *hwinjFile)
	if err != nil {
		return err
	}

	out, err := strain.Overlay(series, injection, *hwinjStart, *outChannel)
	if err != nil {
		return err
	}
	if err := st.WriteChannel(out); err != nil {
		return err
	}

	log.Printf("wrote channel %s (%d samples) to %s", out.Name, len(out.Samples), st.Path)
	return nil
}
