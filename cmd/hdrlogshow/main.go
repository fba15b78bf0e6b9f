// Command hdrlogshow is a minimal rendition of the original project's
// hdr_decoder.c example: it reads an interval log and prints a CLASSIC
// percentile report per interval.
package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	hdr "github.com/HdrHistogram/HdrHistogram"
)

func main() {
	var in *os.File
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			logrus.WithError(err).Error("failed to open log file")
			os.Exit(1)
		}
		defer f.Close()
		in = f
	} else {
		in = os.Stdin
	}

	reader := hdr.NewLogReader(in)
	header, err := reader.ReadHeader()
	if err != nil {
		logrus.WithError(err).Error("failed to read log header")
		os.Exit(1)
	}
	logrus.WithFields(logrus.Fields{
		"major": header.MajorVersion,
		"minor": header.MinorVersion,
		"start": header.StartTimestamp,
	}).Info("parsed log header")

	printer := hdr.NewPercentilePrinter(os.Stdout, 1)

	for {
		h, start, end, err := reader.Read(nil)
		if err == io.EOF {
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to read interval")
			os.Exit(1)
		}

		logrus.WithFields(logrus.Fields{"start": start, "end": end}).Info("interval")
		if err := printer.Print(h, hdr.Classic, 5); err != nil {
			logrus.WithError(err).Error("failed to print percentiles")
			os.Exit(1)
		}
	}
}
