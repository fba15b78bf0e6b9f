// Command hdrlogcollector is a minimal rendition of the original project's
// hiccup.c example: it samples scheduling jitter at a fixed cadence and
// writes an interval log. It is a thin demonstration of the library's
// public API, not part of the histogram package itself.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	hdr "github.com/HdrHistogram/HdrHistogram"
)

func main() {
	interval := flag.Int("i", 1, "sampling interval in seconds (minimum 1)")
	filename := flag.String("f", "", "output log file (default stdout)")
	flag.Parse()

	if *interval < 1 {
		*interval = 1
	}

	out := os.Stdout
	if *filename != "" {
		f, err := os.Create(*filename)
		if err != nil {
			logrus.WithError(err).Error("failed to open output file")
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	cfg := hdr.Config{
		LowestDiscernibleValue: 1,
		HighestTrackableValue:  3_600_000_000,
		SignificantFigures:     3,
	}
	active, err := hdr.NewAtomic(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to allocate histogram")
		os.Exit(1)
	}
	inactive, err := hdr.NewAtomic(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to allocate histogram")
		os.Exit(1)
	}
	recorder := hdr.NewIntervalRecorder(active, inactive)

	logWriter := hdr.NewLogWriter(out)
	startTime := time.Now()
	if err := logWriter.WriteHeader("hdrlogcollector", startTime); err != nil {
		logrus.WithError(err).Error("failed to write log header")
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	stopRecording := make(chan struct{})
	go recordHiccups(recorder, stopRecording)

	ticker := time.NewTicker(time.Duration(*interval) * time.Second)
	defer ticker.Stop()

	intervalStart := startTime
	for {
		select {
		case <-sigCh:
			close(stopRecording)
			finished := recorder.Sample()
			_ = logWriter.Write(intervalStart, time.Now(), finished)
			logrus.Info("shutting down")
			os.Exit(0)
		case now := <-ticker.C:
			finished := recorder.Sample()
			if err := logWriter.Write(intervalStart, now, finished); err != nil {
				logrus.WithError(err).Error("failed to write interval")
			}
			finished.Reset()
			intervalStart = now
		}
	}
}

// recordHiccups measures how far each 1ms sleep overshoots, recording the
// overshoot in nanoseconds — the same signal the original hiccup.c example
// tracks.
func recordHiccups(recorder *hdr.IntervalRecorder, stop <-chan struct{}) {
	const tick = time.Millisecond
	for {
		select {
		case <-stop:
			return
		default:
		}
		before := time.Now()
		time.Sleep(tick)
		overshoot := time.Since(before) - tick
		if overshoot < 0 {
			overshoot = 0
		}
		recorder.Update(func(h *hdr.Histogram) {
			h.Record(overshoot.Nanoseconds())
		})
	}
}
