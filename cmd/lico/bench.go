package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"

	"github.com/deepteams/lico"
)

// benchResult is one row of the bench report. The csv tags feed the
// -csv output.
type benchResult struct {
	File       string  `csv:"file"`
	InputSize  int     `csv:"input_bytes"`
	OutputSize int     `csv:"frame_bytes"`
	Ratio      float64 `csv:"ratio"`
	EncodeMBps float64 `csv:"encode_mb_s"`
	DecodeMBps float64 `csv:"decode_mb_s"`
}

func runBench(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("expected at least one input file")
	}
	iters := ctx.Int("n")
	if iters < 1 {
		iters = 1
	}
	opts := &lico.Options{
		WordWidth: ctx.Int("width"),
		Workers:   ctx.Int("workers"),
	}

	var results []benchResult
	for _, input := range ctx.Args().Slice() {
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}

		var frame []byte
		encBest := time.Duration(1<<63 - 1)
		for i := 0; i < iters; i++ {
			start := time.Now()
			frame, err = lico.EncodeBytes(data, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			encBest = min(encBest, time.Since(start))
		}

		decBest := time.Duration(1<<63 - 1)
		for i := 0; i < iters; i++ {
			start := time.Now()
			if _, err := lico.DecodeBytes(frame, opts); err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			decBest = min(decBest, time.Since(start))
		}

		r := benchResult{
			File:       filepath.Base(input),
			InputSize:  len(data),
			OutputSize: len(frame),
			Ratio:      ratio(len(data), len(frame)),
			EncodeMBps: throughput(len(data), encBest),
			DecodeMBps: throughput(len(data), decBest),
		}
		results = append(results, r)
		fmt.Printf("%-24s %9d -> %9d  %5.2fx  enc %7.1f MB/s  dec %7.1f MB/s\n",
			r.File, r.InputSize, r.OutputSize, r.Ratio, r.EncodeMBps, r.DecodeMBps)
	}

	if path := ctx.String("csv"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&results, f); err != nil {
			return err
		}
	}
	return nil
}

// throughput converts a byte count and duration to MB/s.
func throughput(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds() / 1e6
}
