// Command lico compresses and decompresses 24-bit uncompressed BMP
// images losslessly.
//
// Usage:
//
//	lico enc [-width N] [-workers N] [-o out.lico] input.bmp
//	lico dec [-workers N] [-o out.bmp] input.lico
//	lico info input.lico
//	lico conv [-o out.bmp] input.{png,jpg,gif}
//	lico bench [-n N] [-csv out.csv] input.bmp...
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("lico: %s", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lico",
		Usage: "Lossless compression for 24-bit uncompressed BMP images",
		Commands: []*cli.Command{
			{
				Name:      "enc",
				Usage:     "Compress a BMP image to a .lico frame",
				ArgsUsage: "INPUT.bmp",
				Action:    runEnc,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "o", Usage: "output `FILE` (default: input with .lico extension)"},
					&cli.IntFlag{Name: "width", Value: 0, Usage: "zero-elimination word width in `BYTES` (1, 2, 4, or 8)"},
					&cli.IntFlag{Name: "workers", Value: 0, Usage: "worker goroutines (0 = all CPUs)"},
				},
			},
			{
				Name:      "dec",
				Usage:     "Decompress a .lico frame back to BMP",
				ArgsUsage: "INPUT.lico",
				Action:    runDec,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "o", Usage: "output `FILE` (default: input with .bmp extension)"},
					&cli.IntFlag{Name: "workers", Value: 0, Usage: "worker goroutines (0 = all CPUs)"},
				},
			},
			{
				Name:      "info",
				Usage:     "Show frame metadata without decoding",
				ArgsUsage: "INPUT.lico",
				Action:    runInfo,
			},
			{
				Name:      "conv",
				Usage:     "Re-encode a PNG/JPEG/GIF image into the supported BMP subset",
				ArgsUsage: "INPUT",
				Action:    runConv,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "o", Usage: "output `FILE` (default: input with .bmp extension)"},
				},
			},
			{
				Name:      "bench",
				Usage:     "Time encode and decode over one or more BMP files",
				ArgsUsage: "INPUT.bmp...",
				Action:    runBench,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 5, Usage: "iterations per file"},
					&cli.StringFlag{Name: "csv", Usage: "write results to `FILE` as CSV"},
					&cli.IntFlag{Name: "width", Value: 0, Usage: "zero-elimination word width in `BYTES`"},
					&cli.IntFlag{Name: "workers", Value: 0, Usage: "worker goroutines (0 = all CPUs)"},
				},
			},
		},
	}
}

// onlyArg returns the single positional argument of ctx, or an error.
func onlyArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one input file, got %d", ctx.NArg())
	}
	return ctx.Args().First(), nil
}
