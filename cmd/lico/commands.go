package main

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/image/bmp"

	"github.com/deepteams/lico"
)

// replaceExt swaps the extension of path for ext (which includes the
// dot).
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func runEnc(ctx *cli.Context) error {
	input, err := onlyArg(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	opts := &lico.Options{
		WordWidth: ctx.Int("width"),
		Workers:   ctx.Int("workers"),
	}
	start := time.Now()
	frame, err := lico.EncodeBytes(data, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !lico.IsSupportedBMP(data) {
		fmt.Fprintf(os.Stderr, "lico: warning: %s is not a supported BMP image, storing raw\n", input)
	}

	output := ctx.String("o")
	if output == "" {
		output = replaceExt(input, ".lico")
	}
	if err := os.WriteFile(output, frame, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d -> %d bytes (%.2fx) in %s\n",
		output, len(data), len(frame), ratio(len(data), len(frame)), elapsed.Round(time.Microsecond))
	return nil
}

func runDec(ctx *cli.Context) error {
	input, err := onlyArg(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	opts := &lico.Options{Workers: ctx.Int("workers")}
	start := time.Now()
	out, err := lico.DecodeBytes(data, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	output := ctx.String("o")
	if output == "" {
		output = replaceExt(input, ".bmp")
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d -> %d bytes in %s\n",
		output, len(data), len(out), elapsed.Round(time.Microsecond))
	return nil
}

func runInfo(ctx *cli.Context) error {
	input, err := onlyArg(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	f, err := lico.Info(data)
	if err != nil {
		return err
	}

	kind := "bmp"
	if f.Raw {
		kind = "raw"
	}
	fmt.Printf("payload:      %s\n", kind)
	fmt.Printf("word width:   %d bytes\n", f.WordWidth)
	fmt.Printf("decoded size: %d bytes\n", f.DecodedLen)
	fmt.Printf("dense words:  %d\n", f.DenseWords)
	fmt.Printf("bitmap words: %d\n", f.BitmapWords)
	fmt.Printf("frame size:   %d bytes (%.2fx)\n", len(data), ratio(f.DecodedLen, len(data)))
	return nil
}

func runConv(ctx *cli.Context) error {
	input, err := onlyArg(ctx)
	if err != nil {
		return err
	}
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return err
	}

	// Flatten onto an opaque canvas; the BMP writer emits 24 bpp only
	// for fully opaque images, and the codec accepts nothing else.
	b := img.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := 3; i < len(flat.Pix); i += 4 {
		flat.Pix[i] = 0xff
	}
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	output := ctx.String("o")
	if output == "" {
		output = replaceExt(input, ".bmp")
	}
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := bmp.Encode(out, flat); err != nil {
		return err
	}
	fmt.Printf("%s: %dx%d\n", output, b.Dx(), b.Dy())
	return nil
}

func ratio(orig, comp int) float64 {
	if comp == 0 {
		return 0
	}
	return float64(orig) / float64(comp)
}
