// cmd/p3sinfo/main.go
// Purpose: process entrypoint. Parse flags, load a .3zh file, report what's
// in it (or extract its preview), exiting non-zero on any codec error.
//
// In-file structure:
// 1) Package + purpose comment
// 2) Imports
// 3) Constants
// 4) Types
// 5) Constructors
// 6) Public methods
// 7) Private helpers

package main

// --- Imports ---

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/conwinds/p3s"
)

// --- Constants ---

const usageHeader = "p3sinfo: inspect or extract from a version-6 .3zh voxel scene file\n\n"

// --- Types ---

// options holds the parsed command-line flags for one invocation.
type options struct {
	path       string
	mode       string // "info" or "preview"
	previewOut string
	mutable    bool
	lighting   bool
	verbose    bool
}

// --- main ---

func main() {
	opts := parseFlags()

	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	f, err := os.Open(opts.path)
	if err != nil {
		fatal(err)
	}
	defer f.Close()

	switch opts.mode {
	case "preview":
		if err := runPreview(f, opts); err != nil {
			fatal(err)
		}
	default:
		if err := runInfo(f, opts); err != nil {
			fatal(err)
		}
	}
}

// --- Private helpers ---

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.mode, "mode", "info", `"info" to list assets, "preview" to extract the PREVIEW chunk`)
	flag.StringVar(&opts.previewOut, "out", "", "preview mode: file to write the extracted preview bytes to (default stdout)")
	flag.BoolVar(&opts.mutable, "mutable", true, "materialize shapes as caller-editable")
	flag.BoolVar(&opts.lighting, "lighting", true, "materialize baked lighting when present")
	flag.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageHeader)
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <path>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.path = flag.Arg(0)
	return opts
}

func runPreview(f *os.File, opts options) error {
	preview, err := p3s.GetPreview(f)
	if err != nil {
		return err
	}
	if len(preview) == 0 {
		logrus.Warn("p3sinfo: file has no PREVIEW chunk")
		return nil
	}

	if opts.previewOut == "" {
		_, err := os.Stdout.Write(preview)
		return err
	}
	return os.WriteFile(opts.previewOut, preview, 0o644)
}

func runInfo(f *os.File, opts options) error {
	settings := p3s.ShapeSettings{MutableBlocks: opts.mutable, MaterializeLighting: opts.lighting}
	atlas := p3s.NewColorAtlas()

	assets, err := p3s.LoadAssets(f, atlas, p3s.FilterAny, settings)
	if err != nil {
		return err
	}

	fmt.Printf("%d asset(s), %d distinct color(s) registered\n", len(assets), atlas.Len())
	for i, a := range assets {
		switch a.Kind {
		case p3s.AssetPalette:
			fmt.Printf("[%d] palette: %d colors\n", i, a.Palette.Count())
		case p3s.AssetShape, p3s.AssetObject:
			printShapeTree(a.Shape, 0)
		}
	}
	return nil
}

func printShapeTree(s *p3s.Shape, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	w, h, d := s.Dimensions()
	name := s.DisplayName()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("%s- shape %d %q %dx%dx%d\n", indent, s.ID(), name, w, h, d)
	for _, c := range s.Children {
		printShapeTree(c, depth+1)
	}
}

func fatal(err error) {
	var exitCode = 1
	if errors.Is(err, p3s.ErrBadMagic) || errors.Is(err, p3s.ErrUnsupportedVersion) {
		exitCode = 3
	}
	fmt.Fprintf(os.Stderr, "p3sinfo: %v\n", err)
	os.Exit(exitCode)
}
