package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"runtime"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"

	"github.com/alecthomas/kong"

	"piet/batch"
	piet "piet/color"
	"piet/config"
	"piet/grid"
	"piet/interp"
	"piet/palette"
	"piet/render"
)

// fallbackFlags collects the flags shared by run/batch/render that
// choose the unknown-color Policy.
type fallbackFlags struct {
	CodelSize         int    `help:"Force codel size to N (must be valid, else startup error)." group:"color"`
	FallBackToWhite   bool   `help:"Unknown colors classified as white." group:"color"`
	FallBackToBlack   bool   `help:"Unknown colors classified as black." group:"color"`
	FallBackToNearest bool   `help:"Unknown colors reclassified to their nearest canonical color." group:"color"`
	PaletteFile       string `help:"Override the reference RGB triples from a RIFF PAL file." group:"color"`
}

func (f *fallbackFlags) validate() error {
	n := 0
	if f.FallBackToWhite {
		n++
	}
	if f.FallBackToBlack {
		n++
	}
	if f.FallBackToNearest {
		n++
	}
	if n > 1 {
		return fmt.Errorf("--fall-back-to-white, --fall-back-to-black and --fall-back-to-nearest are mutually exclusive")
	}
	if f.CodelSize < 0 {
		return fmt.Errorf("invalid codel size: %d", f.CodelSize)
	}
	return nil
}

func (f *fallbackFlags) gridOptions() (grid.Options, error) {
	opts := grid.Options{CodelSize: f.CodelSize}

	if f.PaletteFile != "" {
		pal, err := palette.LoadOverride(f.PaletteFile)
		if err != nil {
			return opts, err
		}
		opts.Palette = pal
	}

	switch {
	case f.FallBackToWhite:
		opts.Policy = piet.FallbackWhite
	case f.FallBackToBlack:
		opts.Policy = piet.FallbackBlack
	case f.FallBackToNearest:
		opts.Policy = piet.FallbackNearest
		pal := piet.Reference
		if opts.Palette != nil {
			pal = *opts.Palette
		}
		opts.Nearest = palette.NewNearest(&pal).Func()
	default:
		opts.Policy = piet.Strict
	}
	return opts, nil
}

// RunCmd executes a Piet program image. It is the implicit default
// command, so `piet prog.png` and `piet run prog.png` are equivalent.
type RunCmd struct {
	fallbackFlags

	Image       string `arg:"" help:"Path to the program image." type:"existingfile"`
	MaxIter     int    `help:"Terminate after N steps." group:"run"`
	Verbose     bool   `short:"v" help:"Emit a per-step trace to standard error." group:"run"`
	Config      string `help:"Load defaults from a TOML file." group:"run"`
	DumpGrid    string `help:"After startup, write the rendered codel grid here and continue executing normally." group:"run"`
	RenderScale int    `help:"Upscale factor for --dump-grid (default: the inferred/configured codel size, i.e. pixel-for-pixel faithful)." group:"run"`
}

func (c *RunCmd) Validate(_ *kong.Context) error {
	if err := c.fallbackFlags.validate(); err != nil {
		return err
	}
	if c.MaxIter < 0 {
		return fmt.Errorf("invalid max-iter: %d", c.MaxIter)
	}

	if path := config.Resolve(c.Config); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		config.ApplyInt(&c.CodelSize, cfg.CodelSize)
		config.ApplyInt(&c.MaxIter, cfg.MaxIter)
		config.ApplyString(&c.PaletteFile, cfg.PaletteFile)
		config.ApplyBool(&c.Verbose, cfg.Verbose)
		if err := c.applyPolicyFromConfig(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (c *RunCmd) applyPolicyFromConfig(cfg *config.Config) error {
	if cfg.UnknownColorPolicy == nil || c.FallBackToWhite || c.FallBackToBlack || c.FallBackToNearest {
		return nil
	}
	switch *cfg.UnknownColorPolicy {
	case "white":
		c.FallBackToWhite = true
	case "black":
		c.FallBackToBlack = true
	case "nearest":
		c.FallBackToNearest = true
	case "strict":
	default:
		return fmt.Errorf("invalid unknown-color-policy in config: %q", *cfg.UnknownColorPolicy)
	}
	return nil
}

func (c *RunCmd) Run() error {
	img, _, err := grid.Decode(c.Image)
	if err != nil {
		return err
	}

	opts, err := c.fallbackFlags.gridOptions()
	if err != nil {
		return err
	}

	g, err := grid.Build(img, opts)
	if err != nil {
		return err
	}

	if c.DumpGrid != "" {
		pal := piet.Reference
		if opts.Palette != nil {
			pal = *opts.Palette
		}
		scale := c.RenderScale
		if scale <= 0 {
			scale = g.CodelSize
		}
		dump := render.Grid(g, &pal, scale)
		if err := render.Save(dump, c.DumpGrid); err != nil {
			return err
		}
	}

	var logger *slog.Logger
	if c.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	status, steps, err := interp.Run(g, os.Stdin, os.Stdout, interp.Options{MaxIter: c.MaxIter, Logger: logger})
	if err != nil {
		return err
	}
	slog.Default().Debug("run finished", "status", status, "steps", steps)
	return nil
}

// BatchCmd runs every image in a directory through the interpreter.
type BatchCmd struct {
	fallbackFlags

	Dir        string `arg:"" default:"." help:"Directory to scan."`
	Quarantine string `help:"Copy failing/capped program images here."`
	Workers    int    `help:"Worker pool size (default: GOMAXPROCS)."`
	MaxIter    int    `help:"Terminate each program after N steps."`
	Config     string `help:"Not read: batch mode loads no config file."`
}

func (c *BatchCmd) Validate(_ *kong.Context) error {
	return c.fallbackFlags.validate()
}

func (c *BatchCmd) Run() error {
	opts, err := c.fallbackFlags.gridOptions()
	if err != nil {
		return err
	}

	workers := c.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results, err := batch.Run(c.Dir, batch.Options{
		Workers:     workers,
		MaxIter:     c.MaxIter,
		GridOptions: opts,
		Quarantine:  c.Quarantine,
	})
	if err != nil {
		return err
	}

	var capped, failed int
	for _, r := range results {
		switch r.Outcome {
		case batch.Capped:
			capped++
		case batch.StartError:
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to start", failed, len(results))
	}
	if capped > 0 {
		slog.Default().Warn("some runs hit the iteration cap", "capped", capped, "total", len(results))
	}
	return nil
}

// RenderCmd dumps a program image's classified grid (or a dithered
// canonical preview) to a raster file, for debugging.
type RenderCmd struct {
	fallbackFlags

	Image     string `arg:"" help:"Program image to render." type:"existingfile"`
	Out       string `arg:"" help:"Output path; format chosen by extension."`
	Canonical bool   `help:"Re-quantize against the canonical palette with dithering instead of drawing classified blocks directly."`
	Scale     int    `help:"Upscale factor." default:"1"`
}

func (c *RenderCmd) Validate(_ *kong.Context) error {
	return c.fallbackFlags.validate()
}

func (c *RenderCmd) Run() error {
	img, _, err := grid.Decode(c.Image)
	if err != nil {
		return err
	}

	opts, err := c.fallbackFlags.gridOptions()
	if err != nil {
		return err
	}
	pal := piet.Reference
	if opts.Palette != nil {
		pal = *opts.Palette
	}

	var out image.Image
	if c.Canonical {
		out = render.Canonical(img, &pal, true)
	} else {
		g, err := grid.Build(img, opts)
		if err != nil {
			return err
		}
		out = render.Grid(g, &pal, c.Scale)
	}

	return render.Save(out, c.Out)
}

var cli struct {
	Run     RunCmd           `cmd:"" default:"withargs" help:"Execute a Piet program image."`
	Batch   BatchCmd         `cmd:"" help:"Run every image in a directory through the interpreter."`
	Render  RenderCmd        `cmd:"" help:"Render a program's classified grid to a raster file."`
	Version kong.VersionFlag `help:"Show version and exit."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("piet"),
		kong.Description("A Piet esoteric-language interpreter."),
		kong.Vars{"version": "piet 1.0.0"},
		kong.UsageOnError(),
	)
	if err := kctx.Run(); err != nil {
		slog.Error("piet", "error", err)
		os.Exit(1)
	}
}
