// Package cli provides the command-line interface for cwal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/backend/manager"
	"github.com/jmylchreest/cwal/internal/config"
	"github.com/jmylchreest/cwal/internal/hook"
	"github.com/jmylchreest/cwal/internal/logger"
	"github.com/jmylchreest/cwal/internal/palette"
	"github.com/jmylchreest/cwal/internal/pipeline"
	"github.com/jmylchreest/cwal/internal/preview"
	"github.com/jmylchreest/cwal/internal/reload"
	"github.com/jmylchreest/cwal/internal/template"
	"github.com/jmylchreest/cwal/internal/theme"
	"github.com/jmylchreest/cwal/internal/version"
)

// ErrMissingSource is returned when a run names no image, directory or theme.
var ErrMissingSource = errors.New("missing --img <image_path>, --random <directory>, or --theme <theme_name> argument")

// options holds the root command flags.
type options struct {
	mode       string
	cols16     string
	saturation float64
	contrast   float64
	alpha      float64
	backend    string
	img        string
	random     string
	theme      string
	script     string
	outDir     string

	noReload     bool
	listBackends bool
	listThemes   bool
	preview      bool
	quiet        bool
	verbose      bool
}

// applier applies generated output to running applications.
type applier interface {
	Apply(ctx context.Context, outDir string) error
}

// app wires the commands to their collaborators. Tests swap the collaborators.
type app struct {
	opts options

	stdout io.Writer
	stderr io.Writer

	// builtins replaces the built-in backends when non-nil.
	builtins []backend.Backend

	newReloader func(hclog.Logger) applier
	newHooks    func(hclog.Logger) hook.Runner
	printer     *preview.Printer
}

func newApp() *app {
	return &app{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		newReloader: func(l hclog.Logger) applier { return reload.New(l) },
		newHooks:    func(l hclog.Logger) hook.Runner { return hook.NewShellRunner(l) },
		printer:     preview.NewPrinter(),
	}
}

// NewRootCmd returns the cwal command tree.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cwal",
		Short: "Generate terminal colour schemes from wallpapers",
		Long: `cwal extracts base colours from a wallpaper, derives a 16-colour terminal
palette from them and writes it through templates for your applications.

Running terminals receive the new colours straight away and supported
applications are reloaded.

Examples:
  # From an image
  cwal --img ~/wallpapers/forest.jpg

  # A random image from a directory, light palette
  cwal --random ~/wallpapers --mode light

  # A stored theme, or a random one
  cwal --theme gruvbox
  cwal --theme random_dark

  # Pick the quantization backend and raise contrast
  cwal --img wall.png --backend kmeans --contrast 7`,
		Version:      version.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         a.runRoot,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetVersionTemplate(version.String() + "\n")

	f := cmd.Flags()
	f.StringVar(&a.opts.mode, "mode", string(palette.ModeDark), "theme mode: dark or light (overrides config)")
	f.StringVar(&a.opts.cols16, "cols16-mode", string(palette.Cols16Darken), "bright colour generation: darken, lighten or none (overrides config)")
	f.Float64Var(&a.opts.saturation, "saturation", 0, "overall saturation change, 0 leaves colours unchanged")
	f.Float64Var(&a.opts.contrast, "contrast", 1, "minimum contrast ratio against the background, 1 disables")
	f.Float64Var(&a.opts.alpha, "alpha", 1, "alpha transparency for templates, 0.0-1.0 (overrides config)")
	f.StringVar(&a.opts.backend, "backend", config.DefaultBackend, "image processing backend (overrides config)")
	f.StringVar(&a.opts.img, "img", "", "image path or http(s) URL")
	f.StringVar(&a.opts.random, "random", "", "select a random image from the directory")
	f.StringVar(&a.opts.theme, "theme", "", "theme name, or random_dark, random_light, random_all")
	f.StringVar(&a.opts.script, "script", "", "run a script after processing")
	f.StringVar(&a.opts.outDir, "out-dir", "", "output directory for generated files (overrides config)")
	f.BoolVar(&a.opts.noReload, "no-reload", false, "do not reload applications after processing")
	f.BoolVar(&a.opts.listBackends, "list-backends", false, "list available image processing backends")
	f.BoolVar(&a.opts.listThemes, "list-themes", false, "list available themes")
	f.BoolVar(&a.opts.preview, "preview", false, "show the terminal's current palette")

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&a.opts.quiet, "quiet", "q", false, "suppress non-error output")

	cmd.AddCommand(a.versionCmd())
	cmd.AddCommand(a.backendsCmd())
	cmd.AddCommand(a.themesCmd())
	cmd.AddCommand(a.templatesCmd())

	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(a.stdout, version.String())
		},
	}
}

// setup builds the logger and loads the configuration.
func (a *app) setup() (*config.Config, hclog.Logger, error) {
	l := logger.New(logger.Options{
		Verbose: a.opts.verbose,
		Quiet:   a.opts.quiet,
		Output:  a.stderr,
	})

	dir, err := config.DefaultDir()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(dir, l.Named("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, l, nil
}

func (a *app) backends(cfg *config.Config, l hclog.Logger) *manager.Manager {
	b := manager.NewBuilder().
		WithLogger(l.Named("manager")).
		WithBackendsDir(cfg.BackendsPath()).
		WithEnvConfig()
	if a.builtins != nil {
		b = b.WithBuiltins(a.builtins...)
	}
	return b.Build()
}

func (a *app) themes(cfg *config.Config, l hclog.Logger) *theme.Loader {
	return theme.NewLoader(theme.DefaultDirs(cfg.Dir), l.Named("theme"))
}

// runRoot generates a palette and applies it.
func (a *app) runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, l, err := a.setup()
	if err != nil {
		return err
	}

	switch {
	case a.opts.listBackends:
		a.printBackends(a.backends(cfg, l))
		return nil
	case a.opts.listThemes:
		a.printThemes(a.themes(cfg, l))
		return nil
	case a.opts.preview:
		a.printer.Terminal()
		return nil
	}

	req, err := a.request(cmd.Flags(), cfg)
	if err != nil {
		return err
	}

	outDir := cfg.OutDir
	if cmd.Flags().Changed("out-dir") {
		outDir = config.ExpandHome(a.opts.outDir)
	}

	m := a.backends(cfg, l)
	gen := pipeline.New(m.Registry(), a.themes(cfg, l), outDir, l)

	res, err := gen.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate palette: %w", err)
	}

	templates := template.New(template.Defaults(), template.DefaultDirs(cfg.Dir), l.Named("template"))
	written, err := templates.Process(outDir, res.Palette)
	if err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	l.Debug("wrote templates", "count", len(written), "dir", outDir)

	if !a.opts.noReload {
		if err := a.newReloader(l.Named("reload")).Apply(ctx, outDir); err != nil {
			l.Warn("failed to reload applications", "error", err)
		}
	}

	if a.opts.script != "" {
		hook.RunLogged(ctx, a.newHooks(l.Named("hook")), l, config.ExpandHome(a.opts.script))
	}

	cfg.CurrentWallpaper = res.Palette.Wallpaper
	cfg.OutDir = outDir
	cfg.Mode = res.Palette.Mode
	cfg.Cols16 = res.Palette.Cols16
	cfg.Alpha = res.Palette.Alpha
	if res.Backend != "" {
		cfg.Backend = res.Backend
	}
	if err := cfg.Save(); err != nil {
		l.Warn("failed to save configuration", "error", err)
	}

	if !a.opts.quiet {
		a.printer.Palette(res.Palette)
	}
	return nil
}

// request merges the flags over the configuration.
func (a *app) request(flags *pflag.FlagSet, cfg *config.Config) (pipeline.Request, error) {
	req := pipeline.Request{
		Backend:    cfg.Backend,
		Mode:       cfg.Mode,
		Cols16:     cfg.Cols16,
		Saturation: a.opts.saturation,
		Contrast:   a.opts.contrast,
		Alpha:      cfg.Alpha,
	}

	if flags.Changed("mode") {
		mode, err := palette.ParseMode(a.opts.mode)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}
	if flags.Changed("cols16-mode") {
		cols16, err := palette.ParseCols16(a.opts.cols16)
		if err != nil {
			return req, err
		}
		req.Cols16 = cols16
	}
	if flags.Changed("alpha") {
		if a.opts.alpha < 0 || a.opts.alpha > 1 {
			return req, fmt.Errorf("invalid alpha value %g: must be between 0.0 and 1.0", a.opts.alpha)
		}
		req.Alpha = a.opts.alpha
	}
	if flags.Changed("backend") {
		req.Backend = a.opts.backend
	}

	if a.opts.img != "" && a.opts.random != "" {
		return req, fmt.Errorf("cannot use both --img and --random")
	}

	switch {
	case a.opts.theme != "":
		req.Theme = a.opts.theme
	case a.opts.random != "":
		dir := config.ExpandHome(a.opts.random)
		info, err := os.Stat(dir)
		if err != nil {
			return req, fmt.Errorf("failed to read random directory: %w", err)
		}
		if !info.IsDir() {
			return req, fmt.Errorf("--random needs a directory, got %s", dir)
		}
		req.ImagePath = dir
	case a.opts.img != "":
		req.ImagePath = config.ExpandHome(a.opts.img)
	default:
		return req, ErrMissingSource
	}

	return req, nil
}
