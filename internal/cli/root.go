// Package cli builds the comic-panels command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/comic-panels/internal/config"
	"github.com/ironsheep/comic-panels/internal/extract"
)

// app carries the state shared by the root command and its subcommands.
type app struct {
	configPath string
	verbose    bool

	// flags holds the values bound to the settings flags. Only flags the
	// user changed are copied over the loaded configuration.
	flags config.Config

	// lookupEnv and stderr are swapped out by tests.
	lookupEnv func(string) (string, bool)
	stderr    io.Writer

	cfg    config.Config
	logger *slog.Logger
}

// settingFlags maps each settings flag to the field it overrides.
var settingFlags = map[string]func(dst *config.Config, src config.Config){
	"threshold":    func(d *config.Config, s config.Config) { d.Threshold = s.Threshold },
	"kernel-size":  func(d *config.Config, s config.Config) { d.KernelSize = s.KernelSize },
	"iterations":   func(d *config.Config, s config.Config) { d.DilationIterations = s.DilationIterations },
	"min-area":     func(d *config.Config, s config.Config) { d.MinPanelArea = s.MinPanelArea },
	"buffer-ratio": func(d *config.Config, s config.Config) { d.BufferRatio = s.BufferRatio },
	"row-bucket":   func(d *config.Config, s config.Config) { d.RowBucketHeight = s.RowBucketHeight },
	"renumber":     func(d *config.Config, s config.Config) { d.Renumber = s.Renumber },
	"ext":          func(d *config.Config, s config.Config) { d.Ext = s.Ext },
	"quality":      func(d *config.Config, s config.Config) { d.JPEGQuality = s.JPEGQuality },
	"retries":      func(d *config.Config, s config.Config) { d.WriteRetries = s.WriteRetries },
	"manifest":     func(d *config.Config, s config.Config) { d.Manifest = s.Manifest },
	"preview":      func(d *config.Config, s config.Config) { d.Preview = s.Preview },
	"debug-masks":  func(d *config.Config, s config.Config) { d.DebugMasks = s.DebugMasks },
}

// NewRootCmd returns the root command. version is reported by the MCP
// server's initialize response.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{lookupEnv: os.LookupEnv, stderr: os.Stderr}, version)
}

func newRootCmd(a *app, version string) *cobra.Command {
	a.flags = config.Default()

	cmd := &cobra.Command{
		Use:   "comic-panels <inputImagePath> <outputDirectory>",
		Short: "Split a comic page into one image file per panel",
		Long: `comic-panels finds the panels on a scanned comic page and saves each one,
with the caption strip below it, as its own image file.

Panels are numbered in reading order (rows top to bottom, left to right
within a row). Settings come from built-in defaults, an optional YAML file
(--config), COMIC_PANELS_* environment variables (a .env file in the working
directory is loaded first), and finally the flags below.`,
		Example: `  # Extract panels as JPEG files
  comic-panels page01.png out/

  # PNG output with a manifest and a preview of what was detected
  comic-panels page01.png out/ --ext png --manifest --preview

  # Loosen detection for pages with thin gutters
  comic-panels page01.png out/ --kernel-size 3 --iterations 1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args[0], args[1])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML settings file")
	pf.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	pf.IntVar(&a.flags.Threshold, "threshold", a.flags.Threshold, "Luminance (0-255) below which a pixel counts as ink")
	pf.IntVar(&a.flags.KernelSize, "kernel-size", a.flags.KernelSize, "Side of the square dilation kernel in pixels")
	pf.IntVar(&a.flags.DilationIterations, "iterations", a.flags.DilationIterations, "Number of dilation passes")
	pf.IntVar(&a.flags.MinPanelArea, "min-area", a.flags.MinPanelArea, "Smallest detected box area kept as a panel")
	pf.Float64Var(&a.flags.BufferRatio, "buffer-ratio", a.flags.BufferRatio, "Caption space below each panel as a fraction of its height")
	pf.IntVar(&a.flags.RowBucketHeight, "row-bucket", a.flags.RowBucketHeight, "Height of the strips used to group panels into rows")
	pf.BoolVar(&a.flags.Renumber, "renumber", a.flags.Renumber, "Number panels 1..n after filtering")

	f := cmd.Flags()
	f.StringVar(&a.flags.Ext, "ext", a.flags.Ext, "Panel file format: jpg, png, gif, bmp or tiff")
	f.IntVar(&a.flags.JPEGQuality, "quality", a.flags.JPEGQuality, "JPEG quality (1-100)")
	f.IntVar(&a.flags.WriteRetries, "retries", a.flags.WriteRetries, "Extra attempts for a failed panel write")
	f.BoolVar(&a.flags.Manifest, "manifest", a.flags.Manifest, "Also write <name>_panels.yaml")
	f.BoolVar(&a.flags.Preview, "preview", a.flags.Preview, "Also write <name>_preview.png with the panels outlined")
	f.BoolVar(&a.flags.DebugMasks, "debug-masks", a.flags.DebugMasks, "Also write the binary and dilated masks")

	cmd.AddCommand(a.newDetectCmd())
	cmd.AddCommand(a.newServeCmd(version))

	return cmd
}

// setup loads .env, configures logging and resolves the settings.
func (a *app) setup(cmd *cobra.Command) error {
	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	level := slog.LevelInfo
	if lvl, _ := a.lookupEnv("COMIC_PANELS_LOG_LEVEL"); a.verbose || strings.EqualFold(lvl, "debug") {
		level = slog.LevelDebug
	}
	// stdout is reserved for command output and the MCP protocol
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("resolved settings", "config", a.configPath, "settings", fmt.Sprintf("%+v", cfg))
	return nil
}

// resolveConfig layers defaults, the config file, the environment and the
// changed flags, then validates the result.
func (a *app) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(a.lookupEnv); err != nil {
		return cfg, err
	}

	for name, apply := range settingFlags {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			apply(&cfg, a.flags)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (a *app) runExtract(cmd *cobra.Command, input, outDir string) error {
	summary, err := extract.New(a.cfg, a.logger).Run(cmd.Context(), input, outDir)
	if summary != nil {
		a.logger.Info("extraction finished", "source", summary.Source, "detected", summary.Detected,
			"written", len(summary.Panels), "failed", len(summary.Failed))
	}
	if err != nil {
		return fmt.Errorf("failed to extract panels from %s: %w", input, err)
	}
	return nil
}
