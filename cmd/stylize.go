package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"oniazusa/internal/logging"
	"oniazusa/internal/processor"
	"oniazusa/internal/style"
	"oniazusa/internal/tui"
)

var (
	stylizeOutput       string
	stylizeConfigPath   string
	stylizePalette      string
	stylizePaletteFrom  string
	stylizePaletteSize  int
	stylizePaletteAlgo  string
	stylizeQuant        float64
	stylizeEdge         float64
	stylizeGrain        float64
	stylizeInk          float64
	stylizeDownsample   int
	stylizeSeed         int64
	stylizeMood         bool
	stylizeWorkers      int
	stylizeTimeout      time.Duration
	stylizeSkipExisting bool
	stylizeQuiet        bool
)

var stylizeCmd = &cobra.Command{
	Use:   "stylize [flags] <file|dir>",
	Short: "Render a photo or a folder of photos in the illustrated style",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := stylizeConfig(cmd)
		if err != nil {
			return err
		}
		profile, err := buildProfile(cfg)
		if err != nil {
			return err
		}

		items, dirMode, err := processor.Resolve(args[0], stylizeOutput)
		if err != nil {
			return err
		}
		logger.WithField("profile", profile.String()).Debug("profile ready")

		opts := processor.Options{
			Workers:      cfg.Workers,
			Timeout:      cfg.Timeout,
			SkipExisting: stylizeSkipExisting,
			Logger:       logger,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if !dirMode {
			return stylizeSingle(ctx, items[0], profile, opts)
		}
		return stylizeBatch(ctx, items, profile, opts)
	},
}

func stylizeSingle(ctx context.Context, item processor.WorkItem, profile *style.Profile, opts processor.Options) error {
	opts.Workers = 1
	report, err := processor.Run(ctx, []processor.WorkItem{item}, profile, opts, nil)
	if err != nil {
		return err
	}
	res := report.Results[0]
	if res.Status == processor.StatusFailure {
		return fmt.Errorf("%s: %w", item.Display, res.Err)
	}
	fmt.Fprintf(os.Stdout, "%s -> %s\n", item.Display, filepath.Base(item.Destination))
	return nil
}

func stylizeBatch(ctx context.Context, items []processor.WorkItem, profile *style.Profile, opts processor.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		report processor.Report
		err    error
	)
	showProgress := !stylizeQuiet && isatty.IsTerminal(os.Stdout.Fd())
	opts.Logger = batchLogger(showProgress, debugLogging, logger)
	if !showProgress {
		report, err = processor.Run(ctx, items, profile, opts, nil)
	} else {
		updates := make(chan processor.ProgressUpdate, 64)
		program := tea.NewProgram(tui.NewModel(updates).WithInterrupt(cancel))

		uiDone := make(chan struct{})
		go func() {
			defer close(uiDone)
			uiErr := tui.Watch(func() error {
				_, err := program.Run()
				return err
			}, updates)
			if uiErr != nil {
				logger.WithError(uiErr).Debug("progress display stopped")
			}
		}()

		report, err = processor.Run(ctx, items, profile, opts, updates)
		close(updates)
		<-uiDone
	}
	if err != nil {
		return err
	}

	for _, res := range report.Results {
		if res.Status == processor.StatusSuccess {
			fmt.Fprintf(os.Stdout, "%s -> %s\n", res.Item.Display, filepath.Base(res.Item.Destination))
		}
	}

	s := report.Summary
	rows := []tui.SummaryRow{
		{Label: "Images stylized", Value: fmt.Sprintf("%d", s.Succeeded)},
		{Label: "Skipped (up to date)", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
		{Label: "Total", Value: fmt.Sprintf("%d", s.Total)},
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

	if s.Failed == 0 {
		outDir := filepath.Dir(items[0].Destination)
		if abs, absErr := filepath.Abs(outDir); absErr == nil {
			outDir = abs
		}
		fmt.Fprintln(os.Stdout, successStyle.Render("Output written to: "+outDir))
		return nil
	}

	failures := make([]tui.FailureRow, 0, s.Failed)
	for _, res := range report.Failures() {
		failures = append(failures, tui.FailureRow{
			Path:    res.Item.Display,
			Kind:    res.Kind.String(),
			Message: res.Err.Error(),
		})
	}
	fmt.Fprintln(os.Stderr, tui.RenderFailures(failures))
	return fmt.Errorf("%d of %d images failed", s.Failed, s.Total)
}

// batchLogger keeps log lines off the terminal while the progress display
// owns it, unless --debug asked for them.
func batchLogger(showProgress, debug bool, base *logrus.Logger) *logrus.Logger {
	if showProgress && !debug {
		return logging.Discard()
	}
	return base
}

// stylizeConfig layers flag values that were set explicitly over the
// config file, which in turn is layered over the defaults.
func stylizeConfig(cmd *cobra.Command) (style.Config, error) {
	cfg := style.DefaultConfig()
	if stylizeConfigPath != "" {
		loaded, err := style.LoadConfig(stylizeConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("palette") {
		cfg.Palette = stylizePalette
		cfg.PaletteColors = nil
	}
	if flags.Changed("quant") {
		cfg.QuantizationStrength = stylizeQuant
	}
	if flags.Changed("edge") {
		cfg.EdgeThreshold = stylizeEdge
	}
	if flags.Changed("grain") {
		cfg.GrainIntensity = stylizeGrain
	}
	if flags.Changed("ink") {
		cfg.InkStrength = stylizeInk
	}
	if flags.Changed("downsample") {
		cfg.DownsampleFactor = stylizeDownsample
	}
	if flags.Changed("seed") {
		cfg.Seed = stylizeSeed
	}
	if flags.Changed("mood") {
		cfg.Mood = stylizeMood
	}
	if flags.Changed("workers") {
		if stylizeWorkers < 0 {
			return cfg, fmt.Errorf("--workers must be >= 0")
		}
		cfg.Workers = stylizeWorkers
	}
	if flags.Changed("timeout") {
		if stylizeTimeout < 0 {
			return cfg, fmt.Errorf("--timeout must be >= 0")
		}
		cfg.Timeout = stylizeTimeout
	}
	return cfg, nil
}

// buildProfile resolves the palette, extracting it from a reference
// image when --palette-from is set.
func buildProfile(cfg style.Config) (*style.Profile, error) {
	if stylizePaletteFrom == "" {
		return style.NewProfile(cfg)
	}
	pal, err := extractPalette(stylizePaletteFrom, stylizePaletteSize, stylizePaletteAlgo)
	if err != nil {
		return nil, err
	}
	return style.NewProfileWithPalette(cfg, pal)
}

var successStyle = lipgloss.NewStyle().Foreground(tui.ColorSuccess)

func init() {
	defaults := style.DefaultConfig()
	f := stylizeCmd.Flags()
	f.StringVarP(&stylizeOutput, "output", "o", "", "output file, or output folder in directory mode")
	f.StringVarP(&stylizeConfigPath, "config", "c", "", "YAML style configuration file")
	f.StringVarP(&stylizePalette, "palette", "p", defaults.Palette, "palette preset name or comma-separated hex colors")
	f.StringVar(&stylizePaletteFrom, "palette-from", "", "extract the palette from this reference image")
	f.IntVar(&stylizePaletteSize, "palette-size", 8, "number of colors to extract with --palette-from")
	f.StringVar(&stylizePaletteAlgo, "palette-method", "dominant", "extraction method: dominant or kmeans")
	f.Float64Var(&stylizeQuant, "quant", defaults.QuantizationStrength, "quantization strength in [0,1]")
	f.Float64Var(&stylizeEdge, "edge", defaults.EdgeThreshold, "edge threshold in [0,1]; 1 disables outlines")
	f.Float64Var(&stylizeGrain, "grain", defaults.GrainIntensity, "paper grain intensity in [0,1]")
	f.Float64Var(&stylizeInk, "ink", defaults.InkStrength, "outline ink strength in [0,1]")
	f.IntVar(&stylizeDownsample, "downsample", defaults.DownsampleFactor, "smoothing downsample factor (>= 1)")
	f.Int64Var(&stylizeSeed, "seed", defaults.Seed, "grain texture seed")
	f.BoolVar(&stylizeMood, "mood", defaults.Mood, "apply the muted night-time finishing grade")
	f.IntVarP(&stylizeWorkers, "workers", "j", 0, "parallel workers (0 = number of CPUs)")
	f.DurationVar(&stylizeTimeout, "timeout", 0, "per-image time limit, e.g. 30s (0 = none)")
	f.BoolVar(&stylizeSkipExisting, "skip-existing", false, "skip images whose output was rendered with the same settings")
	f.BoolVarP(&stylizeQuiet, "quiet", "q", false, "disable the progress display (implied when stdout is not a terminal)")

	rootCmd.AddCommand(stylizeCmd)
}
