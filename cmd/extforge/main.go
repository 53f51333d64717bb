// Package main provides the extforge CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"extforge/cmd/extforge/tui"
	"extforge/cmd/extforge/ui"
	"extforge/internal/classify"
	"extforge/internal/config"
	"extforge/internal/gemini"
	"extforge/internal/history"
	"extforge/internal/manifest"
	"extforge/internal/scaffold"
	"extforge/internal/watch"
)

// version is the extforge release version.
const version = "0.2.0"

var (
	// Global flags
	verbose    bool
	configPath string
	apiKey     string
	timeout    time.Duration

	// Generation flags (generate, watch)
	outputDir  string
	extName    string
	extVersion string
	useRemote  bool
	dryRun     bool

	// History flags
	historyLimit int

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "extforge",
	Short: "Generate Chrome extensions from plain-English descriptions",
	Long: `ExtForge turns a one-line description into a working Manifest V3
Chrome extension: popup, content script, background worker, and styling,
with permissions derived from the description.

Generation is template-based and fully offline. When a Gemini API key is
configured, file contents are produced remotely instead, falling back to
the local templates on any failure.

Run without arguments to start the interactive prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode owns the terminal and sets up its own logger.
		if cmd.Use == "extforge" && cmd.CalledAs() == "extforge" {
			return nil
		}
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// generateCmd performs one-shot generation.
var generateCmd = &cobra.Command{
	Use:   "generate [description...]",
	Short: "Generate an extension from a description",
	Long: `Classifies the description, derives the needed components and
permissions, and writes the extension files plus manifest.json to the
output directory.

Examples:
  extforge generate "show today's date in a popup"
  extforge generate -o blocker "block facebook and tiktok every time the browser opens"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

// analyzeCmd shows the classification without writing anything.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [description...]",
	Short: "Show the classification for a description without writing files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

// historyCmd lists recent generation runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generation runs",
	RunE:  runHistory,
}

// watchCmd regenerates on every settled change to a description file.
var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Regenerate whenever a description file changes",
	Long: `Watches the given description file and re-runs generation every
time it changes. Rapid saves are debounced; each settled change reads the
file and regenerates the extension into the output directory.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the extforge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("extforge v%s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: .extforge/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Generation timeout")

	// Flags shared by generate and watch
	for _, cmd := range []*cobra.Command{generateCmd, watchCmd} {
		cmd.Flags().StringVarP(&outputDir, "output", "o", "generated_extension", "Output directory")
		cmd.Flags().StringVar(&extName, "name", "", "Extension name (default: Generated Extension)")
		cmd.Flags().StringVar(&extVersion, "ext-version", "", "Extension version (default: 1.0)")
		cmd.Flags().BoolVar(&useRemote, "remote", true, "Use the remote generator when an API key is configured")
	}
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the file list without writing")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initLogger builds the process logger. The level comes from the config
// file; --verbose overrides it with debug-level development output.
func initLogger() error {
	level := zapcore.InfoLevel
	if cfg, err := config.Load(resolveConfigPath()); err == nil {
		if parsed, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
			level = parsed
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	var err error
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initInteractiveLogger keeps log output away from the prompt: warnings and
// errors only, unless --verbose is set.
func initInteractiveLogger() error {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	var err error
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// loadConfig loads and validates the configuration, then applies the
// --api-key override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	return cfg, nil
}

// genOptions carries the per-run generation settings after merging config
// defaults with explicitly set flags.
type genOptions struct {
	outDir    string
	name      string
	version   string
	useRemote bool
	dryRun    bool
}

func resolveGenOptions(cmd *cobra.Command, cfg *config.Config) genOptions {
	opts := genOptions{
		outDir:    cfg.Output.Directory,
		name:      cfg.Output.ExtensionName,
		version:   cfg.Output.ExtensionVersion,
		useRemote: useRemote,
		dryRun:    dryRun,
	}
	if cmd.Flags().Changed("output") {
		opts.outDir = outputDir
	}
	if cmd.Flags().Changed("name") {
		opts.name = extName
	}
	if cmd.Flags().Changed("ext-version") {
		opts.version = extVersion
	}
	if opts.outDir == "" {
		opts.outDir = "generated_extension"
	}
	return opts
}

// runInteractive shows the banner and description prompt, then generates
// with the configured defaults.
func runInteractive() error {
	if err := initInteractiveLogger(); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	fmt.Println(ui.Banner(styles))
	fmt.Println()

	description, err := tui.Run(styles)
	if err != nil {
		return err
	}
	if description == "" {
		fmt.Println(styles.Muted.Render("Cancelled."))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req := classify.Analyze(description)
	fmt.Println(renderAnalysis(styles, req))

	return generateProject(ctx, cfg, styles, description, req, genOptions{
		outDir:    cfg.Output.Directory,
		name:      cfg.Output.ExtensionName,
		version:   cfg.Output.ExtensionVersion,
		useRemote: true,
	})
}

// runGenerate performs a one-shot generation from command arguments.
func runGenerate(cmd *cobra.Command, args []string) error {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return errors.New("description must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	styles := ui.DefaultStyles()
	fmt.Println(ui.Banner(styles))
	fmt.Println()

	req := classify.Analyze(description)
	fmt.Println(renderAnalysis(styles, req))

	return generateProject(ctx, cfg, styles, description, req, resolveGenOptions(cmd, cfg))
}

// runAnalyze prints the classification summary and exits without writing.
func runAnalyze(cmd *cobra.Command, args []string) error {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return errors.New("description must not be empty")
	}

	styles := ui.DefaultStyles()
	fmt.Println(ui.Banner(styles))
	fmt.Println()

	req := classify.Analyze(description)
	fmt.Println(renderAnalysis(styles, req))
	return nil
}

// runHistory lists recent generation runs from the history store.
func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	if !cfg.History.Enabled {
		fmt.Println(styles.Muted.Render("History is disabled in the configuration."))
		return nil
	}

	store, err := history.Open(cfg.History.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println(styles.Muted.Render("No generation runs recorded yet."))
		return nil
	}

	total, err := store.Count()
	if err != nil {
		return fmt.Errorf("failed to count runs: %w", err)
	}

	fmt.Println(styles.Title.Render(fmt.Sprintf("🕘 Recent runs (%d of %d)", len(runs), total)))
	for _, run := range runs {
		when := run.CreatedAt.Local().Format("2006-01-02 15:04")
		fmt.Printf("  %s  %s  %s\n",
			styles.Muted.Render(when),
			styles.Badge.Render(run.Source),
			truncate(run.Description, 60))
		fmt.Printf("      %s\n",
			styles.Muted.Render(fmt.Sprintf("%s (%d files)", run.OutputDir, len(run.Files))))
	}
	return nil
}

// runWatch regenerates the extension on every settled change to the
// description file.
func runWatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := resolveGenOptions(cmd, cfg)

	styles := ui.DefaultStyles()
	fmt.Println(ui.Banner(styles))
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println()
		cancel()
	}()

	w, err := watch.New(file, func(runCtx context.Context, description string) {
		runCtx, runCancel := context.WithTimeout(runCtx, timeout)
		defer runCancel()

		req := classify.Analyze(description)
		fmt.Println(renderAnalysis(styles, req))
		if err := generateProject(runCtx, cfg, styles, description, req, opts); err != nil {
			logger.Error("generation failed", zap.Error(err))
			fmt.Println(styles.Error.Render("Generation failed: " + err.Error()))
		}
		fmt.Println(styles.RenderDivider(60))
	}, logger)
	if err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	if err := w.TriggerRun(ctx); err != nil {
		logger.Warn("initial run failed", zap.Error(err))
	}

	fmt.Println(styles.Muted.Render(fmt.Sprintf("Watching %s for changes. Ctrl+C to stop.", file)))
	<-ctx.Done()

	fmt.Println(styles.Muted.Render(fmt.Sprintf("Stopped after %d runs.", w.Stats().Runs)))
	return nil
}

// generateProject assembles the extension for an already classified
// description and reports the outcome. History failures never surface as
// errors.
func generateProject(ctx context.Context, cfg *config.Config, styles ui.Styles, description string, req *classify.Requirements, opts genOptions) error {
	if opts.dryRun {
		var names []string
		for _, f := range scaffold.Render(req, description) {
			names = append(names, f.Name)
		}
		names = append(names, manifest.FileName)

		fmt.Println(styles.Title.Render(fmt.Sprintf("🔎 Dry run - would write %d files to %s", len(names), opts.outDir)))
		for _, name := range names {
			fmt.Printf("  %s %s\n", styles.Muted.Render("-"), name)
		}
		return nil
	}

	var remote scaffold.RemoteGenerator
	if opts.useRemote && cfg.RemoteConfigured() {
		remote = gemini.NewClientWithConfig(gemini.Config{
			APIKey:          cfg.Gemini.APIKey,
			BaseURL:         cfg.Gemini.BaseURL,
			Model:           cfg.Gemini.Model,
			Timeout:         cfg.GetGeminiTimeout(),
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		}, logger)
	}
	logger.Debug("starting generation",
		zap.String("output", opts.outDir),
		zap.Bool("remote", remote != nil))

	result, err := scaffold.New(remote, logger).GenerateAll(ctx, req, description, opts.outDir)
	if err != nil {
		return err
	}

	a := manifest.FromRequirements(req, description)
	if opts.name != "" {
		a.Name = opts.name
	}
	if opts.version != "" {
		a.Version = opts.version
	}
	if _, err := manifest.Write(manifest.Build(a), opts.outDir); err != nil {
		return err
	}

	files := append(result.FileNames(), manifest.FileName)
	fmt.Println(renderFileList(styles, opts.outDir, files, result.Source))

	recordRun(cfg, req, description, result.Source, opts.outDir, files)
	return nil
}

// recordRun stores the run in the history database. Failures are logged
// and never fail the generation.
func recordRun(cfg *config.Config, req *classify.Requirements, description string, source scaffold.Source, outDir string, files []string) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cfg.History.DatabasePath, logger)
	if err != nil {
		logger.Warn("failed to open history store", zap.Error(err))
		return
	}
	defer store.Close()

	run := &history.Run{
		Description:        description,
		NeedsPopup:         req.NeedsPopup,
		NeedsContentScript: req.NeedsContentScript,
		NeedsBackground:    req.NeedsBackground,
		NeedsCSS:           req.NeedsCSS,
		Permissions:        req.Permissions,
		Features:           req.Features,
		Source:             string(source),
		OutputDir:          outDir,
		Files:              files,
	}
	if err := store.Record(run); err != nil {
		logger.Warn("failed to record run", zap.Error(err))
	}
}

// renderAnalysis formats the classification summary: one bullet per flag,
// then permissions and features.
func renderAnalysis(s ui.Styles, req *classify.Requirements) string {
	var b strings.Builder

	b.WriteString(s.Subtitle.Render("Analyzing your prompt..."))
	b.WriteString("\n\n")
	b.WriteString(s.Title.Render("📊 Analysis Results:"))
	b.WriteString("\n")
	b.WriteString(renderFlag(s, "Needs Popup UI", req.NeedsPopup))
	b.WriteString(renderFlag(s, "Needs Content Script", req.NeedsContentScript))
	b.WriteString(renderFlag(s, "Needs Background Script", req.NeedsBackground))
	b.WriteString(renderFlag(s, "Needs CSS Styling", req.NeedsCSS))
	b.WriteString(renderList(s, "Required Permissions", req.Permissions))
	b.WriteString(renderList(s, "Detected Features", req.Features))

	return b.String()
}

func renderFlag(s ui.Styles, label string, v bool) string {
	value := s.Muted.Render("false")
	if v {
		value = s.Success.Render("true")
	}
	return fmt.Sprintf("  %s %s: %s\n", s.Muted.Render("•"), label, value)
}

func renderList(s ui.Styles, label string, items []string) string {
	value := s.Muted.Render("None")
	if len(items) > 0 {
		value = strings.Join(items, ", ")
	}
	return fmt.Sprintf("  %s %s: %s\n", s.Muted.Render("•"), label, value)
}

// renderFileList formats the written-file report after assembly.
func renderFileList(s ui.Styles, outDir string, files []string, source scaffold.Source) string {
	var b strings.Builder

	b.WriteString(s.Title.Render(fmt.Sprintf("📦 Generated %d files in %s", len(files), outDir)))
	b.WriteString("\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("  %s %s\n", s.Success.Render("✓"), f))
	}
	b.WriteString("\n")

	if source == scaffold.SourceRemote {
		b.WriteString(s.Info.Render("Content produced by the remote generator."))
	} else {
		b.WriteString(s.Muted.Render("Content produced from local templates."))
	}
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Load the folder as an unpacked extension via chrome://extensions."))

	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
