// Package main provides the CLI entrypoint for seqtrain.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/verte-zerg/seqtrain/internal/config"
	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/logging"
	"github.com/verte-zerg/seqtrain/internal/midiinput"
	"github.com/verte-zerg/seqtrain/internal/model"
	"github.com/verte-zerg/seqtrain/internal/sdlinput"
	"github.com/verte-zerg/seqtrain/internal/shell"
	"github.com/verte-zerg/seqtrain/internal/stats"
	"github.com/verte-zerg/seqtrain/internal/statsui"
	"github.com/verte-zerg/seqtrain/internal/store"
	"github.com/verte-zerg/seqtrain/internal/text"
	"github.com/verte-zerg/seqtrain/internal/trainer"
	"github.com/verte-zerg/seqtrain/internal/tui"
)

const (
	backendTUI = "tui"
	backendSDL = "sdl"

	defaultBackend     = backendTUI
	defaultLang        = "en"
	defaultTickRate    = 60
	defaultConfirmKey  = "Return"
	defaultResetKey    = "Backspace"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultCurveWindow = 20
)

var (
	trainBackend     string
	trainTickRate    int
	trainTimeout     int
	trainLatchDevice bool
	trainText        string
	trainLang        string
	trainConfirmKey  string
	trainResetKey    string
	trainMIDI        bool
	logLevel         string
	logFormat        string
	logFile          string

	statsSequence    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "seqtrain",
		Short:         "Input sequence trainer for keyboards, joysticks and MIDI devices",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainCmd,
	}

	rootCmd.Flags().StringVar(&trainBackend, "backend", defaultBackend, "input backend: tui or sdl")
	rootCmd.Flags().IntVar(&trainTickRate, "tick-rate", defaultTickRate, "ticks per second")
	rootCmd.Flags().IntVar(&trainTimeout, "timeout-ticks", trainer.DefaultTimeout, "idle ticks before an attempt is abandoned")
	rootCmd.Flags().BoolVar(&trainLatchDevice, "latch-device", false, "train only the joystick whose button is pressed first")
	rootCmd.Flags().StringVar(&trainText, "text", "", "path to a prompt text file")
	rootCmd.Flags().StringVar(&trainLang, "lang", defaultLang, "language of the prompt text file")
	rootCmd.Flags().StringVar(&trainConfirmKey, "confirm-key", defaultConfirmKey, "key that starts practice")
	rootCmd.Flags().StringVar(&trainResetKey, "reset-key", defaultResetKey, "key that records a new sequence")
	rootCmd.Flags().BoolVar(&trainMIDI, "midi", false, "use MIDI in-ports as devices")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (tui backend defaults to the data directory)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "timeout-ticks", &trainTimeout, fileCfg.Trainer.TimeoutTicks)
	applyIntConfig(cmd, "tick-rate", &trainTickRate, fileCfg.Trainer.TickRate)
	applyBoolConfig(cmd, "latch-device", &trainLatchDevice, fileCfg.Trainer.LatchDevice)
	applyStringConfig(cmd, "text", &trainText, fileCfg.Trainer.Text)
	applyStringConfig(cmd, "backend", &trainBackend, fileCfg.Input.Backend)
	applyStringConfig(cmd, "confirm-key", &trainConfirmKey, fileCfg.Input.ConfirmKey)
	applyStringConfig(cmd, "reset-key", &trainResetKey, fileCfg.Input.ResetKey)
	applyBoolConfig(cmd, "midi", &trainMIDI, fileCfg.Input.MIDI)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	dt, err := resolveText(cfg.TextPath, trainLang)
	if err != nil {
		return fmt.Errorf("failed to load text: %w", err)
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	log.Info("starting", "backend", cfg.Backend, "tick_rate", cfg.TickRate, "timeout_ticks", cfg.TimeoutTicks, "midi", cfg.MIDI)

	var midiOpener input.MultiOpener
	if cfg.MIDI {
		defer midiinput.CloseDriver()
		midi := midiinput.NewOpener()
		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		go midi.Watch(watchCtx, midiinput.ScanInterval)
		midiOpener = input.MultiOpener{midi}
	}

	switch cfg.Backend {
	case backendSDL:
		return runSDL(cfg, dt, midiOpener, st, log)
	default:
		return runTUI(cfg, dt, midiOpener, st, log)
	}
}

func runTUI(cfg model.Config, dt text.DisplayText, opener input.MultiOpener, st *store.Store, log *slog.Logger) error {
	m := tui.NewModel(cfg, dt, opener, st, log)
	defer func() {
		if cerr := m.Close(); cerr != nil {
			log.Warn("failed to close devices", "err", cerr)
		}
	}()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return m.Err()
}

func runSDL(cfg model.Config, dt text.DisplayText, midiOpener input.MultiOpener, st *store.Store, log *slog.Logger) error {
	reserved := shell.Reserved(cfg.ConfirmKey, cfg.ResetKey)
	win, err := sdlinput.NewWindow(sdlinput.Options{TickRate: cfg.TickRate, Log: log})
	if err != nil {
		return err
	}
	defer win.Destroy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printer := trainer.NewPrinter(os.Stdout, dt, sdlinput.KeyName)
	recorder := trainer.NewRecorder(nil, shell.AttemptSaver(ctx, st, log))
	tr := trainer.New(trainer.Options{
		Timeout:     cfg.TimeoutTicks,
		LatchDevice: cfg.LatchDevice,
	}, trainer.Sinks{printer, recorder})

	opener := append(input.MultiOpener{sdlinput.JoystickOpener{}}, midiOpener...)
	session := shell.NewSession(opener, reserved, tr, log)
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("failed to close devices", "err", cerr)
		}
	}()

	printer.Start(tr.Mode())
	if err := win.Run(ctx, session, reserved); err != nil {
		return fmt.Errorf("failed to run SDL loop: %w", err)
	}
	return printer.Err()
}

func buildConfig() (model.Config, error) {
	confirm, err := input.ParseKey(trainConfirmKey)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --confirm-key: %w", err)
	}
	reset, err := input.ParseKey(trainResetKey)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --reset-key: %w", err)
	}
	return model.Config{
		Backend:      strings.ToLower(strings.TrimSpace(trainBackend)),
		TickRate:     trainTickRate,
		TimeoutTicks: trainTimeout,
		LatchDevice:  trainLatchDevice,
		TextPath:     trainText,
		ConfirmKey:   confirm,
		ResetKey:     reset,
		MIDI:         trainMIDI,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		LogFile:      logFile,
	}, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Backend != backendTUI && cfg.Backend != backendSDL {
		return fmt.Errorf("--backend must be %q or %q", backendTUI, backendSDL)
	}
	if cfg.TickRate <= 0 {
		return fmt.Errorf("--tick-rate must be > 0")
	}
	if cfg.TimeoutTicks <= 0 {
		return fmt.Errorf("--timeout-ticks must be > 0")
	}
	if cfg.LatchDevice && cfg.Backend == backendTUI && !cfg.MIDI {
		return fmt.Errorf("--latch-device needs a device backend: use --backend %s or --midi", backendSDL)
	}
	if cfg.ConfirmKey == cfg.ResetKey {
		return fmt.Errorf("--confirm-key and --reset-key must differ")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	return nil
}

// resolveText loads an explicit text file, else the language file from the
// config directory when present, else the built-in text.
func resolveText(path, lang string) (text.DisplayText, error) {
	if path == "" {
		langPath := config.DefaultTextPath(lang)
		if _, err := os.Stat(langPath); err == nil {
			path = langPath
		} else if lang != defaultLang {
			logErrf("no text file for %q at %s; using built-in text\n", lang, langPath)
		}
	}
	return text.LoadOrDefault(path)
}

// openLogger builds the logger. The tui backend owns the terminal, so it
// logs to a file unless one is configured explicitly.
func openLogger(cfg model.Config) (*slog.Logger, func(), error) {
	path := cfg.LogFile
	if path == "" && cfg.Backend == backendTUI {
		path = config.DefaultLogPath()
	}
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() {
			if cerr := f.Close(); cerr != nil {
				logErrf("failed to close log file: %v\n", cerr)
			}
		}
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: out})
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, closeFn, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List joysticks and MIDI in-ports",
		Args:  cobra.NoArgs,
		RunE:  runDevicesCmd,
	}
}

func runDevicesCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	joysticks, sdlErr := sdlinput.ListJoysticks()
	if sdlErr != nil {
		logErrf("%v\n", sdlErr)
	}
	ports := midiinput.List()
	defer midiinput.CloseDriver()

	lines := []string{"Joysticks:"}
	lines = append(lines, indexedLines(joysticks)...)
	lines = append(lines, "MIDI in-ports:")
	lines = append(lines, indexedLines(ports)...)
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func indexedLines(names []string) []string {
	if len(names) == 0 {
		return []string{"  (none)"}
	}
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("  %d: %s", i, name)
	}
	return lines
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List installed prompt text languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	textDir := filepath.Dir(config.DefaultTextPath(defaultLang))
	entries, err := os.ReadDir(textDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read text directory: %w", err)
	}
	langs := []string{defaultLang + " (built-in)"}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".txt"))
	}
	sort.Strings(langs[1:])
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSequence, "sequence", "", "sequence filter (as listed by --plain)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Sequence:    statsSequence,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return printStats(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	seqs, err := st.ListSequences(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sequences: %w", err)
	}
	if cfg.Sequence == "" && len(seqs) > 1 {
		names := make([]string, 0, len(seqs))
		for seq := range seqs {
			names = append(names, seq)
		}
		sort.Strings(names)
		if _, err := fmt.Fprintln(w, "Sequences"); err != nil {
			return err
		}
		for _, seq := range names {
			if _, err := fmt.Fprintf(w, "  %4d  %s\n", seqs[seq], seq); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return report.Render(w, cfg.CurveWindow, stats.TerminalWidth(w))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# seqtrain configuration
# Uncomment a value to enable it. CLI flags override config values.

[trainer]
# timeout-ticks = %d      # Idle ticks before an attempt is abandoned
# tick-rate = %d          # Ticks per second
# latch-device = false    # Train only the joystick whose button is pressed first
# text = ""               # Prompt text file (default: built-in or text/<lang>.txt)

[input]
# backend = %q         # tui or sdl
# confirm-key = %q  # Key that starts practice
# reset-key = %q  # Key that records a new sequence
# midi = false            # Use MIDI in-ports as devices

[log]
# level = %q          # debug, info, warn, error
# format = %q         # text or json
# file = ""               # Log file path
`,
		trainer.DefaultTimeout,
		defaultTickRate,
		defaultBackend,
		defaultConfirmKey,
		defaultResetKey,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
