// Package main provides the CLI entrypoint for reflex.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/reflex/internal/config"
	"github.com/verte-zerg/reflex/internal/generator"
	"github.com/verte-zerg/reflex/internal/input"
	"github.com/verte-zerg/reflex/internal/logging"
	"github.com/verte-zerg/reflex/internal/model"
	"github.com/verte-zerg/reflex/internal/render"
	"github.com/verte-zerg/reflex/internal/round"
	"github.com/verte-zerg/reflex/internal/session"
	"github.com/verte-zerg/reflex/internal/stats"
	"github.com/verte-zerg/reflex/internal/store"
	"github.com/verte-zerg/reflex/internal/tui"
)

const (
	defaultMode    = string(model.ModeClassic)
	defaultFireKey = "space"
	maxCountdown   = 10
)

var (
	gameMode      string
	gameSeed      int64
	gameCountdown int
	gameFireKey   string

	logLevel string
	logFile  string
)

// playConfig is the validated result of flags and config file.
type playConfig struct {
	Mode      model.Mode
	Seed      int64
	Countdown int
	FireKey   byte
	Theme     render.Theme
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reflex",
		Short:         "Terminal reflex shooter",
		Long:          "Shoot the target as soon as it appears. In switch mode, only shoot while it shows the GO color.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&gameMode, "mode", defaultMode, "game mode: classic or switch")
	rootCmd.Flags().Int64Var(&gameSeed, "seed", 0, "placement seed (0: random)")
	rootCmd.Flags().IntVar(&gameCountdown, "countdown", session.DefaultCountdown, "seconds counted down before each round")
	rootCmd.Flags().StringVar(&gameFireKey, "fire-key", defaultFireKey, "key that fires: space, enter, tab or a single character")
	rootCmd.Flags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &gameMode, fileCfg.Game.Mode)
	applyInt64Config(cmd, "seed", &gameSeed, fileCfg.Game.Seed)
	applyIntConfig(cmd, "countdown", &gameCountdown, fileCfg.Game.Countdown)
	applyStringConfig(cmd, "fire-key", &gameFireKey, fileCfg.Game.FireKey)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	cfg, err := validateConfig(fileCfg.Theme)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logLevel, logFile, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return fmt.Errorf("reflex needs an interactive terminal on stdin")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	display := render.New(os.Stdout, cfg.Theme, input.KeyName(cfg.FireKey))
	display.HideCursor()
	defer display.ShowCursor()

	listener := input.NewListener(os.Stdin, stdinFd, input.Options{FireKey: cfg.FireKey})
	roundCfg := model.DefaultRoundConfig(cfg.Mode)
	controller, err := round.New(roundCfg, listener, display, nil, logger)
	if err != nil {
		return err
	}
	prompter := tui.NewPrompter(os.Stdin, os.Stdout, roundCfg.Threshold)

	sess := session.New(session.Config{
		Mode:      cfg.Mode,
		Countdown: cfg.Countdown,
		Bounds:    roundCfg.Bounds,
	}, session.Options{
		Prompter: prompter,
		Screen:   display,
		Rounder:  controller,
		Recorder: st,
		Placer:   generator.New(cfg.Seed),
		Logger:   logger,
	})

	res, err := sess.Run(ctx)
	if err != nil {
		display.Clear()
		var modeErr *input.InputModeError
		if errors.As(err, &modeErr) {
			logger.Error("terminal mode failure", "op", modeErr.Op, "err", modeErr.Err)
		}
		return fmt.Errorf("game aborted: %w", err)
	}

	display.Farewell(farewellText(res), summaryLines(st, res))
	return nil
}

func farewellText(res session.Result) string {
	if res.Interrupted || res.Player == "" {
		return "Game interrupted. Thanks for playing! 👋"
	}
	return fmt.Sprintf("Thanks for playing, %s! 👋", res.Player)
}

func summaryLines(st *store.Store, res session.Result) []string {
	if res.Player == "" || res.Rounds == 0 {
		return nil
	}
	// The play context may already be cancelled by the interrupt.
	report, err := stats.BuildReport(context.Background(), st, res.Player)
	if err != nil {
		logErrf("failed to build summary: %v\n", err)
		return nil
	}
	return stats.Lines(report)
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
	if err := ensureConfigFile(path); err != nil {
		return err
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

// ensureConfigFile writes the commented template unless path already exists.
func ensureConfigFile(path string) error {
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
	return nil
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

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	theme := render.DefaultTheme()
	return fmt.Sprintf(`# reflex configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# mode = %q          # classic or switch
# seed = 0                 # Placement seed (0: random)
# countdown = %d            # Seconds counted down before each round (0-%d)
# fire-key = %q        # space, enter, tab or a single character

[theme]
# go = %q          # Target color while shooting is allowed
# nogo = %q        # Target color while shooting is not allowed
# shooter = %q
# border = %q
# hint = %q

[log]
# level = %q            # debug, info, warn or error
# file = %q
`,
		defaultMode,
		session.DefaultCountdown,
		maxCountdown,
		defaultFireKey,
		string(theme.Go),
		string(theme.NoGo),
		string(theme.Shooter),
		string(theme.Border),
		string(theme.Hint),
		logging.DefaultLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(themeCfg config.ThemeConfig) (playConfig, error) {
	mode, err := model.ParseMode(gameMode)
	if err != nil {
		return playConfig{}, fmt.Errorf("--mode: %w", err)
	}
	if gameCountdown < 0 || gameCountdown > maxCountdown {
		return playConfig{}, fmt.Errorf("%w: --countdown must be between 0 and %d", model.ErrInvalidConfig, maxCountdown)
	}
	key, err := input.ParseFireKey(gameFireKey)
	if err != nil {
		return playConfig{}, fmt.Errorf("%w: --fire-key: %v", model.ErrInvalidConfig, err)
	}
	if _, err := logging.ParseLevel(logLevel); err != nil {
		return playConfig{}, fmt.Errorf("%w: --log-level: %v", model.ErrInvalidConfig, err)
	}
	theme := render.DefaultTheme().Override(
		config.Value(themeCfg.Go),
		config.Value(themeCfg.NoGo),
		config.Value(themeCfg.Shooter),
		config.Value(themeCfg.Border),
		config.Value(themeCfg.Hint),
	)
	return playConfig{
		Mode:      mode,
		Seed:      gameSeed,
		Countdown: gameCountdown,
		FireKey:   key,
		Theme:     theme,
	}, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
