package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"

	"github.com/QEStudios/unimod/driver"
	"github.com/QEStudios/unimod/parser"
	"github.com/QEStudios/unimod/player"
)

const defaultConfig = "~/.modplay.yaml"

var extensions = []string{".mod", ".s3m", ".xm"}

var logger *logrus.Logger

func main() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	var (
		configPath string
		voices     int
		loop       bool
		ticks      int
		realtime   bool
		patterns   bool
		dump       bool
		trace      bool
		verbose    bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "YAML config file (default "+defaultConfig+" if present)")
	pflag.IntVarP(&voices, "voices", "v", 0, "music voices, 0 lets the song decide")
	pflag.BoolVarP(&loop, "loop", "l", false, "loop the song instead of stopping at its end")
	pflag.IntVarP(&ticks, "ticks", "t", 0, "stop after this many ticks, 0 plays to the end")
	pflag.BoolVarP(&realtime, "realtime", "r", false, "tick at the song's tempo instead of as fast as possible")
	pflag.BoolVarP(&patterns, "patterns", "p", false, "print every pattern")
	pflag.BoolVarP(&dump, "dump", "d", false, "dump the decoded song structure")
	pflag.BoolVar(&trace, "trace", false, "log every driver call")
	pflag.BoolVar(&verbose, "verbose", false, "debug logging")
	pflag.Parse()

	if verbose || trace {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	if pflag.CommandLine.Changed("voices") {
		cfg.MusicVoices = voices
	}
	if pflag.CommandLine.Changed("loop") {
		cfg.Loop = loop
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config error: %v", err)
	}
	if cfg.Loop && ticks == 0 && !realtime {
		logger.Fatal("--loop without --realtime needs a --ticks budget")
	}

	path, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Info("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	var drv driver.Driver = driver.NewNoSound()
	if trace {
		drv = driver.NewTrace(drv, logger)
	}

	mod, err := parser.LoadFile(path, drv, logger)
	if err != nil {
		logger.Fatalf("load error: %v", err)
	}
	defer parser.Unload(mod, drv)

	fmt.Println(mod)
	if patterns {
		if err := mod.WritePatterns(os.Stdout); err != nil {
			logger.Fatalf("error writing patterns: %v", err)
		}
	}
	if dump {
		mod.Dump(os.Stdout)
	}

	session := player.NewSession(drv, cfg, logger)
	if err := session.Play(mod); err != nil {
		logger.Fatalf("play error: %v", err)
	}
	defer session.Stop()

	var n int
	var elapsed time.Duration
	if realtime {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		n, elapsed = playRealtime(ctx, session, ticks)
	} else {
		n, elapsed = playHeadless(session, ticks)
	}

	pos, row := session.Position()
	logger.WithFields(logrus.Fields{
		"ticks":    n,
		"duration": elapsed.Round(time.Millisecond),
		"position": pos,
		"row":      row,
	}).Info("playback finished")
}

// loadConfig reads the config file at path, or the default one when path is
// empty and it exists.
func loadConfig(path string) (player.Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfig
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return player.DefaultConfig(), fmt.Errorf("cannot expand %s: %w", path, err)
	}
	if !explicit {
		if _, err := os.Stat(path); err != nil {
			return player.DefaultConfig(), nil
		}
	}
	logger.WithField("path", path).Debug("loading config")
	return player.LoadConfig(path)
}

// playHeadless runs ticks back to back and returns how many ran and the time
// they stand for at the song's tempo.
func playHeadless(s *player.Session, budget int) (int, time.Duration) {
	var n int
	var elapsed time.Duration
	for s.Active() && (budget == 0 || n < budget) {
		elapsed += player.TickInterval(s.BPM())
		s.HandleTick()
		n++
	}
	return n, elapsed
}

// playRealtime calls HandleTick from a ticker that follows tempo changes.
func playRealtime(ctx context.Context, s *player.Session, budget int) (int, time.Duration) {
	start := time.Now()
	bpm := s.BPM()
	ticker := time.NewTicker(player.TickInterval(bpm))
	defer ticker.Stop()

	var n int
	for s.Active() && (budget == 0 || n < budget) {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			return n, time.Since(start)
		case <-ticker.C:
		}
		s.HandleTick()
		n++
		if b := s.BPM(); b != bpm && b > 0 {
			bpm = b
			ticker.Reset(player.TickInterval(bpm))
			logger.WithField("bpm", bpm).Debug("tempo change")
		}
	}
	return n, time.Since(start)
}

// choosePath returns the module path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string) (string, error) {
	if len(args) > 0 {
		path, err := homedir.Expand(args[0])
		if err != nil {
			return "", fmt.Errorf("cannot expand path: %w", err)
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	path, err := dialog.
		File().
		Title("Open module").
		Filter("Modules (*.mod, *.s3m, *.xm)", "mod", "s3m", "xm").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Caller checks for dialog.ErrCancelled.
		return "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if absPath == "" {
		return "", dialog.ErrCancelled
	}
	if err := validatePath(absPath); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

// validatePath checks the extension and that the file exists.
func validatePath(p string) error {
	if !slices.Contains(extensions, strings.ToLower(filepath.Ext(p))) {
		return fmt.Errorf("file must have one of the extensions %s", strings.Join(extensions, ", "))
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	return nil
}
