// OttoTimer is a terminal countdown timer.
//
// Usage:
//
//	ottotimer [-config path] [-verbose] [-quiet] [-bell] [-no-alarm]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottotimer/internal/alarm"
	"github.com/hammamikhairi/ottotimer/internal/command"
	"github.com/hammamikhairi/ottotimer/internal/config"
	"github.com/hammamikhairi/ottotimer/internal/display"
	"github.com/hammamikhairi/ottotimer/internal/logger"
	"github.com/hammamikhairi/ottotimer/internal/notify"
	"github.com/hammamikhairi/ottotimer/internal/storage"
	"github.com/hammamikhairi/ottotimer/internal/timer"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "config file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	stateFile := flag.String("state-file", "", "where the timer is saved between runs")
	alarmFile := flag.String("alarm-file", "", "16-bit mono 44.1kHz WAV to play when time is up")
	noAlarm := flag.Bool("no-alarm", false, "do not sound an alarm when time is up")
	bell := flag.Bool("bell", false, "use the terminal bell instead of the audio device")
	noWatch := flag.Bool("no-watch", false, "do not reload the config file when it changes")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv(config.EnvConfigPath)
	}
	if *configPath == "" {
		*configPath = config.DefaultPath
	}

	// Flags win over env, env wins over the file. Reloads go through the
	// same overrides so a file edit cannot undo a flag.
	overrides := func(cfg *config.Config) {
		config.ApplyEnv(cfg, os.Getenv)
		if *verbose {
			cfg.Log.Level = logger.LevelVerbose.String()
		}
		if *quiet {
			cfg.Log.Level = logger.LevelOff.String()
		}
		if *logFile != "" {
			cfg.Log.File = *logFile
		}
		if *stateFile != "" {
			cfg.StateFile = *stateFile
		}
		if *alarmFile != "" {
			cfg.Alarm.SoundFile = *alarmFile
		}
		if *noAlarm {
			cfg.Alarm.Enabled = false
		}
	}

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	overrides(cfg)

	logLevel, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	// Direct logs to a file by default so the UI stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.Log.File != "" && cfg.Log.File != "stderr" {
		dir := filepath.Dir(cfg.Log.File)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.Log.File, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs like
	// the audio backend) to the same output so it doesn't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)
	log.Info("config loaded from %s", *configPath)

	// Cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	store := storage.NewFileStore(cfg.StateFile, log)
	ui := display.NewUI(display.Status{Clock: "00:00"})
	notifier := notify.NewCLINotifier(log, ui.Printf)
	parser := command.NewKeywordParser(log)
	sup := timer.New(log, timer.WithTickInterval(cfg.TickInterval))
	alrm := buildAlarm(cfg, *bell, log)

	app := newApp(ctx, cfg, sup, parser, notifier, alrm, store, ui, log)

	sup.Start(ctx, app.engine)
	defer sup.Stop()

	var reloads <-chan *config.Config
	if !*noWatch {
		watcher := config.NewWatcher(*configPath, log, config.WithTransform(overrides))
		reloads = watcher.Subscribe()
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Warn("config watcher: %v", err)
			}
		}()
	}

	fmt.Println(display.RenderBanner("Type a time like 05:00, 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		if err := app.restore(ctx); err != nil {
			log.Warn("restoring timer: %v", err)
		}
		app.run(ctx, ui.InputChan(), ui.KeyChan(), reloads)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal and blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := app.shutdown(saveCtx); err != nil {
		log.Error("saving timer: %v", err)
	} else {
		log.Info("timer saved to %s", store.Path())
	}
	saveCancel()
	cancel()
}

// buildAlarm prefers the audio device and falls back to the terminal bell.
func buildAlarm(cfg *config.Config, forceBell bool, log *logger.Logger) tunableAlarm {
	settings := alarm.FromConfig(cfg.Alarm)
	if !forceBell {
		player, err := alarm.NewPlayer(settings, log)
		if err == nil {
			return player
		}
		log.Error("audio player init failed, using terminal bell: %v", err)
	}
	return alarm.NewBell(os.Stdout, settings, log)
}
