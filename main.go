// ABOUTME: Entry point for the playwav command-line audio player
// ABOUTME: Parses the play list and global flags, then plays each file in order
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NotCompsky/playwav/internal/config"
	"github.com/NotCompsky/playwav/internal/playlist"
	"github.com/NotCompsky/playwav/internal/ui"
	"github.com/NotCompsky/playwav/internal/version"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
	"github.com/NotCompsky/playwav/pkg/audio/output"
	"github.com/NotCompsky/playwav/pkg/playback"
)

var (
	sinkName    = flag.String("sink", "", "Audio output: auto, oto, pulse, malgo or null (default from config, else auto)")
	latencyMs   = flag.Int("latency", 0, "Output latency in milliseconds (default from config, else 100)")
	configPath  = flag.String("config", "", "Config file (default: <user config dir>/playwav/config.yaml)")
	logFile     = flag.String("log-file", "", "Also append the log to this file")
	useTUI      = flag.Bool("tui", false, "Show a now-playing display (the log then only goes to -log-file)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [global flags] [-l] [-r N] [-v VOLUME] [-s SECONDS] [-e SECONDS] FILE...\n\n", version.Product)
	fmt.Fprintf(os.Stderr, "  -l          loop the whole list\n")
	fmt.Fprintf(os.Stderr, "  -r N        play the next file N times in total (-r 1 plays it once)\n")
	fmt.Fprintf(os.Stderr, "  -v VOLUME   gain for all following files (1.0 = unchanged)\n")
	fmt.Fprintf(os.Stderr, "  -s SECONDS  start the next file at SECONDS\n")
	fmt.Fprintf(os.Stderr, "  -e SECONDS  stop the next file at SECONDS (0 = end of file)\n\n")
	fmt.Fprintf(os.Stderr, "Global flags:\n")
	flag.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flag.Usage = usage

	list, err := playlist.Parse(args, flag.CommandLine)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return 2
	}
	if *showVersion {
		fmt.Println(version.String())
		fmt.Printf("codecs: %v\n", decode.Codecs())
		return 0
	}
	if len(list.Entries) == 0 {
		usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *sinkName != "" {
		cfg.Sink = *sinkName
	}
	if *latencyMs != 0 {
		cfg.LatencyMS = *latencyMs
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *useTUI {
		cfg.TUI = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	list.SetDefaultVolume(cfg.Volume)

	// Set up logging. The display owns the terminal, so in TUI mode the
	// log only goes to the file.
	var logOut io.Writer = os.Stderr
	if cfg.TUI {
		logOut = io.Discard
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
			return 2
		}
		defer func() { _ = f.Close() }()
		if cfg.TUI {
			logOut = f
		} else {
			logOut = io.MultiWriter(os.Stderr, f)
		}
	}
	log.SetOutput(logOut)

	backend, err := output.New(cfg.Sink, output.Options{
		Latency: cfg.Latency(),
		AppName: version.Product,
	})
	if err != nil {
		log.Printf("Failed to create audio output: %v", err)
		if cfg.TUI {
			fmt.Fprintf(os.Stderr, "Failed to create audio output: %v\n", err)
		}
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := &controller{cancel: cancel}
	var display *ui.TUI
	sessionConfig := playback.Config{Backend: backend}
	if cfg.TUI {
		display = ui.New(ctrl)
		sessionConfig.OnProgress = display.Progress
	}

	session, err := playback.New(sessionConfig)
	if err != nil {
		log.Printf("Failed to start playback: %v", err)
		_ = backend.Close()
		return 1
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Error closing session: %v", err)
		}
	}()
	ctrl.session = session

	// Handle shutdown: the first signal stops the current file and the
	// list, the second one quits immediately
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Shutdown signal received, stopping")
		ctrl.Quit()
		<-sigChan
		os.Exit(130)
	}()

	log.Printf("Starting %s with %s output", version.String(), backend.Name())

	var res playlist.Result
	if display == nil {
		res = list.Run(ctx, session)
	} else {
		done := make(chan playlist.Result, 1)
		go func() {
			done <- list.Run(ctx, display.Track(session))
			display.Finish()
		}()
		if err := display.Run(); err != nil {
			log.Printf("Display error: %v", err)
			ctrl.Quit()
		}
		res = <-done
	}

	log.Printf("Played %d file(s), %d failed", res.Played, res.Failed)
	if display != nil {
		fmt.Printf("Played %d file(s), %d failed\n", res.Played, res.Failed)
	}
	return 0
}

// controller stops playback for signals and display keys
type controller struct {
	session *playback.Session
	cancel  context.CancelFunc
}

// Skip stops the current file only
func (c *controller) Skip() {
	c.session.Interrupt()
}

// Quit stops the current file and the rest of the list
func (c *controller) Quit() {
	c.cancel()
	c.session.Interrupt()
}
