// ABOUTME: Entry point for the soundbox sound server
// ABOUTME: Parses CLI flags, opens the audio output and serves the control websocket
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/harperreed/soundbox/internal/control"
	"github.com/harperreed/soundbox/internal/ui"
	"github.com/harperreed/soundbox/internal/version"
	"github.com/harperreed/soundbox/pkg/audio/fetch"
	"github.com/harperreed/soundbox/pkg/audio/output"
	"github.com/harperreed/soundbox/pkg/soundengine"
)

var (
	port       = flag.Int("port", 8930, "Control websocket port")
	name       = flag.String("name", "", "Server friendly name (default: hostname-soundbox)")
	logFile    = flag.String("log-file", "soundbox.log", "Log file path")
	root       = flag.String("root", ".", "Directory file sources are confined to")
	sampleRate = flag.Int("sample-rate", 48000, "Output sample rate in Hz")
	preload    = flag.String("preload", "", "Comma-separated sources to decode at startup")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI owns the terminal: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	serverName := *name
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-soundbox", hostname)
	}

	log.Printf("Starting %s: %s on port %d", version.String(), serverName, *port)
	if *debug {
		log.Printf("Debug logging enabled")
	}
	log.Printf("Logging to: %s", *logFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *control.Server
	engine := soundengine.New(soundengine.Config{
		Fetcher:   fetch.NewMux(*root),
		NewDevice: output.OtoFactory(output.OtoConfig{SampleRate: *sampleRate}),
		Debug:     *debug,
		OnStateChange: func(info soundengine.InstanceInfo) {
			srv.Broadcast(info)
		},
	})
	srv = control.New(control.Config{
		Port:       *port,
		Name:       serverName,
		EnableMDNS: !*noMDNS,
		Debug:      *debug,
	}, engine)

	// A server has no user gesture to wait for; controllers may retry with context/init
	if err := engine.InitContext(ctx); err != nil {
		log.Printf("Audio output unavailable: %v", err)
	} else if *preload != "" {
		sources := strings.Split(*preload, ",")
		for i := range sources {
			sources[i] = strings.TrimSpace(sources[i])
		}
		if err := engine.Preload(ctx, sources...); err != nil {
			log.Printf("Preload failed: %v", err)
		}
	}

	var tui *ui.TUI
	if useTUI {
		tui = ui.New(engine, serverName, fmt.Sprintf(":%d", *port))

		go func() {
			if err := tui.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			stop()
		}()

		go func() {
			select {
			case <-tui.QuitChan():
				stop()
			case <-ctx.Done():
			}
		}()

		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					tui.Update(ui.StatusMsg{Clients: srv.Clients()})
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Printf("Press Ctrl-C to stop")
	}

	if err := srv.Start(ctx); err != nil {
		log.Printf("Server error: %v", err)
	}

	if tui != nil {
		tui.Stop()
	}

	if n := engine.StopAll(); n > 0 {
		log.Printf("Stopped %d sounds", n)
	}
	if err := engine.Close(); err != nil {
		log.Printf("Error closing engine: %v", err)
	}

	log.Printf("Server stopped")
}
