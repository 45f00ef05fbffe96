package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cryptotracker/config"
	"cryptotracker/logging"
	"cryptotracker/models"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (default ~/.config/cryptotracker/config.yaml)")
		envPath    = flag.String("env", ".env", "Optional .env file")
		once       = flag.Bool("once", false, "Print the coin list once and exit")
	)
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CRYPTOTRACKER_CONFIG")
	}
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path, *envPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.NewFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	model := models.NewAppModel(cfg, log)

	// Without a terminal there is nothing to draw on
	if *once || !term.IsTerminal(int(os.Stdout.Fd())) {
		timeout := cfg.RequestTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fmt.Println(model.Snapshot(ctx))
		return
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.WithError(err).Error("Program exited with error")
		fmt.Printf("Error running program: %v", err)
		closer.Close()
		os.Exit(1)
	}
}
