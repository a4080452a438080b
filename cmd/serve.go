package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"notelab/auth"
	"notelab/logging"
	"notelab/notebook"
	"notelab/paths"
)

// ServeCmd starts the notebook server
type ServeCmd struct {
	Port        int    `help:"Port to listen on" default:"8888" env:"NOTELAB_PORT"`
	PortRetries int    `help:"How many successive ports to try when the requested one is busy" default:"50"`
	NoBrowser   bool   `help:"Do not open a browser after startup"`
	NotebookDir string `help:"Directory to serve notebooks from" type:"path" default:"."`
	ConfigDir   string `help:"Configuration directory" type:"path"`
	DataDir     string `help:"Data directory" type:"path"`
	RuntimeDir  string `help:"Runtime directory" type:"path"`
}

// Run executes the serve command, blocking until shutdown
func (s *ServeCmd) Run(cli *CLI) error {
	// Apply settings with proper precedence (flags > env > settings.json)
	if cli.settings != nil {
		if s.Port == 8888 {
			if _, hasEnv := os.LookupEnv("NOTELAB_PORT"); !hasEnv && cli.settings.Port != nil {
				s.Port = *cli.settings.Port
			}
		}
		if s.PortRetries == 50 && cli.settings.PortRetries != nil {
			s.PortRetries = *cli.settings.PortRetries
		}
		if s.NotebookDir == "." && cli.settings.NotebookDir != "" {
			s.NotebookDir = cli.settings.NotebookDir
		}
	}

	if s.ConfigDir == "" {
		s.ConfigDir = paths.GetConfigDir()
	}
	if s.DataDir == "" {
		s.DataDir = paths.GetDataDir()
	}
	if s.RuntimeDir == "" {
		s.RuntimeDir = paths.GetRuntimeDir()
	}

	logging.Logger.Info("Starting notebook server",
		"port", s.Port,
		"notebook_dir", s.NotebookDir)

	app, err := notebook.New(notebook.Options{
		Port:        s.Port,
		PortRetries: s.PortRetries,
		OpenBrowser: !s.NoBrowser,
		ConfigDir:   s.ConfigDir,
		DataDir:     s.DataDir,
		RuntimeDir:  s.RuntimeDir,
		NotebookDir: s.NotebookDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := app.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Stop on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		logging.Logger.Info("Shutdown signal received")
		app.Stop()
	}()

	return app.Start(func() {
		fmt.Printf("Serving notebooks from %s at http://localhost:%d/\n",
			s.NotebookDir, app.Port())
	})
}

// HashCmd hashes a password for use as password_hash in notelab_config.yaml
type HashCmd struct{}

// Run reads a password from stdin and prints its bcrypt hash
func (h *HashCmd) Run(cli *CLI) error {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
