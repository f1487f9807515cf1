// Package main provides the environment setup entry point. It validates
// the bot credentials and materializes them into a .env file next to the
// bot's working directory, ready for the Python process to load.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dmarkhas/renderdeploy-go/internal/config"
	"github.com/dmarkhas/renderdeploy-go/internal/envfile"
	"github.com/dmarkhas/renderdeploy-go/internal/errors"
	"github.com/dmarkhas/renderdeploy-go/internal/logger"
)

func main() {
	cfg, err := config.LoadForMode(config.SetupMode)
	if err != nil {
		if name, ok := errors.IsMissingVar(err); ok {
			fmt.Fprintf(os.Stderr, "Error: %s is not set\n", name)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		}
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	if err := envfile.Materialize(cfg.EnvFilePath, nil); err != nil {
		log.WithError(err).Error("Failed to write env file")
		os.Exit(1)
	}
	log.WithField("path", cfg.EnvFilePath).Info("Environment file created")

	if err := listWorkingDir(); err != nil {
		log.WithError(err).Warn("Failed to list working directory")
	}
}

// listWorkingDir prints the working directory contents so the setup log
// shows what the bot will see at startup.
func listWorkingDir() error {
	entries, err := os.ReadDir(".")
	if err != nil {
		return err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	fmt.Println("Working directory contents:")
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		fmt.Printf("  %s\n", name)
	}
	return nil
}
