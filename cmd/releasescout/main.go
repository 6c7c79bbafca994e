// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ReleaseScout/cmd/releasescout/config"
	"github.com/AleutianAI/ReleaseScout/pkg/logging"
)

var logger *logging.Logger

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	err := rootCmd.Execute()
	if logger != nil {
		logger.Close()
	}
	if err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := config.Load(); err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}
		logger = logging.New(logging.Config{
			Level:   logLevelFromConfig(config.Global.Logging.Level),
			LogDir:  config.Global.Logging.Dir,
			Service: "cli",
			// Keep stderr clean for the styled terminal output; the
			// pipeline's slog lines go to the log file when one is
			// configured.
			Quiet: config.Global.Logging.Dir != "",
		})
		// Route the pipeline's slog calls through the shared logger.
		slog.SetDefault(logger.Slog())
	}
}

func logLevelFromConfig(level string) logging.Level {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
