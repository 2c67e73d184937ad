package main

import (
	"context"
	"io"
	"log/slog"

	"praxis"
	"praxis/config"
	"praxis/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *config.Config
	Runner *pipeline.Runner
	Runs   praxis.RunService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Run    RunCmd    `cmd:"" help:"Collect, extract, and persist practices from the configured sources"`
	Report ReportCmd `cmd:"" help:"Show recent run reports"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	DryRun bool     `help:"Execute the full pipeline but write nothing"`
	Source []string `short:"s" help:"Restrict the run to the named sources (repeatable)"`
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	Limit int `short:"n" default:"10" help:"Number of runs to show"`
}
