package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/programme-lv/kernval/internal/environment"
	"github.com/programme-lv/kernval/internal/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	// flag sources read the environment while parsing, so the .env file has
	// to be loaded first
	envFile := os.Getenv("KERNVAL_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := environment.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "kernval:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "kernval",
		Usage: "validate neural network kernels under RISC-V emulators",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("KERNVAL_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "TOML file merged over the built-in operator and board tables",
				Sources: cli.EnvVars("KERNVAL_CATALOG"),
			},
			&cli.StringFlag{
				Name:    "src-dir",
				Value:   ".",
				Usage:   "kernel source tree with the top-level Makefile and tests/",
				Sources: cli.EnvVars("KERNVAL_SRC_DIR"),
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			runCommand(),
			listCommand(),
			boardsCommand(),
			doctorCommand(),
			reportCommand(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "kernval:", err)
		os.Exit(1)
	}
}

// setup installs the process logger.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	lvl, err := logger.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	slog.SetDefault(logger.New(os.Stderr, lvl))
	return ctx, nil
}
