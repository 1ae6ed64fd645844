package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/programme-lv/kernval/api"
	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/build"
	"github.com/programme-lv/kernval/internal/environment"
	"github.com/programme-lv/kernval/internal/gatherer/respbuilder"
	"github.com/programme-lv/kernval/internal/kernel"
	"github.com/programme-lv/kernval/internal/logger"
	"github.com/programme-lv/kernval/internal/oracle"
	"github.com/programme-lv/kernval/internal/plan"
	"github.com/programme-lv/kernval/internal/report"
	"github.com/programme-lv/kernval/internal/tester"
	"github.com/programme-lv/kernval/internal/workdir"
	"github.com/programme-lv/kernval/internal/xdg"
	"github.com/urfave/cli/v3"
)

const (
	exitFailed      = 1
	exitBuildError  = 2
	exitDegraded    = 3
	exitInterrupted = 130
)

func boardFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "board",
			Aliases:  []string{"b"},
			Usage:    "target board, see 'kernval boards'",
			Required: true,
			Sources:  cli.EnvVars("KERNVAL_BOARD"),
		},
		&cli.IntFlag{
			Name:    "dtype",
			Aliases: []string{"d"},
			Value:   int(internal.DTypeFP32),
			Usage:   "element width: 8, 16 or 32",
			Sources: cli.EnvVars("KERNVAL_DTYPE"),
		},
		&cli.StringSliceFlag{
			Name:  "only",
			Usage: "keep only cases whose id or operator matches the glob (repeatable)",
		},
	}
}

func runCommand() *cli.Command {
	flags := append(boardFlags(),
		&cli.StringFlag{
			Name:    "accuracy",
			Value:   environment.DefaultAccuracy,
			Usage:   "accuracy threshold passed to every kernel binary",
			Sources: cli.EnvVars("KERNVAL_ACCURACY"),
		},
		&cli.StringFlag{
			Name:    "vlen",
			Usage:   "default vector length for boards with a configurable width",
			Sources: cli.EnvVars("KERNVAL_VLEN", environment.VLenEnv),
		},
		&cli.StringFlag{
			Name:    "flow",
			Usage:   "test plan id; cases come from the plan service instead of the matrix",
			Sources: cli.EnvVars("KERNVAL_FLOW"),
		},
		&cli.StringFlag{
			Name:    "plan-endpoint",
			Usage:   "URL of the test plan service",
			Sources: cli.EnvVars("KERNVAL_PLAN_ENDPOINT"),
		},
		&cli.DurationFlag{
			Name:    "plan-timeout",
			Value:   environment.DefaultPlanTimeout,
			Sources: cli.EnvVars("KERNVAL_PLAN_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "interpreter",
			Value:   environment.DefaultInterpreter,
			Usage:   "interpreter for the oracle scripts",
			Sources: cli.EnvVars("KERNVAL_INTERPRETER"),
		},
		&cli.StringFlag{
			Name:    "work-dir",
			Usage:   "directory the vector files are written to",
			Sources: cli.EnvVars("KERNVAL_WORK_DIR"),
		},
		&cli.DurationFlag{
			Name:    "oracle-timeout",
			Value:   environment.DefaultOracleTimeout,
			Sources: cli.EnvVars("KERNVAL_ORACLE_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "kernel-timeout",
			Value:   environment.DefaultKernelTimeout,
			Sources: cli.EnvVars("KERNVAL_KERNEL_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "build-timeout",
			Value:   environment.DefaultBuildTimeout,
			Sources: cli.EnvVars("KERNVAL_BUILD_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "parallel make targets, 0 for one per CPU",
			Sources: cli.EnvVars("KERNVAL_BUILD_JOBS"),
		},
		&cli.BoolFlag{
			Name:    "skip-build",
			Usage:   "use the binaries already in the validation directory",
			Sources: cli.EnvVars("KERNVAL_SKIP_BUILD"),
		},
		&cli.StringFlag{
			Name:    "report",
			Usage:   "report path; a .zst suffix compresses it (default: state dir)",
			Sources: cli.EnvVars("KERNVAL_REPORT"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "print the output of passing cases too",
		},
		&cli.StringFlag{
			Name:    "nats-url",
			Usage:   "stream run events to this NATS server",
			Sources: cli.EnvVars("KERNVAL_NATS_URL"),
		},
		&cli.StringFlag{
			Name:    "nats-subject",
			Usage:   "NATS subject (default: kernval.runs.<board>)",
			Sources: cli.EnvVars("KERNVAL_NATS_SUBJECT"),
		},
		&cli.StringFlag{
			Name:    "sqs-queue-url",
			Usage:   "stream run events to this SQS queue",
			Sources: cli.EnvVars("KERNVAL_SQS_QUEUE_URL"),
		},
		&cli.StringFlag{
			Name:    "sqs-region",
			Sources: cli.EnvVars("KERNVAL_SQS_REGION", "AWS_REGION"),
		},
	)

	return &cli.Command{
		Name:   "run",
		Usage:  "build the target and run every case",
		Flags:  flags,
		Action: runAction,
	}
}

func runConfig(cmd *cli.Command, catalogFile string) (environment.RunConfig, error) {
	cfg := environment.RunConfig{
		Board:         cmd.String("board"),
		DType:         internal.DType(cmd.Int("dtype")),
		Accuracy:      cmd.String("accuracy"),
		PlanID:        cmd.String("flow"),
		PlanEndpoint:  cmd.String("plan-endpoint"),
		PlanTimeout:   cmd.Duration("plan-timeout"),
		Only:          cmd.StringSlice("only"),
		SrcDir:        cmd.String("src-dir"),
		WorkDir:       cmd.String("work-dir"),
		Interpreter:   cmd.String("interpreter"),
		CatalogFile:   catalogFile,
		OracleTimeout: cmd.Duration("oracle-timeout"),
		KernelTimeout: cmd.Duration("kernel-timeout"),
		BuildTimeout:  cmd.Duration("build-timeout"),
		BuildJobs:     int(cmd.Int("jobs")),
		SkipBuild:     cmd.Bool("skip-build"),
		ReportPath:    cmd.String("report"),
		NatsURL:       cmd.String("nats-url"),
		NatsSubject:   cmd.String("nats-subject"),
		SQSQueueURL:   cmd.String("sqs-queue-url"),
	}

	var err error
	if s := cmd.String("vlen"); s != "" {
		cfg.VLen, err = internal.ParseVLen(s)
	} else {
		cfg.VLen, err = environment.DefaultVLen()
	}
	if err != nil {
		return cfg, err
	}

	cfg.Finalize()
	if cfg.ReportPath == "" {
		cfg.ReportPath = filepath.Join(xdg.NewXDGDirs().ReportDir(), report.DefaultName(cfg.RunID))
	}
	return cfg, cfg.Validate()
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cat, catalogFile, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	cfg, err := runConfig(cmd, catalogFile)
	if err != nil {
		return err
	}
	log := slog.Default().With("run", cfg.RunID)

	work, err := workdir.Open(cfg.WorkDir)
	if err != nil {
		return err
	}

	deps := tester.Deps{
		Catalog: cat,
		Oracle: &oracle.Invoker{
			Interpreter: cfg.Interpreter,
			Dir:         cfg.OracleDir,
			Work:        work,
			Catalog:     cat,
			Timeout:     cfg.OracleTimeout,
			Logger:      logger.Component(log, "oracle"),
		},
		Kernel: &kernel.Invoker{
			Dir:     cfg.KernelDir,
			Work:    work,
			Catalog: cat,
			Timeout: cfg.KernelTimeout,
			Logger:  logger.Component(log, "kernel"),
		},
		Work:   work,
		Logger: logger.Component(log, "tester"),
	}
	if cfg.PlanID != "" {
		deps.Plan = plan.NewSource(cfg.PlanEndpoint, cfg.PlanTimeout, cat, cfg.DType, logger.Component(log, "plan"))
	}
	if !cfg.SkipBuild {
		deps.Builder = build.NewBuilder(cfg.SrcDir, cfg.BuildJobs, cfg.BuildTimeout, logger.Component(log, "build"))
	}

	t, err := tester.New(cfg, deps)
	if err != nil {
		return err
	}

	rb := respbuilder.New(cfg.RunID)
	sinks, closeSinks, err := gatherers(ctx, cfg, cmd.Bool("verbose"), cmd.String("sqs-region"), log)
	if err != nil {
		return err
	}
	defer closeSinks()

	start := time.Now()
	out := t.Run(ctx, append(sinks, rb))
	log.Debug("run took", "duration", time.Since(start).Round(time.Millisecond))

	if err := report.Save(cfg.ReportPath, rb.Report()); err != nil {
		log.Error("failed to save report", "path", cfg.ReportPath, "err", err)
	} else {
		log.Info("report saved", "path", cfg.ReportPath)
	}

	return exitFor(out)
}

func exitFor(out tester.Outcome) error {
	switch out.Status {
	case api.Clean:
		return nil
	case api.Failed:
		return cli.Exit(out.Summary, exitFailed)
	case api.BuildError:
		return cli.Exit(out.Summary, exitBuildError)
	case api.Degraded:
		return cli.Exit(out.Summary, exitDegraded)
	case api.Interrupted:
		return cli.Exit(out.Summary, exitInterrupted)
	}
	return cli.Exit(fmt.Sprintf("unknown run status %q", out.Status), exitFailed)
}
