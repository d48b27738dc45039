// Command backupmon bootstraps the backup monitoring stack: metrics store,
// dashboard server, scheduled backup job and their configuration documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tis24dev/backupmon/internal/cli"
	"github.com/tis24dev/backupmon/internal/logging"
	"github.com/tis24dev/backupmon/internal/orchestrator"
	"github.com/tis24dev/backupmon/internal/services"
	"github.com/tis24dev/backupmon/internal/types"
	"github.com/tis24dev/backupmon/internal/wizard"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := cli.Parse()
	if args.ShowHelp {
		cli.ShowHelp()
	}
	if args.ShowVersion {
		cli.ShowVersion()
	}

	logger := logging.New(args.LogLevel, !args.NoColor)
	logging.SetDefaultLogger(logger)
	if args.LogFile != "" {
		if err := logger.OpenLogFile(args.LogFile); err != nil {
			logger.Warning("cannot open log file %s: %v", args.LogFile, err)
		}
		defer logger.CloseLogFile()
	}

	if err := wizard.EnsureInteractive(); err != nil {
		logger.Error("%v", err)
		return types.ExitFailure.Int()
	}

	// SIGINT during a prompt unblocks the pending read and surfaces as an
	// abort error instead of a stack trace.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := orchestrator.Deps{
		Logger:    logger,
		ConfigDir: args.ConfigDir,
		ScriptDir: args.ScriptDir,
		DryRun:    args.DryRun,
	}

	// The service manager is optional: without a bus connection the affected
	// stages degrade to reported failures.
	if mgr, err := services.NewSystemdManager(ctx); err == nil {
		defer mgr.Close()
		deps.Services = mgr
	} else {
		logger.Warning("service manager unavailable: %v", err)
	}

	code := orchestrator.New(deps).Run(ctx)

	if ctx.Err() != nil {
		logger.Error("interrupted")
		return types.ExitFailure.Int()
	}
	return code.Int()
}
