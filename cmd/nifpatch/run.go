package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/nifpatch/internal/logger"
	"github.com/Faultbox/nifpatch/internal/patch"
	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/internal/runner"
)

var errFailedFiles = errors.New("some meshes could not be patched")

func (a *app) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Patch all meshes (default command)",
		Args:  cobra.NoArgs,
		RunE:  a.runPatch,
	}
}

func (a *app) runPatch(cmd *cobra.Command, _ []string) error {
	eng, err := a.loadEngine()
	if err != nil {
		return err
	}

	r := runner.New(eng, runner.Options{
		MeshesDir: a.cfg.Paths.Meshes,
		OutputDir: a.cfg.Paths.Output,
		Workers:   a.cfg.Run.Workers,
		DryRun:    a.cfg.Run.DryRun,
	}, logger.Named("runner"))

	logger.Info("Patching meshes",
		zap.String("rules", a.cfg.Paths.Rules),
		zap.String("output", a.cfg.Paths.Output),
	)
	sum, err := r.Run(cmd.Context())
	if sum != nil {
		if perr := a.printer(cmd.OutOrStdout()).Summary(sum, a.cfg.Run.DryRun); perr != nil {
			return perr
		}
	}
	if errors.Is(err, context.Canceled) {
		logger.Warn("Run interrupted", zap.Int("scanned", sum.Scanned))
	}
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		logger.Error("Meshes failed", zap.Int("failed", sum.Failed), zap.Int("scanned", sum.Scanned))
		return fmt.Errorf("%w: %d failed: %w", errFailedFiles, sum.Failed, sum.Err())
	}
	return nil
}

// loadEngine loads the rule documents and builds the engine. Parse errors
// are fatal; dropped keys are logged.
func (a *app) loadEngine() (*patch.Engine, error) {
	log := logger.Named("rules")

	res, err := rules.LoadDir(a.cfg.Paths.Rules)
	if err != nil {
		return nil, fmt.Errorf("error in configuration: %w", err)
	}
	for _, d := range res.Diagnostics {
		log.Warn("Rule key dropped",
			zap.String("document", d.Document),
			zap.Int("entry", d.Entry),
			zap.String("key", d.Key),
			zap.Error(d.Err),
		)
	}
	log.Info("Rules loaded",
		zap.Int("entries", rules.CountEntries(res.Documents)),
		zap.Int("documents", res.Files),
	)

	return patch.New(res.Documents, patch.WithLogger(logger.Named("patch"))), nil
}
