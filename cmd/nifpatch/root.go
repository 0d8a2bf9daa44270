package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/nifpatch/internal/config"
	"github.com/Faultbox/nifpatch/internal/logger"
	"github.com/Faultbox/nifpatch/internal/report"
)

// app is the state shared by all commands.
type app struct {
	flags config.Flags
	cfg   *config.Config
}

// NewRootCmd builds the command tree. The root command runs the patcher.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "nifpatch",
		Short: "Patch mesh materials to PBR textures",
		Long: `nifpatch applies the rule documents found in the rules directory to every
mesh below the meshes directory and writes the changed meshes to the output
directory, mirroring their paths.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		RunE:              a.runPatch,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	a.flags.Register(root.PersistentFlags())

	root.AddCommand(
		a.newRunCmd(),
		a.newRulesCmd(),
		a.newUVScaleCmd(),
		a.newConfigCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(&a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	logger.Debug("Command started")
	return nil
}

func (a *app) printer(w io.Writer) *report.Printer {
	f, ok := w.(*os.File)
	return report.NewPrinter(w, ok && report.ColorEnabled(f))
}
