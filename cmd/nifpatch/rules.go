package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/nifpatch/internal/rules"
)

var errRuleDiagnostics = errors.New("rule documents have problems")

func (a *app) newRulesCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the loaded rule documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := rules.LoadDir(a.cfg.Paths.Rules)
			if err != nil {
				return err
			}
			if err := a.printer(cmd.OutOrStdout()).Rules(a.cfg.Paths.Rules, res); err != nil {
				return err
			}
			if check && len(res.Diagnostics) > 0 {
				return fmt.Errorf("%w: %d diagnostics", errRuleDiagnostics, len(res.Diagnostics))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Fail when any rule key was dropped")
	return cmd
}
