package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/nifpatch/internal/logger"
	"github.com/Faultbox/nifpatch/internal/patch"
	"github.com/Faultbox/nifpatch/internal/report"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

func (a *app) newUVScaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uvscale <mesh.nif.yaml>...",
		Short: "Print the automatic UV scale estimate of each shape",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.printer(cmd.OutOrStdout())
			for _, path := range args {
				mesh, err := nif.Load(path)
				if err != nil {
					return err
				}

				logger.Sugar.Debugf("Estimating UV scale of %d shapes in %s", len(mesh.Shapes), path)
				scales := make([]report.ShapeScale, 0, len(mesh.Shapes))
				for _, s := range mesh.Shapes {
					scale, err := patch.GeometryUVScale(&s.Geometry)
					scales = append(scales, report.ShapeScale{Name: s.DisplayName(), Scale: scale, Err: err})
				}
				if err := p.UVScales(path, scales); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
